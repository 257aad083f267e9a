package atlastest

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/ory/dockertest"
)

// containerLifetime bounds how long a container outlives a crashed test run.
const containerLifetime = 10 * time.Minute

// DockerServiceConfig describes a throwaway container and how to build a client
// for it once it accepts connections.
type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	Builder        func(host string, port int) (T, error)
}

func (config DockerServiceConfig[T]) env() []string {
	env := []string{}
	for k, v := range config.Environment {
		env = append(env, k+"="+v)
	}

	return env
}

// GetDockerService starts the container, retries Builder until it succeeds and
// purges the container when the test ends. Skipped with -short.
func GetDockerService[T any](
	t *testing.T,
	config DockerServiceConfig[T],
) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping long-running test in short mode.")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not construct pool: %s", err)
	}
	pool.MaxWait = 2 * time.Minute

	if err := pool.Client.Ping(); err != nil {
		t.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run(
		config.DockerImage,
		config.DockerImageTag,
		config.env(),
	)
	if err != nil {
		t.Fatalf("Could not start %s:%s: %s", config.DockerImage, config.DockerImageTag, err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge %s: %s", config.DockerImage, err)
		}
	})

	if err := resource.Expire(uint(containerLifetime.Seconds())); err != nil {
		t.Fatalf("Could not set container expiry: %s", err)
	}

	host, port, err := hostAndPort(resource.GetHostPort(fmt.Sprintf("%d/tcp", config.InternalPort)))
	if err != nil {
		t.Fatalf("Could not resolve container address: %s", err)
	}

	var service T
	if err := pool.Retry(func() error {
		var err error
		service, err = config.Builder(host, port)
		return err
	}); err != nil {
		t.Fatalf("Could not connect to %s: %s", config.DockerImage, err)
	}

	return service
}

// hostAndPort prefers the host of a remote DOCKER_HOST over the mapped address.
func hostAndPort(mapped string) (string, int, error) {
	host, portString, err := net.SplitHostPort(mapped)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(portString)
	if err != nil {
		return "", 0, err
	}

	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		u, err := url.Parse(dockerHost)
		if err != nil {
			return "", 0, err
		}

		if u.Hostname() != "" {
			host = u.Hostname()
		}
	}

	return host, port, nil
}
