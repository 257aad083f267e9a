package atlas_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/lunagic/atlas/atlas"
	"github.com/lunagic/atlas/atlasservices/database"
	"gotest.tools/v3/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := atlas.LoadConfig("ATLAS_DEFAULTS_TEST_")
	assert.NilError(t, err)
	assert.DeepEqual(t, config, atlas.NewConfig())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ATLAS_ENV_TEST_APP_DRIVER_DATABASE", "mysql")
	t.Setenv("ATLAS_ENV_TEST_APP_DEVELOPER_MODE", "true")
	t.Setenv("ATLAS_ENV_TEST_MYSQL_HOST", "db.internal")
	t.Setenv("ATLAS_ENV_TEST_MYSQL_PORT", "3307")
	t.Setenv("ATLAS_ENV_TEST_MYSQL_USER", "app")
	t.Setenv("ATLAS_ENV_TEST_MYSQL_NAME", "shop")
	t.Setenv("ATLAS_ENV_TEST_DATABASE_TABLE_PREFIX", "shop_")

	config, err := atlas.LoadConfig("ATLAS_ENV_TEST_")
	assert.NilError(t, err)

	assert.Equal(t, config.AppDriverDatabase, "mysql")
	assert.Equal(t, config.AppDeveloperMode, true)
	assert.Equal(t, config.MySQLHost, "db.internal")
	assert.Equal(t, config.MySQLPort, 3307)
	assert.Equal(t, config.MySQLUser, "app")
	assert.Equal(t, config.MySQLName, "shop")
	assert.Equal(t, config.DatabaseTablePrefix, "shop_")
	// Untouched values keep their defaults
	assert.Equal(t, config.RedisPort, 6379)
	assert.Equal(t, config.MySQLCharset, "utf8mb4")
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	envFile := fmt.Sprintf("%s/.env", t.TempDir())
	assert.NilError(t, os.WriteFile(envFile, []byte("ATLAS_FILE_TEST_SQLITE_PATH=/tmp/from-file.sqlite\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("ATLAS_FILE_TEST_SQLITE_PATH")
	})

	config, err := atlas.LoadConfig("ATLAS_FILE_TEST_", envFile)
	assert.NilError(t, err)
	assert.Equal(t, config.SQLitePath, "/tmp/from-file.sqlite")
}

func TestLoadConfigValidation(t *testing.T) {
	{ // Unknown database driver
		t.Setenv("ATLAS_INVALID_TEST_APP_DRIVER_DATABASE", "oracle")

		_, err := atlas.LoadConfig("ATLAS_INVALID_TEST_")
		assert.ErrorContains(t, err, "invalid config")
	}

	{ // MySQL without connection parameters
		t.Setenv("ATLAS_INVALID_TEST_APP_DRIVER_DATABASE", "mysql")

		_, err := atlas.LoadConfig("ATLAS_INVALID_TEST_")
		assert.ErrorContains(t, err, "MySQLUser")
	}
}

func TestConfigDatabase(t *testing.T) {
	config := atlas.NewConfig()
	config.SQLitePath = fmt.Sprintf("%s/database.sqlite", t.TempDir())
	config.DatabaseSafeDelete = true
	config.DatabaseTablePrefix = "app_"

	service, err := config.Database(nil)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	{ // Config options reach the service
		statement, err := service.Table("user").Select("id").GetSQL()
		assert.NilError(t, err)
		assert.Equal(t, statement, "SELECT id FROM app_user LIMIT 1")

		_, err = service.Table("user").DeleteSQL()
		assert.ErrorIs(t, err, database.ErrUnconditionalDelete)
	}

	{ // The service talks to the configured engine
		_, err := service.Run(t.Context(), "CREATE TABLE app_user (id INTEGER PRIMARY KEY)")
		assert.NilError(t, err)

		count, err := service.Table("user").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(0))
	}

	{ // Result caching needs a cache driver
		config.DatabaseResultCacheEnabled = true
		_, err := config.Database(nil)
		assert.ErrorIs(t, err, database.ErrCacheNotConfigured)

		driver, err := config.Cache(t.Context())
		assert.NilError(t, err)

		cached, err := config.Database(driver)
		assert.NilError(t, err)
		assert.NilError(t, cached.Close())
	}

	{ // Unknown drivers are rejected
		config.AppDriverDatabase = "oracle"
		_, err := config.Database(nil)
		assert.ErrorContains(t, err, "invalid database driver: oracle")

		config.AppDriverCache = "memcached"
		_, err = config.Cache(t.Context())
		assert.ErrorContains(t, err, "invalid cache driver: memcached")
	}
}
