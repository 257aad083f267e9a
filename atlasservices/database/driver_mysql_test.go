package database_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/atlas/atlasservices/database"
	"github.com/lunagic/atlas/atlastest"
)

const mysqlCreateAccount = "CREATE TABLE account (id BIGINT AUTO_INCREMENT PRIMARY KEY, email VARCHAR(255) NOT NULL, name VARCHAR(255), age INT, settings TEXT)"

func Test_DriverMySQL_8(t *testing.T) {
	t.Parallel()
	testSuite(t, setupMySQL(t, "mysql", "8"), mysqlCreateAccount)
}

func Test_DriverMySQL_MariaDB_11_4(t *testing.T) {
	t.Parallel()
	testSuite(t, setupMySQL(t, "mariadb", "11.4"), mysqlCreateAccount)
}

func Test_DriverMySQL_MariaDB_10_11(t *testing.T) {
	t.Parallel()
	testSuite(t, setupMySQL(t, "mariadb", "10.11"), mysqlCreateAccount)
}

func setupMySQL(
	t *testing.T,
	image string,
	tag string,
) database.Driver {
	name := uuid.NewString()
	pass := uuid.NewString()
	user := uuid.NewString()[0:32] // MySQL can't have usernames longer than 32 characters

	return atlastest.GetDockerService(
		t,
		atlastest.DockerServiceConfig[database.Driver]{
			DockerImage:    image,
			DockerImageTag: tag,
			InternalPort:   3306,
			Environment: map[string]string{
				"MYSQL_ROOT_PASSWORD":   uuid.NewString(),
				"MYSQL_PASSWORD":        pass,
				"MYSQL_DATABASE":        name,
				"MYSQL_USER":            user,
				"MARIADB_ROOT_PASSWORD": uuid.NewString(),
			},
			Builder: func(host string, port int) (database.Driver, error) {
				driver := database.NewDriverMySQL(database.DriverMySQLConfig{
					Host:    host,
					Port:    port,
					User:    user,
					Pass:    pass,
					Name:    name,
					Charset: "utf8mb4",
				})

				return driver, ping(t, driver)
			},
		},
	)
}

// ping checks the engine accepts connections without keeping one open.
func ping(t *testing.T, driver database.Driver) error {
	db, err := driver.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	return db.PingContext(t.Context())
}
