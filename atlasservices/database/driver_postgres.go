package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
)

func NewDriverPostgres(config DriverPostgresConfig) Driver {
	return &driverPostgres{
		config: config,
	}
}

type DriverPostgresConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverPostgres struct {
	config DriverPostgresConfig
}

func (driver *driverPostgres) Open() (*sql.DB, error) {
	return sql.Open(
		"postgres",
		fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			driver.config.Host,
			driver.config.Port,
			driver.config.User,
			driver.config.Pass,
			driver.config.Name,
		),
	)
}

func (driver *driverPostgres) name() string {
	return "postgres"
}

func (driver *driverPostgres) quote(value string) string {
	return pq.QuoteLiteral(value)
}

func (driver *driverPostgres) truncate(table string) string {
	return "TRUNCATE TABLE " + table
}

// lib/pq does not support LastInsertId, inserts read the new row back instead.
func (driver *driverPostgres) returningClause() string {
	return " RETURNING *"
}

// With standard_conforming_strings on, only E'' literals treat backslashes as escapes.
func (driver *driverPostgres) escaping() utils.Escaping {
	return utils.EscapingPrefixed
}
