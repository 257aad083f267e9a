package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
	_ "github.com/mattn/go-sqlite3"
)

func NewDriverSQLite(path string) Driver {
	return &driverSQLite{
		Path: path,
	}
}

type driverSQLite struct {
	Path string
}

func (driver *driverSQLite) Open() (*sql.DB, error) {
	return sql.Open(
		"sqlite3",
		fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", driver.Path),
	)
}

func (driver *driverSQLite) name() string {
	return "sqlite"
}

func (driver *driverSQLite) quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// SQLite has no TRUNCATE, an unconditional DELETE takes the truncate optimization.
func (driver *driverSQLite) truncate(table string) string {
	return "DELETE FROM " + table
}

func (driver *driverSQLite) returningClause() string {
	return ""
}

// Backslashes are plain text in SQLite literals.
func (driver *driverSQLite) escaping() utils.Escaping {
	return utils.EscapingNone
}
