package database

import (
	"database/sql"

	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
)

// Driver adapts one relational engine: how to open it and how it spells the few
// things that differ between engines.
type Driver interface {
	Open() (*sql.DB, error)
	name() string
	quote(value string) string
	truncate(table string) string
	returningClause() string
	escaping() utils.Escaping
}
