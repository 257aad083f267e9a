package database

import (
	"database/sql"
	"io"
	"log"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
)

func NewDriverMySQL(config DriverMySQLConfig) Driver {
	return &driverMySQL{
		config: config,
	}
}

type DriverMySQLConfig struct {
	Host      string
	Port      int
	User      string
	Pass      string
	Name      string
	Charset   string
	Collation string
}

type driverMySQL struct {
	config DriverMySQLConfig
}

func (driver *driverMySQL) Open() (*sql.DB, error) {
	_ = mysql.SetLogger(log.New(io.Discard, "", log.LstdFlags))

	return sql.Open("mysql", driver.dsn())
}

func (driver *driverMySQL) dsn() string {
	config := mysql.NewConfig()
	config.User = driver.config.User
	config.Passwd = driver.config.Pass
	config.Net = "tcp"
	config.Addr = net.JoinHostPort(driver.config.Host, strconv.Itoa(driver.config.Port))
	config.DBName = driver.config.Name
	config.ParseTime = true

	if driver.config.Charset != "" {
		config.Params = map[string]string{
			"charset": driver.config.Charset,
		}
	}

	if driver.config.Collation != "" {
		config.Collation = driver.config.Collation
	}

	return config.FormatDSN()
}

func (driver *driverMySQL) name() string {
	return "mysql"
}

// quote follows the escaping rules of mysql_real_escape_string.
func (driver *driverMySQL) quote(value string) string {
	builder := strings.Builder{}
	builder.Grow(len(value) + 2)
	builder.WriteByte('\'')

	for i := range len(value) {
		c := value[i]
		switch c {
		case 0:
			builder.WriteString(`\0`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\\':
			builder.WriteString(`\\`)
		case '\'':
			builder.WriteString(`\'`)
		case '"':
			builder.WriteString(`\"`)
		case '\032':
			builder.WriteString(`\Z`)
		default:
			builder.WriteByte(c)
		}
	}

	builder.WriteByte('\'')

	return builder.String()
}

func (driver *driverMySQL) truncate(table string) string {
	return "TRUNCATE TABLE " + table
}

func (driver *driverMySQL) returningClause() string {
	return ""
}

func (driver *driverMySQL) escaping() utils.Escaping {
	return utils.EscapingBackslash
}
