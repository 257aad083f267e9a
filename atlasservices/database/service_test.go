package database_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/atlas/atlasservices/database"
	"gotest.tools/v3/assert"
)

type AccountSettings struct {
	Theme string `json:"theme"`
}

type Account struct {
	ID       int64           `db:"id,primaryKey"`
	Email    string          `db:"email"`
	Name     *string         `db:"name"`
	Age      int64           `db:"age"`
	Settings AccountSettings `db:"settings"`
}

func (Account) TableName() string {
	return "account"
}

// testSuite runs the same statements against every engine. createTable creates
// the account table in the engine's dialect.
func testSuite(t *testing.T, driver database.Driver, createTable string) {
	logs := &bytes.Buffer{}
	service, err := database.New(driver, database.WithLogger(slog.New(slog.NewTextHandler(logs, nil))))
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	_, err = service.Run(t.Context(), createTable)
	assert.NilError(t, err)

	ann := uuid.NewString() + "@example.com"

	{ // Insert a single row
		id, err := service.Table("account").Insert(t.Context(), database.Values{
			"email": ann,
			"name":  "Ann",
			"age":   30,
		})
		assert.NilError(t, err)
		assert.Equal(t, id, int64(1))
		assert.Equal(t, service.InsertID(), int64(1))
		assert.Equal(t, service.RowCount(), int64(1))
		assert.Equal(t, service.LastStatement(), fmt.Sprintf("INSERT INTO account (age, email, name) VALUES (30, '%s', 'Ann')", ann))
	}

	{ // Insert several rows in one statement
		_, err := service.Table("account").Insert(t.Context(),
			database.Values{"email": "bob@example.com", "name": "Bob", "age": 17},
			database.Values{"email": "cy@example.com", "age": 45},
		)
		assert.NilError(t, err)
		assert.Equal(t, service.RowCount(), int64(2))
	}

	{ // Read one row
		row, err := service.Table("account").Where("email", ann).Get(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, row["name"], "Ann")
		assert.Equal(t, fmt.Sprint(row["age"]), "30")
		assert.Equal(t, service.LastStatement(), fmt.Sprintf("SELECT * FROM account WHERE email = '%s' LIMIT 1", ann))
	}

	{ // Missing rows
		row, err := service.Table("account").Where("email", "nobody").Get(t.Context())
		assert.NilError(t, err)
		assert.Assert(t, row == nil)

		_, err = service.Table("account").Where("email", "nobody").First(t.Context())
		assert.ErrorIs(t, err, database.ErrNoRows)
	}

	{ // Counting with every condition family
		count, err := service.Table("account").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(3))

		count, err = service.Table("account").In("age", 17, 45).Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(2))

		count, err = service.Table("account").Between("age", 18, 50).Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(2))

		count, err = service.Table("account").Like("email", "%@example.com").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(3))

		count, err = service.Table("account").WhereNull("name").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(1))

		count, err = service.Table("account").Where("age", ">=", 18).Grouped(func(db database.Database) {
			db.Where("name", "Ann").OrWhereNull("name")
		}).Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(2))

		count, err = service.Table("account").Select("age").GroupBy("age").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(3))
	}

	{ // Pagination
		rows, err := service.Table("account").OrderBy("age").Paginate(t.Context(), 2, 2)
		assert.NilError(t, err)
		assert.Equal(t, len(rows), 1)
		assert.Equal(t, fmt.Sprint(rows[0]["age"]), "45")
	}

	{ // Update
		affected, err := service.Table("account").Update(t.Context(), database.Values{
			"name":     "Annie",
			"settings": `{"theme":"dark"}`,
		}, database.Compare("email", "=", ann))
		assert.NilError(t, err)
		assert.Equal(t, affected, int64(1))

		row, err := service.Table("account").Select("name").Where("email", ann).First(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, row["name"], "Annie")
	}

	{ // Structured fetch
		accounts := []Account{}
		assert.NilError(t, service.Table("account").OrderBy("id").AllInto(t.Context(), &accounts))
		assert.Equal(t, len(accounts), 3)
		assert.Equal(t, accounts[0].Email, ann)
		assert.Equal(t, *accounts[0].Name, "Annie")
		assert.Equal(t, accounts[0].Settings.Theme, "dark")
		assert.Assert(t, accounts[2].Name == nil)
		assert.Equal(t, service.RowCount(), int64(3))
	}

	{ // Repository
		accounts := database.NewRepository[Account](service)

		account, err := accounts.Find(t.Context(), 1)
		assert.NilError(t, err)
		assert.Equal(t, account.Email, ann)
		assert.Equal(t, account.Settings.Theme, "dark")

		bob, err := accounts.FindBy(t.Context(), "email", "bob@example.com")
		assert.NilError(t, err)
		assert.Equal(t, bob.Age, int64(17))

		all, err := accounts.All(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, len(all), 3)

		_, err = accounts.Find(t.Context(), 999)
		assert.ErrorIs(t, err, database.ErrNoRows)
	}

	{ // Rolled back transactions leave no trace
		assert.NilError(t, service.Begin(t.Context()))
		_, err := service.Table("account").Insert(t.Context(), database.Values{"email": "dan@example.com", "age": 20})
		assert.NilError(t, err)
		assert.NilError(t, service.Rollback(t.Context()))

		count, err := service.Table("account").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(3))
	}

	{ // Nested transactions roll back to their savepoint
		assert.NilError(t, service.Begin(t.Context()))
		_, err := service.Table("account").Insert(t.Context(), database.Values{"email": "eve@example.com", "age": 21})
		assert.NilError(t, err)

		assert.NilError(t, service.Begin(t.Context()))
		_, err = service.Table("account").Insert(t.Context(), database.Values{"email": "fay@example.com", "age": 22})
		assert.NilError(t, err)
		assert.NilError(t, service.Rollback(t.Context()))

		assert.NilError(t, service.Commit(t.Context()))

		count, err := service.Table("account").In("email", "eve@example.com", "fay@example.com").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(1))

		assert.ErrorIs(t, service.Commit(t.Context()), database.ErrNoTransaction)
		assert.ErrorIs(t, service.Rollback(t.Context()), database.ErrNoTransaction)
	}

	{ // Delete with conditions
		affected, err := service.Table("account").Delete(t.Context(), database.Compare("email", "=", "bob@example.com"))
		assert.NilError(t, err)
		assert.Equal(t, affected, int64(1))

		affected, err = service.Table("account").Where("age", ">", 40).Delete(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, affected, int64(1))
	}

	{ // Failed statements carry the statement text
		_, err := service.Table("missing_table").All(t.Context())
		statementErr := &database.StatementError{}
		assert.Assert(t, errors.As(err, &statementErr))
		assert.Equal(t, statementErr.Statement, "SELECT * FROM missing_table")
	}

	{ // Delete without conditions empties the table
		_, err := service.Table("account").Delete(t.Context())
		assert.NilError(t, err)

		count, err := service.Table("account").Count(t.Context())
		assert.NilError(t, err)
		assert.Equal(t, count, int64(0))
	}

	assert.Assert(t, bytes.Contains(logs.Bytes(), []byte("Database Run")))
	assert.Assert(t, bytes.Contains(logs.Bytes(), []byte("Database Error")))
}

func TestSQLite(t *testing.T) {
	t.Parallel()

	testSuite(
		t,
		database.NewDriverSQLite(fmt.Sprintf("%s/database.sqlite", t.TempDir())),
		"CREATE TABLE account (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT NOT NULL, name TEXT, age INTEGER, settings TEXT)",
	)
}
