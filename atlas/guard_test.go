package atlas_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/lunagic/atlas/atlas"
	"github.com/lunagic/atlas/atlasservices/database"
	"gotest.tools/v3/assert"
)

func recovered(fn func()) (value any) {
	defer func() {
		value = recover()
	}()

	fn()

	return nil
}

func TestGuard(t *testing.T) {
	statementErr := &database.StatementError{
		Statement: "SELECT * FROM missing",
		Err:       fmt.Errorf("no such table: missing"),
	}

	{ // Production mode returns errors untouched
		guard := atlas.NewConfig().Guard(slog.Default())

		assert.NilError(t, guard.Check(nil))
		assert.Equal(t, guard.Check(statementErr), error(statementErr))
	}

	logs := &bytes.Buffer{}
	config := atlas.NewConfig()
	config.AppDeveloperMode = true
	guard := config.Guard(slog.New(slog.NewTextHandler(logs, nil)))

	{ // Developer mode raises failed statements with the diagnostic
		value := recovered(func() {
			_ = guard.Check(fmt.Errorf("loading users: %w", statementErr))
		})

		assert.Equal(t, value, "Query: SELECT * FROM missing\nError: no such table: missing\n")
		assert.Assert(t, bytes.Contains(logs.Bytes(), []byte("Database Statement Failed")))
	}

	{ // Other errors are still returned in developer mode
		err := guard.Check(database.ErrNoRows)
		assert.ErrorIs(t, err, database.ErrNoRows)
	}

	{ // Run guards real statements
		service, err := database.New(database.NewDriverSQLite(fmt.Sprintf("%s/database.sqlite", t.TempDir())))
		assert.NilError(t, err)
		t.Cleanup(func() {
			_ = service.Close()
		})

		value := recovered(func() {
			_ = guard.Run(func() error {
				_, err := service.Table("missing").All(t.Context())
				return err
			})
		})

		diagnostic, ok := value.(string)
		assert.Assert(t, ok)
		assert.Assert(t, bytes.HasPrefix([]byte(diagnostic), []byte("Query: SELECT * FROM missing\nError: ")))
	}
}
