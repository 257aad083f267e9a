package atlas

import (
	"errors"
	"log/slog"

	"github.com/lunagic/atlas/atlasservices/database"
)

// Guard is the outermost boundary for errors coming out of the database layer.
// In developer mode a failed statement is logged and raised as a panic carrying
// the statement and the engine error. Otherwise errors pass through unchanged.
type Guard struct {
	developerMode bool
	logger        *slog.Logger
}

func (config Config) Guard(logger *slog.Logger) Guard {
	return Guard{
		developerMode: config.AppDeveloperMode,
		logger:        logger,
	}
}

func (guard Guard) Check(err error) error {
	if err == nil || !guard.developerMode {
		return err
	}

	statementErr := &database.StatementError{}
	if !errors.As(err, &statementErr) {
		return err
	}

	guard.logger.Error("Database Statement Failed",
		"statement", statementErr.Statement,
		"error", statementErr.Err,
	)

	panic(statementErr.Diagnostic())
}

// Run calls fn and checks the error it returns.
func (guard Guard) Run(fn func() error) error {
	return guard.Check(fn())
}
