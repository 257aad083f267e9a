package database

import (
	"errors"
	"fmt"
)

var (
	ErrNoRows              = errors.New("no rows found")
	ErrBlankQuery          = errors.New("blank query")
	ErrNoTable             = errors.New("no table specified")
	ErrNoValues            = errors.New("no values to write")
	ErrEmptyIn             = errors.New("empty value list for IN")
	ErrGroupOpen           = errors.New("statement materialized inside an open where group")
	ErrInvalidComparator   = errors.New("invalid comparator")
	ErrUnconditionalDelete = errors.New("delete without where conditions")
	ErrTemplateValues      = errors.New("template placeholders do not match values")
	ErrCacheNotConfigured  = errors.New("result cache not configured")
	ErrNoTransaction       = errors.New("no transaction in progress")
	ErrClosed              = errors.New("database service is closed")
)

// ConnectionError is returned when the connection to the engine could not be established.
// A service keeps returning the same ConnectionError once connecting failed.
type ConnectionError struct {
	Driver string
	Err    error
}

func (err *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %s", err.Driver, err.Err)
}

func (err *ConnectionError) Unwrap() error {
	return err.Err
}

// StatementError carries the failing statement text along with the engine error.
type StatementError struct {
	Statement string
	Err       error
}

func (err *StatementError) Error() string {
	return fmt.Sprintf("%s. (%s)", err.Err, err.Statement)
}

func (err *StatementError) Unwrap() error {
	return err.Err
}

// Diagnostic renders the statement and the engine error on separate lines.
func (err *StatementError) Diagnostic() string {
	return fmt.Sprintf("Query: %s\nError: %s\n", err.Statement, err.Err)
}
