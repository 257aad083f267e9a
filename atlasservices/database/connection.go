package database

import (
	"context"
	"database/sql"
	"fmt"
)

// runner is what statements execute on, the pinned connection or the open transaction.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// connection owns the single engine session of a Service.
type connection struct {
	driver           Driver
	db               *sql.DB
	conn             *sql.Conn
	tx               *sql.Tx
	depth            int
	err              error
	postConnectFuncs []func(db *sql.DB) error
}

// open connects once. A failure is remembered and returned on every later call.
func (c *connection) open(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	if c.err != nil {
		return c.err
	}

	fail := func(err error) error {
		c.err = &ConnectionError{
			Driver: c.driver.name(),
			Err:    err,
		}

		return c.err
	}

	db, err := c.driver.Open()
	if err != nil {
		return fail(err)
	}

	for _, postConnectFunc := range c.postConnectFuncs {
		if err := postConnectFunc(db); err != nil {
			_ = db.Close()
			return fail(err)
		}
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return fail(err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return fail(err)
	}

	c.db = db
	c.conn = conn

	return nil
}

func (c *connection) runner() runner {
	if c.tx != nil {
		return c.tx
	}

	return c.conn
}

func savepoint(depth int) string {
	return fmt.Sprintf("atlas_%d", depth)
}

// begin starts a transaction, or a savepoint inside the one already open.
func (c *connection) begin(ctx context.Context) error {
	if c.depth == 0 {
		tx, err := c.conn.BeginTx(ctx, nil)
		if err != nil {
			return &StatementError{Statement: "BEGIN", Err: err}
		}

		c.tx = tx
		c.depth = 1

		return nil
	}

	statement := "SAVEPOINT " + savepoint(c.depth)
	if _, err := c.tx.ExecContext(ctx, statement); err != nil {
		return &StatementError{Statement: statement, Err: err}
	}
	c.depth++

	return nil
}

func (c *connection) commit(ctx context.Context) error {
	switch c.depth {
	case 0:
		return ErrNoTransaction
	case 1:
		tx := c.tx
		c.tx = nil
		c.depth = 0
		if err := tx.Commit(); err != nil {
			return &StatementError{Statement: "COMMIT", Err: err}
		}

		return nil
	}

	statement := "RELEASE SAVEPOINT " + savepoint(c.depth-1)
	c.depth--
	if _, err := c.tx.ExecContext(ctx, statement); err != nil {
		return &StatementError{Statement: statement, Err: err}
	}

	return nil
}

func (c *connection) rollback(ctx context.Context) error {
	switch c.depth {
	case 0:
		return ErrNoTransaction
	case 1:
		tx := c.tx
		c.tx = nil
		c.depth = 0
		if err := tx.Rollback(); err != nil {
			return &StatementError{Statement: "ROLLBACK", Err: err}
		}

		return nil
	}

	statement := "ROLLBACK TO SAVEPOINT " + savepoint(c.depth-1)
	c.depth--
	if _, err := c.tx.ExecContext(ctx, statement); err != nil {
		return &StatementError{Statement: statement, Err: err}
	}

	return nil
}

func (c *connection) close() error {
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
		c.depth = 0
	}

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	if dbErr := c.db.Close(); err == nil {
		err = dbErr
	}
	c.conn = nil
	c.db = nil
	c.err = ErrClosed

	return err
}
