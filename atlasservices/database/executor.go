package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/lunagic/atlas/atlasservices/cache"
	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
)

// Statements starting with one of these produce a result set.
var readingVerbs = []string{
	"select",
	"optimize",
	"check",
	"repair",
	"checksum",
	"analyze",
	"show",
	"explain",
	"pragma",
}

// Run executes a hand written statement. Reading statements return their rows,
// anything else returns nil rows and sets RowCount to the affected row count.
func (service *Service) Run(ctx context.Context, statement string) ([]Row, error) {
	return service.run(ctx, statement, 0)
}

func (service *Service) run(ctx context.Context, statement string, ttl time.Duration) ([]Row, error) {
	statement = utils.Normalize(statement, service.driver.escaping())
	if statement == "" {
		return nil, ErrBlankQuery
	}

	service.lastStatement = statement

	if utils.HasPrefixFold(statement, readingVerbs...) {
		return service.read(ctx, statement, ttl)
	}

	if _, err := service.write(ctx, statement); err != nil {
		return nil, err
	}

	return nil, nil
}

// execute opens the connection when needed and wraps fn with the run hooks.
func (service *Service) execute(ctx context.Context, statement string, fn func(r runner) error) error {
	if err := service.connection.open(ctx); err != nil {
		return err
	}

	for _, preRunFunc := range service.preRunFuncs {
		if err := preRunFunc(ctx, statement); err != nil {
			return err
		}
	}

	err := fn(service.connection.runner())
	if err != nil {
		err = &StatementError{
			Statement: statement,
			Err:       err,
		}
	}

	for _, postRunFunc := range service.postRunFuncs {
		if postErr := postRunFunc(ctx, statement, err); postErr != nil && err == nil {
			err = postErr
		}
	}

	return err
}

// read fetches all rows of the statement. With a ttl the rows are served from
// and stored in the result cache under the statement text.
func (service *Service) read(ctx context.Context, statement string, ttl time.Duration) ([]Row, error) {
	cached := ttl > 0 && service.resultCache != nil

	if cached {
		rows, err := service.resultCache.Get(ctx, statement)
		if err == nil {
			service.rowCount = int64(len(rows))
			return rows, nil
		}

		if !errors.Is(err, cache.ErrNotFound) {
			return nil, err
		}
	}

	rows := []Row{}
	if err := service.execute(ctx, statement, func(r runner) error {
		var err error
		rows, err = queryRows(ctx, r, statement)
		return err
	}); err != nil {
		return nil, err
	}

	service.rowCount = int64(len(rows))

	if cached {
		if err := service.resultCache.Set(ctx, statement, rows, ttl); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

func (service *Service) write(ctx context.Context, statement string) (sql.Result, error) {
	var result sql.Result
	if err := service.execute(ctx, statement, func(r runner) error {
		var err error
		result, err = r.ExecContext(ctx, statement)
		return err
	}); err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, &StatementError{
			Statement: statement,
			Err:       err,
		}
	}
	service.rowCount = affected

	return result, nil
}

// insert runs an INSERT and records the generated key of the last row written.
func (service *Service) insert(ctx context.Context, statement string) (int64, error) {
	statement = utils.Normalize(statement, service.driver.escaping())
	service.lastStatement = statement
	service.insertID = 0

	if returning := service.driver.returningClause(); returning != "" {
		rows := []Row{}
		if err := service.execute(ctx, statement+returning, func(r runner) error {
			var err error
			rows, err = queryRows(ctx, r, statement+returning)
			return err
		}); err != nil {
			return 0, err
		}

		service.rowCount = int64(len(rows))
		if len(rows) > 0 {
			if id, found := rows[len(rows)-1]["id"]; found {
				service.insertID, _ = toInt64(id)
			}
		}

		return service.insertID, nil
	}

	result, err := service.write(ctx, statement)
	if err != nil {
		return 0, err
	}

	if id, err := result.LastInsertId(); err == nil {
		service.insertID = id
	}

	return service.insertID, nil
}

func queryRows(ctx context.Context, r runner, statement string) ([]Row, error) {
	rows, err := r.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := Row{}
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				row[column] = string(raw)
				continue
			}

			row[column] = values[i]
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

// toInt64 reads a numeric column whatever type the engine or the cache handed back.
func toInt64(value any) (int64, error) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return int64(v.Float()), nil
	case reflect.String:
		return strconv.ParseInt(v.String(), 10, 64)
	}

	return 0, fmt.Errorf("not a number: %T", value)
}
