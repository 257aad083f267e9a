package database

import (
	"context"
	"reflect"
)

// Every terminal call renders the statement, clears the builder and only then
// runs it, so the builder is clean whether the statement succeeds or not.

// Get returns the first row of the selection, or nil when there is none.
func (service *Service) Get(ctx context.Context) (Row, error) {
	rows, err := service.readSelection(ctx, func(q *query) {
		q.Limit = intPointer(1)
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0], nil
}

// First is Get with ErrNoRows when the selection is empty.
func (service *Service) First(ctx context.Context) (Row, error) {
	row, err := service.Get(ctx)
	if err != nil {
		return nil, err
	}

	if row == nil {
		return nil, ErrNoRows
	}

	return row, nil
}

func (service *Service) All(ctx context.Context) ([]Row, error) {
	return service.readSelection(ctx, nil)
}

// Paginate returns page number page (counting from 1) of perPage rows.
func (service *Service) Paginate(ctx context.Context, perPage int, page int) ([]Row, error) {
	return service.readSelection(ctx, paginate(perPage, page))
}

func (service *Service) Count(ctx context.Context) (int64, error) {
	q, err := service.take()
	if err != nil {
		return 0, err
	}

	statement, err := q.countStatement()
	if err != nil {
		return 0, err
	}

	rows, err := service.run(ctx, statement, q.cacheTTL)
	if err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, nil
	}

	return toInt64(rows[0]["aggregate"])
}

// AllInto scans every selected row into the slice targetPointer points at.
func (service *Service) AllInto(ctx context.Context, targetPointer any) error {
	q, err := service.take()
	if err != nil {
		return err
	}

	statement, err := q.selectStatement()
	if err != nil {
		return err
	}

	return service.fetchInto(ctx, statement, targetPointer)
}

// FirstInto scans the first selected row into the struct targetPointer points at.
func (service *Service) FirstInto(ctx context.Context, targetPointer any) error {
	target := reflect.ValueOf(targetPointer)
	if target.Kind() != reflect.Pointer || target.Elem().Kind() != reflect.Struct {
		service.reset()
		return ErrInvalidTarget
	}

	service.query.Limit = intPointer(1)
	rows := reflect.New(reflect.SliceOf(target.Elem().Type()))
	if err := service.AllInto(ctx, rows.Interface()); err != nil {
		return err
	}

	if rows.Elem().Len() == 0 {
		return ErrNoRows
	}

	target.Elem().Set(rows.Elem().Index(0))

	return nil
}

// Insert writes one row, or several rows in one statement, and returns the
// generated key of the last row.
func (service *Service) Insert(ctx context.Context, rows ...Values) (int64, error) {
	q, err := service.take()
	if err != nil {
		return 0, err
	}

	statement, err := q.insertStatement(service.driver, rows)
	if err != nil {
		return 0, err
	}

	return service.insert(ctx, statement)
}

// Update sets values on the rows matching the builder conditions and the where
// comparisons, returning the affected row count.
func (service *Service) Update(ctx context.Context, values Values, where ...Comparison) (int64, error) {
	statement, err := service.renderUpdate(values, where)
	if err != nil {
		return 0, err
	}

	return service.exec(ctx, statement)
}

// Delete removes the rows matching the builder conditions and the where
// comparisons. Without any condition the whole table is truncated, unless the
// service was built WithSafeDelete.
func (service *Service) Delete(ctx context.Context, where ...Comparison) (int64, error) {
	statement, err := service.renderDelete(where)
	if err != nil {
		return 0, err
	}

	return service.exec(ctx, statement)
}

// Exec runs the statement set with Raw and returns the affected row count.
func (service *Service) Exec(ctx context.Context) (int64, error) {
	q, err := service.take()
	if err != nil {
		return 0, err
	}

	if _, err := service.run(ctx, q.raw, q.cacheTTL); err != nil {
		return 0, err
	}

	return service.rowCount, nil
}

// FetchAll runs the statement set with Raw and returns its rows.
func (service *Service) FetchAll(ctx context.Context) ([]Row, error) {
	q, err := service.take()
	if err != nil {
		return nil, err
	}

	return service.run(ctx, q.raw, q.cacheTTL)
}

// GetSQL renders what Get would run without running it.
func (service *Service) GetSQL() (string, error) {
	return service.renderSelection(func(q *query) {
		q.Limit = intPointer(1)
	})
}

func (service *Service) AllSQL() (string, error) {
	return service.renderSelection(nil)
}

func (service *Service) PaginateSQL(perPage int, page int) (string, error) {
	return service.renderSelection(paginate(perPage, page))
}

func (service *Service) CountSQL() (string, error) {
	q, err := service.take()
	if err != nil {
		return "", err
	}

	return service.record(q.countStatement())
}

func (service *Service) InsertSQL(rows ...Values) (string, error) {
	q, err := service.take()
	if err != nil {
		return "", err
	}

	return service.record(q.insertStatement(service.driver, rows))
}

func (service *Service) UpdateSQL(values Values, where ...Comparison) (string, error) {
	return service.record(service.renderUpdate(values, where))
}

func (service *Service) DeleteSQL(where ...Comparison) (string, error) {
	return service.record(service.renderDelete(where))
}

func (service *Service) readSelection(ctx context.Context, modify func(q *query)) ([]Row, error) {
	q, err := service.take()
	if err != nil {
		return nil, err
	}

	if modify != nil {
		modify(&q)
	}

	statement, err := q.selectStatement()
	if err != nil {
		return nil, err
	}

	return service.run(ctx, statement, q.cacheTTL)
}

func (service *Service) renderSelection(modify func(q *query)) (string, error) {
	q, err := service.take()
	if err != nil {
		return "", err
	}

	if modify != nil {
		modify(&q)
	}

	return service.record(q.selectStatement())
}

func (service *Service) renderUpdate(values Values, where []Comparison) (string, error) {
	for _, comparison := range where {
		service.addCondition(comparison, joinerAnd)
	}

	q, err := service.take()
	if err != nil {
		return "", err
	}

	return q.updateStatement(service.driver, values)
}

func (service *Service) renderDelete(where []Comparison) (string, error) {
	for _, comparison := range where {
		service.addCondition(comparison, joinerAnd)
	}

	q, err := service.take()
	if err != nil {
		return "", err
	}

	return q.deleteStatement(service.driver, service.safeDelete)
}

func (service *Service) exec(ctx context.Context, statement string) (int64, error) {
	if _, err := service.run(ctx, statement, 0); err != nil {
		return 0, err
	}

	return service.rowCount, nil
}

// record keeps a rendered statement as the last statement.
func (service *Service) record(statement string, err error) (string, error) {
	if err != nil {
		return "", err
	}

	service.lastStatement = statement

	return statement, nil
}

func paginate(perPage int, page int) func(q *query) {
	return func(q *query) {
		q.Limit = intPointer(perPage)
		q.Offset = intPointer((max(page, 1) - 1) * perPage)
	}
}
