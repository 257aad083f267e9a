package database

import (
	"context"
	"time"
)

// Row is one fetched row keyed by column name.
type Row map[string]any

// Values is one row to write keyed by column name.
type Values map[string]any

// Database is everything a caller can do against one engine. Builder methods
// return the Database so calls chain; the terminal methods render the statement,
// clear the builder and run it.
type Database interface {
	Table(names ...string) Database
	Select(fields ...string) Database
	SelectCount(field string, alias string) Database

	Join(table string, field1 string, operator string, field2 string, joinType ...string) Database
	InnerJoin(table string, field1 string, operator string, field2 string) Database
	LeftJoin(table string, field1 string, operator string, field2 string) Database
	RightJoin(table string, field1 string, operator string, field2 string) Database

	Where(field string, comparator any, value ...any) Database
	OrWhere(field string, comparator any, value ...any) Database
	WhereCondition(condition Condition) Database
	OrWhereCondition(condition Condition) Database
	WhereNull(field string) Database
	WhereNotNull(field string) Database
	OrWhereNull(field string) Database
	OrWhereNotNull(field string) Database
	Grouped(callback func(db Database)) Database
	OrGrouped(callback func(db Database)) Database

	In(field string, values ...any) Database
	NotIn(field string, values ...any) Database
	OrIn(field string, values ...any) Database
	OrNotIn(field string, values ...any) Database

	Between(field string, value1 any, value2 any) Database
	NotBetween(field string, value1 any, value2 any) Database
	OrBetween(field string, value1 any, value2 any) Database
	OrNotBetween(field string, value1 any, value2 any) Database

	Like(field string, pattern string) Database
	OrLike(field string, pattern string) Database
	NotLike(field string, pattern string) Database
	OrNotLike(field string, pattern string) Database

	OrderBy(field string, direction ...string) Database
	GroupBy(fields ...string) Database
	Having(field string, comparator any, value ...any) Database
	Limit(limit int) Database
	Offset(offset int) Database
	Cache(ttl time.Duration) Database

	Get(ctx context.Context) (Row, error)
	First(ctx context.Context) (Row, error)
	All(ctx context.Context) ([]Row, error)
	Paginate(ctx context.Context, perPage int, page int) ([]Row, error)
	Count(ctx context.Context) (int64, error)
	AllInto(ctx context.Context, target any) error
	FirstInto(ctx context.Context, target any) error
	Insert(ctx context.Context, rows ...Values) (int64, error)
	Update(ctx context.Context, values Values, where ...Comparison) (int64, error)
	Delete(ctx context.Context, where ...Comparison) (int64, error)

	GetSQL() (string, error)
	AllSQL() (string, error)
	PaginateSQL(perPage int, page int) (string, error)
	CountSQL() (string, error)
	InsertSQL(rows ...Values) (string, error)
	UpdateSQL(values Values, where ...Comparison) (string, error)
	DeleteSQL(where ...Comparison) (string, error)

	Raw(template string, values ...any) Database
	Exec(ctx context.Context) (int64, error)
	FetchAll(ctx context.Context) ([]Row, error)
	Run(ctx context.Context, statement string) ([]Row, error)

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Escape(value any) string
	LastStatement() string
	RowCount() int64
	InsertID() int64
}

var _ Database = (*Service)(nil)
