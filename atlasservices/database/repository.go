package database

import (
	"context"
	"reflect"

	"github.com/lunagic/atlas/atlasservices/database/internal/utils"
)

// Entity is a struct stored in one table, its columns named by db tags.
type Entity interface {
	TableName() string
}

func NewRepository[T Entity](db Database) *Repository[T] {
	entity := *new(T)
	entityType := reflect.TypeOf(entity)

	return &Repository[T]{
		db:         db,
		table:      entity.TableName(),
		columns:    utils.Columns(entityType),
		primaryKey: utils.PrimaryKeyColumn(entityType),
	}
}

// Repository covers the usual reads and writes of one entity over any Database.
type Repository[T Entity] struct {
	db         Database
	table      string
	columns    []string
	primaryKey string
}

// Query starts a selection of the entity's columns from its table.
func (repository *Repository[T]) Query() Database {
	return repository.db.Table(repository.table).Select(repository.columns...)
}

// Find returns the entity whose primary key equals value.
func (repository *Repository[T]) Find(ctx context.Context, value any) (T, error) {
	return repository.FindBy(ctx, repository.primaryKey, value)
}

// FindBy returns the first entity whose attribute equals value.
func (repository *Repository[T]) FindBy(ctx context.Context, attribute string, value any) (T, error) {
	target := *new(T)
	if err := repository.Query().Where(attribute, "=", value).FirstInto(ctx, &target); err != nil {
		return *new(T), err
	}

	return target, nil
}

func (repository *Repository[T]) All(ctx context.Context) ([]T, error) {
	targets := []T{}
	if err := repository.Query().AllInto(ctx, &targets); err != nil {
		return nil, err
	}

	return targets, nil
}

func (repository *Repository[T]) Create(ctx context.Context, values Values) (int64, error) {
	return repository.db.Table(repository.table).Insert(ctx, values)
}

func (repository *Repository[T]) Update(ctx context.Context, values Values, where ...Comparison) (int64, error) {
	return repository.db.Table(repository.table).Update(ctx, values, where...)
}

func (repository *Repository[T]) Delete(ctx context.Context, where ...Comparison) (int64, error) {
	return repository.db.Table(repository.table).Delete(ctx, where...)
}
