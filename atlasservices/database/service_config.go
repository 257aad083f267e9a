package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lunagic/atlas/atlasservices/cache"
)

type ServiceConfigFunc func(service *Service) error

// WithPostConnectFunc runs the callback right after the engine is opened, before
// the first statement.
func WithPostConnectFunc(callback func(db *sql.DB) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.connection.postConnectFuncs = append(service.connection.postConnectFuncs, callback)
		return nil
	}
}

func WithPreRunFunc(preRunFunc func(ctx context.Context, statement string) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, preRunFunc)
		return nil
	}
}

func WithPostRunFunc(postRunFunc func(ctx context.Context, statement string, err error) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.postRunFuncs = append(service.postRunFuncs, postRunFunc)
		return nil
	}
}

func WithLogger(logger *slog.Logger) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, func(ctx context.Context, statement string) error {
			logger.InfoContext(ctx, "Database Run",
				"driver", service.driver.name(),
				"statement", statement,
			)

			return nil
		})
		service.postRunFuncs = append(service.postRunFuncs, func(ctx context.Context, statement string, err error) error {
			if err != nil {
				logger.ErrorContext(ctx, "Database Error",
					"driver", service.driver.name(),
					"statement", statement,
					"error", err,
				)
			}

			return nil
		})
		return nil
	}
}

// WithTablePrefix is prepended to every table name passed to Table.
func WithTablePrefix(prefix string) ServiceConfigFunc {
	return func(service *Service) error {
		service.tablePrefix = prefix
		return nil
	}
}

// WithResultCache enables Cache(ttl) on reads, storing fetched rows in the driver.
func WithResultCache(driver cache.Driver) ServiceConfigFunc {
	return func(service *Service) error {
		service.resultCache = cache.NewRepository[string, []Row](driver, "atlas-query")
		return nil
	}
}

// WithStrictComparators rejects unknown comparison operators instead of reading
// them as the compared value.
func WithStrictComparators() ServiceConfigFunc {
	return func(service *Service) error {
		service.strict = true
		return nil
	}
}

// WithSafeDelete refuses DELETE without conditions instead of truncating the table.
func WithSafeDelete() ServiceConfigFunc {
	return func(service *Service) error {
		service.safeDelete = true
		return nil
	}
}
