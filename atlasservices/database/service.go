package database

import (
	"context"
	"database/sql"

	"github.com/lunagic/atlas/atlasservices/cache"
)

// Service builds and runs statements against one engine over one owned
// connection. It holds a single statement under construction and is not safe
// for concurrent use.
type Service struct {
	driver        Driver
	connection    *connection
	query         query
	preRunFuncs   []func(ctx context.Context, statement string) error
	postRunFuncs  []func(ctx context.Context, statement string, err error) error
	resultCache   *cache.Repository[string, []Row]
	tablePrefix   string
	strict        bool
	safeDelete    bool
	lastStatement string
	rowCount      int64
	insertID      int64
}

// New prepares a Service. Nothing is opened until the first statement runs.
func New(
	driver Driver,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	service := &Service{
		driver: driver,
		connection: &connection{
			driver:           driver,
			postConnectFuncs: []func(db *sql.DB) error{},
		},
		preRunFuncs:  []func(ctx context.Context, statement string) error{},
		postRunFuncs: []func(ctx context.Context, statement string, err error) error{},
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(service); err != nil {
			return nil, err
		}
	}

	return service, nil
}

// Ping opens the connection if needed and checks it is alive.
func (service *Service) Ping(ctx context.Context) error {
	if err := service.connection.open(ctx); err != nil {
		return err
	}

	return service.connection.conn.PingContext(ctx)
}

// Close rolls back any open transaction and releases the connection.
func (service *Service) Close() error {
	return service.connection.close()
}

func (service *Service) Begin(ctx context.Context) error {
	if err := service.connection.open(ctx); err != nil {
		return err
	}

	return service.connection.begin(ctx)
}

func (service *Service) Commit(ctx context.Context) error {
	return service.connection.commit(ctx)
}

func (service *Service) Rollback(ctx context.Context) error {
	return service.connection.rollback(ctx)
}

// LastStatement is the text of the most recent terminal call.
func (service *Service) LastStatement() string {
	return service.lastStatement
}

// RowCount is the number of rows read or affected by the most recent statement.
func (service *Service) RowCount() int64 {
	return service.rowCount
}

// InsertID is the generated key of the most recent Insert.
func (service *Service) InsertID() int64 {
	return service.insertID
}

func (service *Service) reset() {
	service.query = query{}
}

// take hands over the pending builder error and clears the builder.
func (service *Service) take() (query, error) {
	q := service.query
	service.reset()

	if q.err != nil {
		return q, q.err
	}

	if q.groupDepth > 0 {
		return q, ErrGroupOpen
	}

	return q, nil
}
