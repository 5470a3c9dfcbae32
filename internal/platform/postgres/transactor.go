package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/confhub/internal/store"
)

// Transactor implements store.Transactor by binding fresh stores to a
// *sql.Tx for the duration of fn.
type Transactor struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTransactor creates a Transactor over db.
func NewTransactor(db *sql.DB, logger *slog.Logger) *Transactor {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transactor{db: db, logger: logger}
}

var _ store.Transactor = (*Transactor)(nil)

// WithinTx implements store.Transactor.
func (t *Transactor) WithinTx(ctx context.Context, fn store.RepoFn) error {
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, Repositories(tx, t.logger))
	})
}

// Repositories returns the mutation stores bound to db.
func Repositories(db store.DBTX, logger *slog.Logger) store.Repositories {
	return store.Repositories{
		Configs:       NewPostgresConfigStore(db, logger),
		Instances:     NewPostgresInstanceStore(db, logger),
		OperationLogs: NewPostgresOperationLogStore(db, logger),
	}
}

// Stores is the full set of postgres stores over one connection pool.
type Stores struct {
	store.Repositories
	Environments store.EnvironmentStore
	Projects     store.ProjectStore
	Operators    store.OperatorStore
	Tx           store.Transactor
}

// NewStores wires every postgres store over db.
func NewStores(db *sql.DB, logger *slog.Logger) *Stores {
	return &Stores{
		Repositories: Repositories(db, logger),
		Environments: NewPostgresEnvironmentStore(db, logger),
		Projects:     NewPostgresProjectStore(db, logger),
		Operators:    NewPostgresOperatorStore(db, logger),
		Tx:           NewTransactor(db, logger),
	}
}
