package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ParseIsolation maps a config value to a pgx isolation level.
func ParseIsolation(level string) (pgx.TxIsoLevel, error) {
	switch level {
	case "", "read_committed":
		return pgx.ReadCommitted, nil
	case "repeatable_read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	default:
		return "", fmt.Errorf("unknown isolation level %q", level)
	}
}

// Transactor implements ports.DBTransactor using pgxpool.Pool.
type Transactor struct {
	pool        Pool
	opts        pgx.TxOptions
	lockTimeout time.Duration
}

// TransactorOption configures a Transactor.
type TransactorOption func(*Transactor)

// WithIsolation sets the isolation level of every unit of work.
func WithIsolation(level pgx.TxIsoLevel) TransactorOption {
	return func(t *Transactor) { t.opts.IsoLevel = level }
}

// WithLockTimeout bounds how long a unit of work waits on a row lock.
// Zero waits indefinitely.
func WithLockTimeout(d time.Duration) TransactorOption {
	return func(t *Transactor) { t.lockTimeout = d }
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool, opts ...TransactorOption) *Transactor {
	t := &Transactor{pool: pool, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin starts a new database transaction. Commit failures of the returned
// Tx are classified like repository errors.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.BeginTx(ctx, t.opts)
	if err != nil {
		return nil, classify("begin tx", err)
	}

	if t.lockTimeout > 0 {
		// SET does not accept bind parameters; the value is an integer we format.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, classify("set lock_timeout", err)
		}
	}
	return &classifiedTx{Tx: tx}, nil
}

type classifiedTx struct {
	pgx.Tx
}

func (c *classifiedTx) Commit(ctx context.Context) error {
	return classify("commit", c.Tx.Commit(ctx))
}
