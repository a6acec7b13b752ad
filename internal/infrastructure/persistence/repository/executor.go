package repository

import (
	"context"
	"database/sql"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/pkg/database"
)

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type contextKey string

const txKey contextKey = "tx"

// executorFrom returns the transaction carried by the context, if any,
// falling back to the plain connection
func executorFrom(ctx context.Context, db *sql.DB) executor {
	if tx, ok := ctx.Value(txKey).(*sql.Tx); ok {
		return tx
	}
	return db
}

// TxManager implements port.TransactionManager by carrying the *sql.Tx in
// the context passed to fn, so repository calls made inside join the
// transaction.
type TxManager struct {
	db *database.DB
}

// NewTxManager creates a transaction manager over the database
func NewTxManager(db *database.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTransaction runs fn inside a database transaction
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

var _ port.TransactionManager = (*TxManager)(nil)
