package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// TransactionRepository implements port.TransactionRepository on SQLite
type TransactionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB, logger *zap.Logger) port.TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new transaction and assigns its id
func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (voucher_code, template_name, service_type, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		tx.VoucherCode,
		tx.TemplateName,
		tx.ServiceType,
		tx.Amount,
		tx.Status,
		tx.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", zap.Error(err))
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	tx.ID = id
	return nil
}

// GetByID retrieves a transaction by id, returning (nil, nil) when unknown
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	query := `
		SELECT id, voucher_code, template_name, service_type, amount, status, created_at
		FROM transactions
		WHERE id = ?
	`

	var tx entity.Transaction
	err := executorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&tx.ID,
		&tx.VoucherCode,
		&tx.TemplateName,
		&tx.ServiceType,
		&tx.Amount,
		&tx.Status,
		&tx.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get transaction", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

// UpdateStatus updates the status of a transaction
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE transactions SET status = ? WHERE id = ?`

	result, err := executorFrom(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update transaction status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", entity.ErrNotFound, id)
	}

	return nil
}

var _ port.TransactionRepository = (*TransactionRepository)(nil)
