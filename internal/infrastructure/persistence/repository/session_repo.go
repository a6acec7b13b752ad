package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// SessionRepository implements port.SessionRepository on SQLite
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) port.SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

const sessionColumns = `
	id, transaction_id, voucher_code, service_type, status,
	client_name, client_email, template_name,
	certifier_id, certifier_name, call_token,
	document_content, client_signature, final_document_url,
	created_at, updated_at
`

// Create inserts a new session and assigns its id
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	query := `
		INSERT INTO sessions (
			transaction_id, voucher_code, service_type, status,
			client_name, client_email, template_name,
			certifier_id, certifier_name, call_token,
			document_content, client_signature, final_document_url,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		session.TransactionID,
		session.VoucherCode,
		session.ServiceType,
		session.Status,
		session.ClientName,
		session.ClientEmail,
		session.TemplateName,
		nullableID(session.CertifierID),
		session.CertifierName,
		session.CallToken,
		session.DocumentContent,
		session.ClientSignature,
		session.FinalDocumentURL,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create session", zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	session.ID = id
	return nil
}

// GetByID retrieves a session by id, returning (nil, nil) when unknown
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*entity.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`

	session, err := scanSession(executorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get session", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// ListByStatus retrieves sessions with the given status in insertion order
func (r *SessionRepository) ListByStatus(ctx context.Context, status string) ([]*entity.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE status = ? ORDER BY id ASC`

	rows, err := executorFrom(ctx, r.db).QueryContext(ctx, query, status)
	if err != nil {
		r.logger.Error("Failed to list sessions", zap.String("status", status), zap.Error(err))
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListStale retrieves non-terminal sessions last updated before the cutoff,
// oldest first
func (r *SessionRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status NOT IN (?, ?) AND updated_at < ?
		ORDER BY updated_at ASC
		LIMIT ?`

	rows, err := executorFrom(ctx, r.db).QueryContext(ctx, query,
		entity.StatusCompleted, entity.StatusFailed, cutoff, limit)
	if err != nil {
		r.logger.Error("Failed to list stale sessions", zap.Error(err))
		return nil, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// Update persists the session compare-and-set against expectStatus
func (r *SessionRepository) Update(ctx context.Context, session *entity.Session, expectStatus string) error {
	query := `
		UPDATE sessions SET
			status = ?,
			certifier_id = ?, certifier_name = ?, call_token = ?,
			document_content = ?, client_signature = ?, final_document_url = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		session.Status,
		nullableID(session.CertifierID),
		session.CertifierName,
		session.CallToken,
		session.DocumentContent,
		session.ClientSignature,
		session.FinalDocumentURL,
		session.UpdatedAt,
		session.ID,
		expectStatus,
	)
	if err != nil {
		r.logger.Error("Failed to update session", zap.Int64("id", session.ID), zap.Error(err))
		return fmt.Errorf("failed to update session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Either the id is unknown or the status moved; distinguish so the
		// engine can report the right error kind.
		existing, getErr := r.GetByID(ctx, session.ID)
		if getErr != nil {
			return getErr
		}
		if existing == nil {
			return fmt.Errorf("%w: session %d", entity.ErrNotFound, session.ID)
		}
		return fmt.Errorf("%w: session %d is %s, expected %s",
			entity.ErrStatusConflict, session.ID, existing.Status, expectStatus)
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*entity.Session, error) {
	var session entity.Session
	var certifierID sql.NullInt64

	err := row.Scan(
		&session.ID,
		&session.TransactionID,
		&session.VoucherCode,
		&session.ServiceType,
		&session.Status,
		&session.ClientName,
		&session.ClientEmail,
		&session.TemplateName,
		&certifierID,
		&session.CertifierName,
		&session.CallToken,
		&session.DocumentContent,
		&session.ClientSignature,
		&session.FinalDocumentURL,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if certifierID.Valid {
		session.CertifierID = &certifierID.Int64
	}

	return &session, nil
}

func collectSessions(rows *sql.Rows) ([]*entity.Session, error) {
	var sessions []*entity.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

var _ port.SessionRepository = (*SessionRepository)(nil)
