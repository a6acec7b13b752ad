package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/dispatcher"
	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
	"github.com/fcastillo/hybrid-notary/internal/domain/event"
	"github.com/fcastillo/hybrid-notary/internal/metrics"
	"github.com/fcastillo/hybrid-notary/internal/voucher"
	"github.com/fcastillo/hybrid-notary/pkg/utils"
)

// IntakeService covers the point-of-sale side of the workflow: creating a
// transaction when the client selects a service, and turning a confirmed
// payment into a queued session.
type IntakeService interface {
	// InitiateTransaction creates a pending transaction with its voucher
	// code and the amount from the template price table
	InitiateTransaction(ctx context.Context, templateName, serviceType string) (*entity.Transaction, error)

	// ConfirmPayment consumes the payment collaborator's confirmation:
	// the transaction is completed and the session is created in
	// pending_certifier with the document placeholder seeded
	ConfirmPayment(ctx context.Context, transactionID int64, clientName, clientEmail, templateName, serviceType string) (*entity.Session, error)
}

type intakeService struct {
	transactions port.TransactionRepository
	sessions     port.SessionRepository
	txManager    port.TransactionManager
	templates    map[string]float64
	logger       *zap.Logger

	dispatcher dispatcher.Dispatcher
	metrics    *metrics.Metrics
}

// IntakeOption configures the intake service
type IntakeOption func(*intakeService)

// WithDispatcher sets the event dispatcher for emitting lifecycle events
func WithDispatcher(d dispatcher.Dispatcher) IntakeOption {
	return func(s *intakeService) {
		s.dispatcher = d
	}
}

// WithMetrics sets the prometheus collectors the service reports into
func WithMetrics(m *metrics.Metrics) IntakeOption {
	return func(s *intakeService) {
		s.metrics = m
	}
}

// NewIntakeService creates a new intake service. templates maps service
// template names to their price; names are matched case-insensitively since
// viper lowercases config keys.
func NewIntakeService(
	transactions port.TransactionRepository,
	sessions port.SessionRepository,
	txManager port.TransactionManager,
	templates map[string]float64,
	logger *zap.Logger,
	opts ...IntakeOption,
) IntakeService {
	prices := make(map[string]float64, len(templates))
	for name, amount := range templates {
		prices[strings.ToLower(name)] = amount
	}

	s := &intakeService{
		transactions: transactions,
		sessions:     sessions,
		txManager:    txManager,
		templates:    prices,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// InitiateTransaction creates a pending transaction for a selected service
func (s *intakeService) InitiateTransaction(ctx context.Context, templateName, serviceType string) (*entity.Transaction, error) {
	amount, ok := s.templates[strings.ToLower(templateName)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown template %q", entity.ErrInvalidInput, templateName)
	}
	if !entity.ValidServiceType(serviceType) {
		return nil, fmt.Errorf("%w: unknown service type %q", entity.ErrInvalidInput, serviceType)
	}

	tx := &entity.Transaction{
		VoucherCode:  voucher.NewCode(),
		TemplateName: templateName,
		ServiceType:  serviceType,
		Amount:       amount,
		Status:       entity.TransactionStatusPending,
		CreatedAt:    time.Now(),
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TransactionsCreated.Inc()
	}

	s.logger.Info("Transaction initiated",
		zap.Int64("transaction_id", tx.ID),
		zap.String("voucher_code", tx.VoucherCode),
		zap.String("template", templateName),
		zap.Float64("amount", amount))

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(
			event.TypeTransactionCreated,
			0,
			tx.VoucherCode,
			map[string]interface{}{"transaction_id": tx.ID, "amount": amount},
		))
	}

	return tx, nil
}

// ConfirmPayment completes the transaction and creates its session
func (s *intakeService) ConfirmPayment(ctx context.Context, transactionID int64, clientName, clientEmail, templateName, serviceType string) (*entity.Session, error) {
	if clientName == "" {
		return nil, fmt.Errorf("%w: client name is required", entity.ErrInvalidInput)
	}
	if err := utils.ValidateEmail(clientEmail); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}
	if !entity.ValidServiceType(serviceType) {
		return nil, fmt.Errorf("%w: unknown service type %q", entity.ErrInvalidInput, serviceType)
	}

	tx, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction %d", entity.ErrNotFound, transactionID)
	}

	now := time.Now()
	session := &entity.Session{
		TransactionID:   tx.ID,
		VoucherCode:     tx.VoucherCode,
		ServiceType:     serviceType,
		Status:          entity.StatusPendingCertifier,
		ClientName:      clientName,
		ClientEmail:     clientEmail,
		TemplateName:    templateName,
		DocumentContent: documentPlaceholder(templateName),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.transactions.UpdateStatus(txCtx, tx.ID, entity.TransactionStatusCompleted); err != nil {
			return fmt.Errorf("failed to complete transaction: %w", err)
		}
		if err := s.sessions.Create(txCtx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
	}

	s.logger.Info("Payment confirmed, session created",
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("session_id", session.ID),
		zap.String("voucher_code", session.VoucherCode),
		zap.String("service_type", serviceType))

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(
			event.TypeSessionCreated,
			session.ID,
			session.VoucherCode,
			map[string]interface{}{"transaction_id": tx.ID, "template": templateName},
		))
	}

	return session, nil
}

// documentPlaceholder seeds the document content shown to the certifier
// before the live session starts
func documentPlaceholder(templateName string) string {
	return fmt.Sprintf("Este es el contenido base para el documento: %s. Por favor, revise y confirme los detalles con el cliente.", templateName)
}
