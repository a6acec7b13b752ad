package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
	domainwf "github.com/fcastillo/hybrid-notary/internal/domain/workflow"
	"github.com/fcastillo/hybrid-notary/internal/infrastructure/persistence/memory"
)

// mockDirectory implements port.CertifierDirectory
type mockDirectory struct {
	lookupFunc func(ctx context.Context, certifierID int64) (*entity.Certifier, error)
}

func (m *mockDirectory) Lookup(ctx context.Context, certifierID int64) (*entity.Certifier, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, certifierID)
	}
	switch certifierID {
	case 1:
		return &entity.Certifier{ID: 1, Name: "Ana Rojas"}, nil
	case 2:
		return &entity.Certifier{ID: 2, Name: "Carlos Soto"}, nil
	default:
		return nil, nil
	}
}

// mockIssuer implements port.CallTokenIssuer
type mockIssuer struct {
	issueFunc func(ctx context.Context, sessionID int64) (string, error)
}

func (m *mockIssuer) Issue(ctx context.Context, sessionID int64) (string, error) {
	if m.issueFunc != nil {
		return m.issueFunc(ctx, sessionID)
	}
	return fmt.Sprintf("call-token-%d", sessionID), nil
}

func newTestEngine(t *testing.T) (Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	engine := NewEngine(
		store.Sessions(),
		store.Events(),
		store.TxManager(),
		&mockDirectory{},
		&mockIssuer{},
		zap.NewNop(),
	)
	return engine, store
}

func seedSession(t *testing.T, store *memory.Store, status string) *entity.Session {
	t.Helper()
	now := time.Now()
	session := &entity.Session{
		TransactionID:   1,
		VoucherCode:     "AB12CD34",
		ServiceType:     entity.ServiceTypeRON,
		Status:          status,
		ClientName:      "Maria Fernanda",
		ClientEmail:     "maria@example.com",
		TemplateName:    "Declaración Jurada",
		DocumentContent: "borrador",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := store.Sessions().Create(context.Background(), session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

func TestEngine_FullLifecycle(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	seeded := seedSession(t, store, entity.StatusPendingCertifier)

	session, err := engine.AcceptSession(ctx, seeded.ID, 1)
	if err != nil {
		t.Fatalf("AcceptSession() returned error: %v", err)
	}
	if session.Status != entity.StatusActiveCall {
		t.Fatalf("status after accept = %s, want %s", session.Status, entity.StatusActiveCall)
	}
	if session.CertifierID == nil || *session.CertifierID != 1 {
		t.Errorf("certifier id = %v, want 1", session.CertifierID)
	}
	if session.CertifierName != "Ana Rojas" {
		t.Errorf("certifier name = %q, want %q", session.CertifierName, "Ana Rojas")
	}
	if session.CallToken == "" {
		t.Error("call token not issued")
	}

	session, err = engine.SendDocumentForReview(ctx, seeded.ID, "contenido revisado")
	if err != nil {
		t.Fatalf("SendDocumentForReview() returned error: %v", err)
	}
	if session.Status != entity.StatusClientApproval {
		t.Fatalf("status after send = %s, want %s", session.Status, entity.StatusClientApproval)
	}
	if session.DocumentContent != "contenido revisado" {
		t.Errorf("document content = %q, want %q", session.DocumentContent, "contenido revisado")
	}

	session, err = engine.ApproveDocument(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("ApproveDocument() returned error: %v", err)
	}
	if session.Status != entity.StatusPendingClientPackage {
		t.Fatalf("status after approve = %s, want %s", session.Status, entity.StatusPendingClientPackage)
	}

	session, err = engine.SubmitClientPackage(ctx, seeded.ID, "firma-electronica-simple")
	if err != nil {
		t.Fatalf("SubmitClientPackage() returned error: %v", err)
	}
	if session.Status != entity.StatusPendingFEASignature {
		t.Fatalf("status after submit = %s, want %s", session.Status, entity.StatusPendingFEASignature)
	}
	if session.ClientSignature != "firma-electronica-simple" {
		t.Errorf("client signature = %q, want %q", session.ClientSignature, "firma-electronica-simple")
	}

	session, err = engine.FinalizeSession(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FinalizeSession() returned error: %v", err)
	}
	if session.Status != entity.StatusCompleted {
		t.Fatalf("status after finalize = %s, want %s", session.Status, entity.StatusCompleted)
	}
	if session.FinalDocumentURL != "/docs/certified-AB12CD34.pdf" {
		t.Errorf("final document url = %q, want %q", session.FinalDocumentURL, "/docs/certified-AB12CD34.pdf")
	}

	history, err := store.Events().ListBySessionID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("ListBySessionID() returned error: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("history has %d entries, want 5", len(history))
	}
	if history[0].Trigger != "ACCEPT" || history[4].Trigger != "FINALIZE" {
		t.Errorf("unexpected history triggers: first %s, last %s", history[0].Trigger, history[4].Trigger)
	}
	if history[4].NewStatus != entity.StatusCompleted {
		t.Errorf("final history status = %s, want %s", history[4].NewStatus, entity.StatusCompleted)
	}
}

func TestEngine_AcceptSession_UnknownCertifier(t *testing.T) {
	engine, store := newTestEngine(t)
	seeded := seedSession(t, store, entity.StatusPendingCertifier)

	_, err := engine.AcceptSession(context.Background(), seeded.ID, 99)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("AcceptSession() error = %v, want ErrNotFound", err)
	}

	// The session must stay queued
	stored, _ := store.Sessions().GetByID(context.Background(), seeded.ID)
	if stored.Status != entity.StatusPendingCertifier {
		t.Errorf("status = %s, want %s", stored.Status, entity.StatusPendingCertifier)
	}
}

func TestEngine_AcceptSession_UnknownSession(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.AcceptSession(context.Background(), 404, 1)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("AcceptSession() error = %v, want ErrNotFound", err)
	}
}

func TestEngine_AcceptSession_ConcurrentAccepts(t *testing.T) {
	engine, store := newTestEngine(t)
	seeded := seedSession(t, store, entity.StatusPendingCertifier)

	type result struct {
		certifierID int64
		err         error
	}

	results := make(chan result, 2)
	var wg sync.WaitGroup
	for _, certifierID := range []int64{1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := engine.AcceptSession(context.Background(), seeded.ID, id)
			results <- result{certifierID: id, err: err}
		}(certifierID)
	}
	wg.Wait()
	close(results)

	var winner int64
	var wins, conflicts int
	for r := range results {
		if r.err == nil {
			wins++
			winner = r.certifierID
			continue
		}
		if errors.Is(r.err, domainwf.ErrInvalidTransition) {
			conflicts++
			continue
		}
		t.Fatalf("unexpected error from AcceptSession: %v", r.err)
	}

	if wins != 1 || conflicts != 1 {
		t.Fatalf("wins = %d, conflicts = %d, want exactly one of each", wins, conflicts)
	}

	stored, _ := store.Sessions().GetByID(context.Background(), seeded.ID)
	if stored.Status != entity.StatusActiveCall {
		t.Errorf("status = %s, want %s", stored.Status, entity.StatusActiveCall)
	}
	if stored.CertifierID == nil || *stored.CertifierID != winner {
		t.Errorf("stored certifier = %v, want winner %d", stored.CertifierID, winner)
	}
}

func TestEngine_OutOfOrderTriggersRejected(t *testing.T) {
	tests := []struct {
		name   string
		status string
		call   func(ctx context.Context, e Engine, id int64) error
	}{
		{
			name:   "finalize before signature",
			status: entity.StatusPendingClientPackage,
			call: func(ctx context.Context, e Engine, id int64) error {
				_, err := e.FinalizeSession(ctx, id)
				return err
			},
		},
		{
			name:   "approve before document sent",
			status: entity.StatusActiveCall,
			call: func(ctx context.Context, e Engine, id int64) error {
				_, err := e.ApproveDocument(ctx, id)
				return err
			},
		},
		{
			name:   "accept twice",
			status: entity.StatusActiveCall,
			call: func(ctx context.Context, e Engine, id int64) error {
				_, err := e.AcceptSession(ctx, id, 1)
				return err
			},
		},
		{
			name:   "send document on completed session",
			status: entity.StatusCompleted,
			call: func(ctx context.Context, e Engine, id int64) error {
				_, err := e.SendDocumentForReview(ctx, id, "tarde")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, store := newTestEngine(t)
			seeded := seedSession(t, store, tt.status)

			err := tt.call(context.Background(), engine, seeded.ID)
			if !errors.Is(err, domainwf.ErrInvalidTransition) {
				t.Fatalf("error = %v, want ErrInvalidTransition", err)
			}

			stored, _ := store.Sessions().GetByID(context.Background(), seeded.ID)
			if stored.Status != tt.status {
				t.Errorf("status changed to %s after rejected trigger", stored.Status)
			}

			history, _ := store.Events().ListBySessionID(context.Background(), seeded.ID)
			if len(history) != 0 {
				t.Errorf("rejected trigger recorded %d history entries", len(history))
			}
		})
	}
}

func TestEngine_FailSession(t *testing.T) {
	engine, store := newTestEngine(t)
	seeded := seedSession(t, store, entity.StatusActiveCall)

	session, err := engine.FailSession(context.Background(), seeded.ID, "client disconnected")
	if err != nil {
		t.Fatalf("FailSession() returned error: %v", err)
	}
	if session.Status != entity.StatusFailed {
		t.Fatalf("status = %s, want %s", session.Status, entity.StatusFailed)
	}

	history, _ := store.Events().ListBySessionID(context.Background(), seeded.ID)
	if len(history) != 1 {
		t.Fatalf("history has %d entries, want 1", len(history))
	}
	if history[0].Actor != entity.ActorSystem {
		t.Errorf("actor = %s, want %s", history[0].Actor, entity.ActorSystem)
	}
	if !strings.Contains(history[0].Detail, "client disconnected") {
		t.Errorf("detail = %q, want the failure reason", history[0].Detail)
	}

	// Terminal sessions cannot be failed again
	_, err = engine.FailSession(context.Background(), seeded.ID, "again")
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("second FailSession() error = %v, want ErrInvalidTransition", err)
	}
}

func TestEngine_TokenIssueFailureBlocksAccept(t *testing.T) {
	store := memory.NewStore()
	engine := NewEngine(
		store.Sessions(),
		store.Events(),
		store.TxManager(),
		&mockDirectory{},
		&mockIssuer{issueFunc: func(ctx context.Context, sessionID int64) (string, error) {
			return "", errors.New("call provider unavailable")
		}},
		zap.NewNop(),
	)
	seeded := seedSession(t, store, entity.StatusPendingCertifier)

	_, err := engine.AcceptSession(context.Background(), seeded.ID, 1)
	if err == nil {
		t.Fatal("AcceptSession() succeeded despite token issue failure")
	}

	stored, _ := store.Sessions().GetByID(context.Background(), seeded.ID)
	if stored.Status != entity.StatusPendingCertifier {
		t.Errorf("status = %s, want %s", stored.Status, entity.StatusPendingCertifier)
	}
}
