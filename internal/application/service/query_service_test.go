package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
	"github.com/fcastillo/hybrid-notary/internal/infrastructure/persistence/memory"
)

func seedQuerySession(t *testing.T, store *memory.Store, voucherCode, status string) *entity.Session {
	t.Helper()
	now := time.Now()
	session := &entity.Session{
		TransactionID: 1,
		VoucherCode:   voucherCode,
		ServiceType:   entity.ServiceTypeRON,
		Status:        status,
		ClientName:    "Pedro Pablo",
		ClientEmail:   "pedro@example.com",
		TemplateName:  "Contrato de Arriendo",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.Sessions().Create(context.Background(), session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

func TestQueryService_GetSession(t *testing.T) {
	store := memory.NewStore()
	svc := NewQueryService(store.Sessions(), store.Events())
	seeded := seedQuerySession(t, store, "QQ11WW22", entity.StatusPendingCertifier)

	session, err := svc.GetSession(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetSession() returned error: %v", err)
	}
	if session.VoucherCode != "QQ11WW22" {
		t.Errorf("voucher = %q, want %q", session.VoucherCode, "QQ11WW22")
	}
}

func TestQueryService_GetSession_NotFound(t *testing.T) {
	store := memory.NewStore()
	svc := NewQueryService(store.Sessions(), store.Events())

	_, err := svc.GetSession(context.Background(), 404)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestQueryService_ListByStatus_InsertionOrder(t *testing.T) {
	store := memory.NewStore()
	svc := NewQueryService(store.Sessions(), store.Events())

	first := seedQuerySession(t, store, "FIRST001", entity.StatusPendingCertifier)
	seedQuerySession(t, store, "OTHER001", entity.StatusActiveCall)
	second := seedQuerySession(t, store, "SECOND01", entity.StatusPendingCertifier)

	queued, err := svc.ListByStatus(context.Background(), entity.StatusPendingCertifier)
	if err != nil {
		t.Fatalf("ListByStatus() returned error: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("queue has %d sessions, want 2", len(queued))
	}
	if queued[0].ID != first.ID || queued[1].ID != second.ID {
		t.Errorf("queue order = [%d %d], want [%d %d]", queued[0].ID, queued[1].ID, first.ID, second.ID)
	}
}

func TestQueryService_ListByStatus_UnknownStatus(t *testing.T) {
	store := memory.NewStore()
	svc := NewQueryService(store.Sessions(), store.Events())

	_, err := svc.ListByStatus(context.Background(), "in_limbo")
	if !errors.Is(err, entity.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestQueryService_GetHistory(t *testing.T) {
	store := memory.NewStore()
	svc := NewQueryService(store.Sessions(), store.Events())
	seeded := seedQuerySession(t, store, "HIST0001", entity.StatusActiveCall)

	err := store.Events().Create(context.Background(), &entity.SessionEvent{
		SessionID:      seeded.ID,
		Actor:          entity.ActorCertifier,
		PreviousStatus: entity.StatusPendingCertifier,
		NewStatus:      entity.StatusActiveCall,
		Trigger:        "ACCEPT",
		Timestamp:      time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	history, err := svc.GetHistory(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetHistory() returned error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history has %d entries, want 1", len(history))
	}
	if history[0].Trigger != "ACCEPT" {
		t.Errorf("trigger = %q, want ACCEPT", history[0].Trigger)
	}
}

func TestQueryService_GetHistory_UnknownSession(t *testing.T) {
	store := memory.NewStore()
	svc := NewQueryService(store.Sessions(), store.Events())

	_, err := svc.GetHistory(context.Background(), 404)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
