package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

func newSession(voucherCode, status string, updatedAt time.Time) *entity.Session {
	return &entity.Session{
		TransactionID: 1,
		VoucherCode:   voucherCode,
		ServiceType:   entity.ServiceTypeRON,
		Status:        status,
		ClientName:    "Maria Fernanda",
		ClientEmail:   "maria@example.com",
		TemplateName:  "Declaración Jurada",
		CreatedAt:     updatedAt,
		UpdatedAt:     updatedAt,
	}
}

func TestStore_TransactionRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	tx := &entity.Transaction{
		VoucherCode:  "AB12CD34",
		TemplateName: "Declaración Jurada",
		ServiceType:  entity.ServiceTypeRON,
		Amount:       15.00,
		Status:       entity.TransactionStatusPending,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.Transactions().Create(ctx, tx))
	assert.NotZero(t, tx.ID)

	stored, err := store.Transactions().GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "AB12CD34", stored.VoucherCode)

	require.NoError(t, store.Transactions().UpdateStatus(ctx, tx.ID, entity.TransactionStatusCompleted))
	stored, err = store.Transactions().GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCompleted, stored.Status)

	missing, err := store.Transactions().GetByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_SessionGetByID_ReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := newSession("AB12CD34", entity.StatusPendingCertifier, time.Now())
	require.NoError(t, store.Sessions().Create(ctx, session))

	got, err := store.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Mutating the returned session must not leak into the store
	got.Status = entity.StatusFailed
	got.ClientName = "changed"

	again, err := store.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingCertifier, again.Status)
	assert.Equal(t, "Maria Fernanda", again.ClientName)
}

func TestStore_SessionUpdate_CompareAndSet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := newSession("AB12CD34", entity.StatusPendingCertifier, time.Now())
	require.NoError(t, store.Sessions().Create(ctx, session))

	session.Status = entity.StatusActiveCall
	require.NoError(t, store.Sessions().Update(ctx, session, entity.StatusPendingCertifier))

	// A second writer still expecting pending_certifier loses
	stale := newSession("AB12CD34", entity.StatusActiveCall, time.Now())
	stale.ID = session.ID
	err := store.Sessions().Update(ctx, stale, entity.StatusPendingCertifier)
	assert.ErrorIs(t, err, entity.ErrStatusConflict)

	err = store.Sessions().Update(ctx, stale, "")
	assert.ErrorIs(t, err, entity.ErrStatusConflict)

	missing := newSession("ZZ99XX88", entity.StatusPendingCertifier, time.Now())
	missing.ID = 404
	err = store.Sessions().Update(ctx, missing, entity.StatusPendingCertifier)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestStore_ListByStatus_InsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := newSession("FIRST001", entity.StatusPendingCertifier, time.Now())
	middle := newSession("OTHER001", entity.StatusActiveCall, time.Now())
	last := newSession("SECOND01", entity.StatusPendingCertifier, time.Now())
	require.NoError(t, store.Sessions().Create(ctx, first))
	require.NoError(t, store.Sessions().Create(ctx, middle))
	require.NoError(t, store.Sessions().Create(ctx, last))

	queued, err := store.Sessions().ListByStatus(ctx, entity.StatusPendingCertifier)
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, first.ID, queued[0].ID)
	assert.Equal(t, last.ID, queued[1].ID)
}

func TestStore_ListStale(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	cutoff := time.Now().Add(-30 * time.Minute)

	stale := newSession("STALE001", entity.StatusActiveCall, time.Now().Add(-time.Hour))
	fresh := newSession("FRESH001", entity.StatusActiveCall, time.Now())
	done := newSession("DONE0001", entity.StatusCompleted, time.Now().Add(-time.Hour))
	failed := newSession("FAIL0001", entity.StatusFailed, time.Now().Add(-time.Hour))
	require.NoError(t, store.Sessions().Create(ctx, stale))
	require.NoError(t, store.Sessions().Create(ctx, fresh))
	require.NoError(t, store.Sessions().Create(ctx, done))
	require.NoError(t, store.Sessions().Create(ctx, failed))

	got, err := store.Sessions().ListStale(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].ID)
}

func TestStore_ListStale_Limit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s := newSession("STALE000", entity.StatusPendingCertifier, time.Now().Add(-time.Hour))
		require.NoError(t, store.Sessions().Create(ctx, s))
	}

	got, err := store.Sessions().ListStale(ctx, time.Now(), 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStore_Events(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := newSession("AB12CD34", entity.StatusPendingCertifier, time.Now())
	require.NoError(t, store.Sessions().Create(ctx, session))

	for _, trigger := range []string{"ACCEPT", "SEND_DOCUMENT"} {
		require.NoError(t, store.Events().Create(ctx, &entity.SessionEvent{
			SessionID: session.ID,
			Actor:     entity.ActorCertifier,
			Trigger:   trigger,
			Timestamp: time.Now(),
		}))
	}

	events, err := store.Events().ListBySessionID(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ACCEPT", events[0].Trigger)
	assert.Equal(t, "SEND_DOCUMENT", events[1].Trigger)
	assert.NotZero(t, events[0].ID)

	none, err := store.Events().ListBySessionID(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, none)
}
