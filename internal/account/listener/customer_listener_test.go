package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/corebank/services/shared/events"
)

type mockReconciler struct {
	calls []int64
	err   error
}

func (m *mockReconciler) ReconcileCustomerDeletion(_ context.Context, customerID int64) (int, error) {
	m.calls = append(m.calls, customerID)
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

func deletedEvent(customerID int64) events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      events.CustomerDeleted,
		Timestamp: time.Now().UTC(),
		// Payloads arrive as generic JSON values after transport.
		Data: map[string]any{"id": float64(customerID)},
	}
}

func TestHandleCustomerDeletedTriggersReconciliation(t *testing.T) {
	reconciler := &mockReconciler{}
	l := NewCustomerEventListener(reconciler, zap.NewNop())

	err := l.Handle(context.Background(), deletedEvent(42))
	assert.NoError(t, err)
	assert.Equal(t, []int64{42}, reconciler.calls)
}

// Reconciliation failures are logged and swallowed: the handler returns nil
// so the message is acknowledged and never requeued. Cleanup is best-effort.
func TestHandleSwallowsReconciliationError(t *testing.T) {
	reconciler := &mockReconciler{err: errors.New("publish failed partway")}
	l := NewCustomerEventListener(reconciler, zap.NewNop())

	err := l.Handle(context.Background(), deletedEvent(42))
	assert.NoError(t, err)
	assert.Equal(t, []int64{42}, reconciler.calls)
}

func TestHandleIgnoresOtherCustomerEvents(t *testing.T) {
	reconciler := &mockReconciler{}
	l := NewCustomerEventListener(reconciler, zap.NewNop())

	for _, eventType := range []string{events.CustomerCreated, events.CustomerUpdated} {
		err := l.Handle(context.Background(), events.Event{Type: eventType})
		assert.NoError(t, err)
	}
	assert.Empty(t, reconciler.calls)
}

func TestHandleSwallowsMalformedPayload(t *testing.T) {
	reconciler := &mockReconciler{}
	l := NewCustomerEventListener(reconciler, zap.NewNop())

	err := l.Handle(context.Background(), events.Event{
		Type: events.CustomerDeleted,
		Data: "not-an-object",
	})
	assert.NoError(t, err)
	assert.Empty(t, reconciler.calls)
}

// Redelivery of the same deletion event is harmless: the reconciler runs
// again and finds nothing left to remove.
func TestHandleDuplicateDelivery(t *testing.T) {
	reconciler := &mockReconciler{}
	l := NewCustomerEventListener(reconciler, zap.NewNop())

	assert.NoError(t, l.Handle(context.Background(), deletedEvent(42)))
	assert.NoError(t, l.Handle(context.Background(), deletedEvent(42)))
	assert.Equal(t, []int64{42, 42}, reconciler.calls)
}
