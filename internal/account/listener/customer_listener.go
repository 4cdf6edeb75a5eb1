// Package listener reacts to upstream customer lifecycle events.
package listener

import (
	"context"

	"go.uber.org/zap"

	"github.com/corebank/services/shared/events"
)

// Reconciler removes the accounts of a deleted customer.
type Reconciler interface {
	ReconcileCustomerDeletion(ctx context.Context, customerID int64) (int, error)
}

// CustomerEventListener consumes the customer.events stream. Only deletions
// trigger work; created/updated events are acknowledged untouched because
// account rows reference customers by id and carry no customer attributes.
type CustomerEventListener struct {
	reconciler Reconciler
	log        *zap.Logger
}

func NewCustomerEventListener(reconciler Reconciler, log *zap.Logger) *CustomerEventListener {
	return &CustomerEventListener{reconciler: reconciler, log: log}
}

// Handle is the subscriber handler. It always returns nil: reconciliation
// failures are logged and the message is acknowledged regardless, so cleanup
// is best-effort and a failed run leaves orphaned accounts behind. Duplicate
// deliveries are harmless; reconciling an already-clean customer is a no-op.
func (l *CustomerEventListener) Handle(ctx context.Context, event events.Event) error {
	if event.Type != events.CustomerDeleted {
		return nil
	}

	var payload events.DeletedPayload
	if err := event.DecodeData(&payload); err != nil {
		l.log.Error("malformed customer deleted event",
			zap.String("event_id", event.ID),
			zap.Error(err))
		return nil
	}

	l.log.Info("received customer deleted event", zap.Int64("customer_id", payload.ID))

	removed, err := l.reconciler.ReconcileCustomerDeletion(ctx, payload.ID)
	if err != nil {
		l.log.Error("customer deletion reconciliation failed",
			zap.Int64("customer_id", payload.ID),
			zap.Int("accounts_removed", removed),
			zap.Error(err))
		return nil
	}

	l.log.Info("customer deletion reconciled",
		zap.Int64("customer_id", payload.ID),
		zap.Int("accounts_removed", removed))
	return nil
}
