// Package service holds the account-service business logic: account CRUD
// behind the admission pipeline, transaction-coupled event publication, and
// the cascading reconciliation run when a customer is deleted upstream.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/corebank/services/internal/account/admission"
	"github.com/corebank/services/internal/account/repository"
	"github.com/corebank/services/shared/events"
	"github.com/corebank/services/shared/models"
)

// EventPublisher is the slice of the shared publisher this service depends on.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// Admitter runs the admission rule chain for a candidate account.
type Admitter interface {
	Admit(ctx context.Context, req admission.Request) (*admission.Admitted, error)
}

// AccountService owns account rows and their lifecycle events.
type AccountService struct {
	db        *sql.DB
	repo      *repository.AccountRepository
	admitter  Admitter
	publisher EventPublisher
	log       *zap.Logger
}

func NewAccountService(db *sql.DB, repo *repository.AccountRepository, admitter Admitter, publisher EventPublisher, log *zap.Logger) *AccountService {
	return &AccountService{db: db, repo: repo, admitter: admitter, publisher: publisher, log: log}
}

// CreateAccountParams carries the validated input for CreateAccount.
type CreateAccountParams struct {
	CustomerLegalID string
	Type            string
	Balance         decimal.Decimal
}

// UpdateAccountParams carries the validated input for UpdateAccount.
type UpdateAccountParams struct {
	Balance decimal.Decimal
	Status  string
}

// CreateAccount runs the admission pipeline, persists the account, and
// publishes account.event.created before the transaction commits. A publish
// failure rolls the insert back: a committed account always has a
// corresponding emitted event, at the cost of availability during a broker
// outage.
func (s *AccountService) CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error) {
	admitted, err := s.admitter.Admit(ctx, admission.Request{
		CustomerLegalID: params.CustomerLegalID,
		Type:            params.Type,
		Balance:         params.Balance,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &models.Account{
		CustomerID:    admitted.Customer.ID,
		AccountNumber: admitted.AccountNumber,
		Type:          params.Type,
		Balance:       params.Balance,
		Status:        models.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Create(ctx, account); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountCreated, account)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("account created",
		zap.Int64("account_id", account.ID),
		zap.Int64("customer_id", account.CustomerID),
		zap.String("account_number", account.AccountNumber))
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.repo.List(ctx)
}

// UpdateAccount applies balance/status changes and publishes
// account.event.updated in the same unit of work.
func (s *AccountService) UpdateAccount(ctx context.Context, id int64, params UpdateAccountParams) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Balance = params.Balance
	account.Status = params.Status
	account.UpdatedAt = time.Now().UTC()

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Update(ctx, account); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountUpdated, account)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("account updated", zap.Int64("account_id", id))
	return account, nil
}

// DeleteAccount removes one account and publishes account.event.deleted with
// the bare identifier. Deleting an absent id reports not-found.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).DeleteByID(ctx, id); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountDeleted, events.DeletedPayload{ID: id})
	})
	if err != nil {
		return err
	}

	s.log.Info("account deleted", zap.Int64("account_id", id))
	return nil
}

// ReconcileCustomerDeletion bulk-deletes every account belonging to a deleted
// customer and emits one account.event.deleted per removed account. The batch
// delete commits first; the per-account events follow within the same
// invocation. A publish failure partway leaves accounts deleted with some
// events unemitted; the customer-deleted listener tolerates that partial
// outcome rather than assuming it impossible.
func (s *AccountService) ReconcileCustomerDeletion(ctx context.Context, customerID int64) (int, error) {
	accounts, err := s.repo.FindAllByCustomerID(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if len(accounts) == 0 {
		s.log.Info("no accounts to reconcile", zap.Int64("customer_id", customerID))
		return 0, nil
	}

	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		return s.repo.WithTx(tx).DeleteAll(ctx, ids)
	})
	if err != nil {
		return 0, err
	}

	for i, id := range ids {
		if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountDeleted, events.DeletedPayload{ID: id}); err != nil {
			return len(ids), fmt.Errorf("reconciliation for customer %d: deleted %d accounts but emitted only %d events: %w",
				customerID, len(ids), i, err)
		}
	}

	s.log.Info("reconciled customer deletion",
		zap.Int64("customer_id", customerID),
		zap.Int("accounts_removed", len(ids)))
	return len(ids), nil
}

// inTx runs fn inside a transaction, rolling back on any error. Event
// publishes for single-account mutations happen inside fn, before commit, so
// a broker fault undoes the domain write.
func (s *AccountService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
