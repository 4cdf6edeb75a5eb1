// Package service holds the customer-service business logic: CRUD over the
// customer registry with lifecycle events published inside each unit of work.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/corebank/services/internal/customer/repository"
	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/events"
	"github.com/corebank/services/shared/models"
)

// EventPublisher is the slice of the shared publisher this service depends on.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// CustomerCache is the read cache for customer projections. Misses are cheap;
// only committed state is ever written to it.
type CustomerCache interface {
	Get(ctx context.Context, key string) (*models.Customer, bool)
	Set(ctx context.Context, key string, value *models.Customer)
	Delete(ctx context.Context, key string)
}

// CustomerService owns the customer registry.
type CustomerService struct {
	db        *sql.DB
	repo      *repository.CustomerRepository
	publisher EventPublisher
	cache     CustomerCache
	log       *zap.Logger
}

func NewCustomerService(db *sql.DB, repo *repository.CustomerRepository, publisher EventPublisher, cache CustomerCache, log *zap.Logger) *CustomerService {
	return &CustomerService{db: db, repo: repo, publisher: publisher, cache: cache, log: log}
}

// CreateCustomerParams carries the validated input for CreateCustomer.
type CreateCustomerParams struct {
	Name    string
	LegalID string
	Type    string
	Address string
}

// UpdateCustomerParams carries the validated input for UpdateCustomer.
type UpdateCustomerParams struct {
	Name    string
	LegalID string
	Type    string
	Status  string
	Address string
}

// CreateCustomer registers a new customer as ACTIVE and publishes a
// customer.event.created event in the same unit of work. A publish failure
// rolls the insert back.
func (s *CustomerService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*models.Customer, error) {
	if _, err := s.repo.GetByLegalID(ctx, params.LegalID); err == nil {
		return nil, errs.ErrLegalIDUsed
	} else if !errors.Is(err, errs.ErrNoSuchCustomer) {
		return nil, err
	}

	now := time.Now().UTC()
	customer := &models.Customer{
		Name:      params.Name,
		LegalID:   params.LegalID,
		Type:      params.Type,
		Status:    models.CustomerStatusActive,
		Address:   params.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Create(ctx, customer); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.CustomerEventsStream, events.CustomerCreated, customer)
	})
	if err != nil {
		return nil, err
	}

	s.cacheCustomer(ctx, customer)
	s.log.Info("customer created",
		zap.Int64("customer_id", customer.ID),
		zap.String("legal_id", customer.LegalID))
	return customer, nil
}

// GetCustomer returns a customer by numeric id, trying the read cache first.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	if c, ok := s.cache.Get(ctx, idCacheKey(id)); ok {
		return c, nil
	}
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheCustomer(ctx, customer)
	return customer, nil
}

// GetCustomerByLegalID serves the lookup contract consumed by account-service.
func (s *CustomerService) GetCustomerByLegalID(ctx context.Context, legalID string) (*models.Customer, error) {
	if c, ok := s.cache.Get(ctx, legalIDCacheKey(legalID)); ok {
		return c, nil
	}
	customer, err := s.repo.GetByLegalID(ctx, legalID)
	if err != nil {
		return nil, err
	}
	s.cacheCustomer(ctx, customer)
	return customer, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.repo.List(ctx)
}

// UpdateCustomer applies the changes and publishes customer.event.updated in
// the same unit of work. Changing the legal ID re-checks uniqueness.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, params UpdateCustomerParams) (*models.Customer, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.LegalID != params.LegalID {
		if _, err := s.repo.GetByLegalID(ctx, params.LegalID); err == nil {
			return nil, errs.ErrLegalIDUsed
		} else if !errors.Is(err, errs.ErrNoSuchCustomer) {
			return nil, err
		}
	}

	previousLegalID := existing.LegalID
	existing.Name = params.Name
	existing.LegalID = params.LegalID
	existing.Type = params.Type
	existing.Status = params.Status
	existing.Address = params.Address
	existing.UpdatedAt = time.Now().UTC()

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Update(ctx, existing); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.CustomerEventsStream, events.CustomerUpdated, existing)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, legalIDCacheKey(previousLegalID))
	s.cacheCustomer(ctx, existing)
	s.log.Info("customer updated", zap.Int64("customer_id", id))
	return existing, nil
}

// DeleteCustomer removes the customer and publishes customer.event.deleted
// with the bare identifier. Downstream services reconcile dependent state on
// receipt of that event.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.CustomerEventsStream, events.CustomerDeleted, events.DeletedPayload{ID: id})
	})
	if err != nil {
		return err
	}

	s.cache.Delete(ctx, idCacheKey(id))
	s.cache.Delete(ctx, legalIDCacheKey(existing.LegalID))
	s.log.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

// inTx runs fn inside a transaction, rolling back on any error. The event
// publish happens inside fn, before commit, so a broker fault undoes the
// domain write.
func (s *CustomerService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
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

func (s *CustomerService) cacheCustomer(ctx context.Context, c *models.Customer) {
	s.cache.Set(ctx, idCacheKey(c.ID), c)
	s.cache.Set(ctx, legalIDCacheKey(c.LegalID), c)
}

func idCacheKey(id int64) string { return fmt.Sprintf("customer:view:id:%d", id) }

func legalIDCacheKey(legalID string) string { return "customer:view:legal:" + legalID }
