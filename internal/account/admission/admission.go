// Package admission implements the ordered rule chain that decides whether an
// account may be created for a customer. Rules run in a fixed order and the
// first failing rule determines the reported error; later rules are never
// evaluated.
package admission

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/models"
)

// CustomerLookup resolves customer snapshots from the registry. It must
// return errs.ErrNoSuchCustomer for an empty result and a *errs.SystemError
// when the registry itself cannot be reached.
type CustomerLookup interface {
	GetByLegalID(ctx context.Context, legalID string) (*models.CustomerSnapshot, error)
}

// AccountStore is the slice of the account repository the rules consult.
// Both reads are best-effort point-in-time checks; no lock is held between
// the read and the eventual insert.
type AccountStore interface {
	CountByCustomerID(ctx context.Context, customerID int64) (int64, error)
	FindByCustomerIDAndType(ctx context.Context, customerID int64, accountType string) (*models.Account, error)
}

// Request is a candidate account creation.
type Request struct {
	CustomerLegalID string
	Type            string
	Balance         decimal.Decimal
}

// Admitted is the outcome of a passed admission: the resolved customer and
// the allocated account number. Persisting it is the caller's job.
type Admitted struct {
	Customer      *models.CustomerSnapshot
	AccountNumber string
}

// state accumulates what earlier rules resolved for later ones.
type state struct {
	req      Request
	customer *models.CustomerSnapshot
}

type rule struct {
	name  string
	check func(ctx context.Context, st *state) error
}

// Pipeline evaluates admission requests against the configured rule chain.
type Pipeline struct {
	lookup        CustomerLookup
	store         AccountStore
	maxAccounts   int64
	minInvestment decimal.Decimal
	rules         []rule
}

// NewPipeline builds the pipeline with the configured thresholds. The rule
// order is part of the contract and is covered by tests.
func NewPipeline(lookup CustomerLookup, store AccountStore, maxAccounts int64, minInvestment decimal.Decimal) *Pipeline {
	p := &Pipeline{
		lookup:        lookup,
		store:         store,
		maxAccounts:   maxAccounts,
		minInvestment: minInvestment,
	}
	p.rules = []rule{
		{name: "resolve-customer", check: p.resolveCustomer},
		{name: "customer-active", check: p.customerActive},
		{name: "account-limit", check: p.accountLimit},
		{name: "retail-account-type", check: p.retailAccountType},
		{name: "salary-uniqueness", check: p.salaryUniqueness},
		{name: "investment-minimum", check: p.investmentMinimum},
	}
	return p
}

// Admit runs the rule chain. Each rejection is terminal; the pipeline never
// retries.
func (p *Pipeline) Admit(ctx context.Context, req Request) (*Admitted, error) {
	st := &state{req: req}
	for _, r := range p.rules {
		if err := r.check(ctx, st); err != nil {
			return nil, fmt.Errorf("admission rule %s: %w", r.name, err)
		}
	}
	return &Admitted{
		Customer:      st.customer,
		AccountNumber: AllocateAccountNumber(req.CustomerLegalID),
	}, nil
}

// resolveCustomer fetches the snapshot the remaining rules evaluate against.
// The lookup's two failure classes pass through unchanged.
func (p *Pipeline) resolveCustomer(ctx context.Context, st *state) error {
	customer, err := p.lookup.GetByLegalID(ctx, st.req.CustomerLegalID)
	if err != nil {
		return err
	}
	st.customer = customer
	return nil
}

func (p *Pipeline) customerActive(_ context.Context, st *state) error {
	if st.customer.Status != models.CustomerStatusActive {
		return errs.ErrCustomerInactive
	}
	return nil
}

// accountLimit reads the count fresh immediately before the check. Two
// concurrent requests can both pass at limit-1; the limit is advisory.
func (p *Pipeline) accountLimit(ctx context.Context, st *state) error {
	count, err := p.store.CountByCustomerID(ctx, st.customer.ID)
	if err != nil {
		return err
	}
	if count >= p.maxAccounts {
		return errs.ErrAccountLimitExceeded
	}
	return nil
}

func (p *Pipeline) retailAccountType(_ context.Context, st *state) error {
	if st.customer.Type == models.CustomerTypeRetail && st.req.Type != models.AccountTypeSavings {
		return errs.ErrRetailAccountType
	}
	return nil
}

func (p *Pipeline) salaryUniqueness(ctx context.Context, st *state) error {
	if st.req.Type != models.AccountTypeSalary {
		return nil
	}
	existing, err := p.store.FindByCustomerIDAndType(ctx, st.customer.ID, models.AccountTypeSalary)
	if err != nil {
		return err
	}
	if existing != nil {
		return errs.ErrSalaryAccountExists
	}
	return nil
}

func (p *Pipeline) investmentMinimum(_ context.Context, st *state) error {
	if st.req.Type == models.AccountTypeInvestment && st.req.Balance.LessThan(p.minInvestment) {
		return errs.ErrInvestmentMinBalance
	}
	return nil
}

// AllocateAccountNumber derives an account number from the customer's legal
// identifier plus a 3-digit random suffix in [100, 1000). Collisions are
// possible and handled by the store's unique constraint, which surfaces as a
// retryable conflict.
func AllocateAccountNumber(legalID string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("account number allocation: %v", err))
	}
	return fmt.Sprintf("%s%03d", legalID, n.Int64()+100)
}
