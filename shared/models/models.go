package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer types
const (
	CustomerTypeRetail     = "RETAIL"
	CustomerTypeCorporate  = "CORPORATE"
	CustomerTypeInvestment = "INVESTMENT"
)

// Customer statuses
const (
	CustomerStatusActive   = "ACTIVE"
	CustomerStatusInactive = "INACTIVE"
)

// Account types
const (
	AccountTypeSavings    = "SAVINGS"
	AccountTypeSalary     = "SALARY"
	AccountTypeInvestment = "INVESTMENT"
)

// Account statuses
const (
	AccountStatusActive   = "ACTIVE"
	AccountStatusInactive = "INACTIVE"
)

// Customer is the write model owned by customer-service.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	LegalID   string    `json:"legalId"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdTimestamp"`
	UpdatedAt time.Time `json:"updatedTimestamp"`
}

// CustomerSnapshot is the read-only projection the account admission pipeline
// works with. It is fetched per decision over the lookup client and never
// cached between calls.
type CustomerSnapshot struct {
	ID      int64  `json:"id"`
	LegalID string `json:"legalId"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}

// Account is the write model owned by account-service. CustomerID is the
// canonical owner reference for rows; the legal ID only appears on inbound
// creation requests and in the derived account number.
type Account struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customerId"`
	AccountNumber string          `json:"accountNumber"`
	Type          string          `json:"type"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

// User is the write model owned by user-service.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdTimestamp"`
	UpdatedAt    time.Time `json:"updatedTimestamp"`
}

// UserView is the public projection of a User, without credentials.
type UserView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdTimestamp"`
	UpdatedAt   time.Time `json:"updatedTimestamp"`
}

func ValidCustomerType(t string) bool {
	switch t {
	case CustomerTypeRetail, CustomerTypeCorporate, CustomerTypeInvestment:
		return true
	}
	return false
}

func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeSavings, AccountTypeSalary, AccountTypeInvestment:
		return true
	}
	return false
}
