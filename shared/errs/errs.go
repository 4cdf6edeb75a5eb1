// Package errs defines the error taxonomy shared by all services: business
// errors caused by the caller, mapped to 4xx responses and never retried, and
// system errors caused by infrastructure, mapped to 5xx responses.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// BusinessError is a client-caused rejection with a stable code and message.
type BusinessError struct {
	Code    string
	Status  int
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

// System wraps an infrastructure failure. The enclosing unit of work treats it
// as fatal: for publish failures this is what forces the transaction rollback.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

// NewSystem wraps cause as a SystemError for the given operation.
func NewSystem(op string, cause error) *SystemError {
	return &SystemError{Op: op, Err: cause}
}

// Business error catalogue. Codes are part of the API contract.
var (
	ErrNoSuchCustomer = &BusinessError{Code: "CUSTOMER_NOT_FOUND", Status: http.StatusNotFound, Message: "no such customer"}
	ErrLegalIDUsed    = &BusinessError{Code: "CUSTOMER_LEGAL_ID_USED", Status: http.StatusConflict, Message: "legal ID is already in use"}

	ErrNoSuchAccount        = &BusinessError{Code: "ACCOUNT_NOT_FOUND", Status: http.StatusNotFound, Message: "no such account"}
	ErrCustomerInactive     = &BusinessError{Code: "CUSTOMER_INACTIVE", Status: http.StatusUnprocessableEntity, Message: "customer is not active"}
	ErrAccountLimitExceeded = &BusinessError{Code: "ACCOUNT_LIMIT_EXCEEDED", Status: http.StatusConflict, Message: "customer has reached the maximum number of accounts"}
	ErrRetailAccountType    = &BusinessError{Code: "RETAIL_ACCOUNT_TYPE_INVALID", Status: http.StatusUnprocessableEntity, Message: "retail customers may only open savings accounts"}
	ErrSalaryAccountExists  = &BusinessError{Code: "SALARY_ACCOUNT_ALREADY_EXISTS", Status: http.StatusConflict, Message: "customer already has a salary account"}
	ErrInvestmentMinBalance = &BusinessError{Code: "INVESTMENT_MIN_BALANCE", Status: http.StatusUnprocessableEntity, Message: "investment accounts require a minimum opening balance"}
	// ErrAccountNumberTaken is the retryable conflict surfaced when the
	// randomized account-number suffix collides with an existing row.
	ErrAccountNumberTaken = &BusinessError{Code: "ACCOUNT_NUMBER_CONFLICT", Status: http.StatusConflict, Message: "account number already taken, retry the request"}

	ErrNoSuchUser         = &BusinessError{Code: "USER_NOT_FOUND", Status: http.StatusNotFound, Message: "no such user"}
	ErrEmailUsed          = &BusinessError{Code: "EMAIL_ALREADY_USED", Status: http.StatusConflict, Message: "email is already in use"}
	ErrInvalidCredentials = &BusinessError{Code: "INVALID_CREDENTIALS", Status: http.StatusUnauthorized, Message: "invalid email or password"}
)

// AsBusiness returns the BusinessError in err's chain, if any.
func AsBusiness(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsSystem reports whether err's chain contains a SystemError.
func IsSystem(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}
