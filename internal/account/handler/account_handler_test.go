package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/services/internal/account/service"
	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/models"
)

// ---- mock implementations ----

type mockAccountService struct {
	createFn func(ctx context.Context, params service.CreateAccountParams) (*models.Account, error)
	getFn    func(ctx context.Context, id int64) (*models.Account, error)
	listFn   func(ctx context.Context) ([]models.Account, error)
	updateFn func(ctx context.Context, id int64, params service.UpdateAccountParams) (*models.Account, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockAccountService) CreateAccount(ctx context.Context, params service.CreateAccountParams) (*models.Account, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) UpdateAccount(ctx context.Context, id int64, params service.UpdateAccountParams) (*models.Account, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, params)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return fmt.Errorf("not configured")
}

// ---- helpers ----

func newAccountTestRouter(svc AccountService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAccountHandler(svc).RegisterRoutes(r)
	return r
}

func sampleAccount() *models.Account {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.Account{
		ID:            1,
		CustomerID:    42,
		AccountNumber: "9001011234567123",
		Type:          models.AccountTypeSavings,
		Balance:       decimal.NewFromInt(500),
		Status:        models.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ---- tests ----

func TestCreateAccountCreated(t *testing.T) {
	var got service.CreateAccountParams
	router := newAccountTestRouter(&mockAccountService{
		createFn: func(_ context.Context, params service.CreateAccountParams) (*models.Account, error) {
			got = params
			return sampleAccount(), nil
		},
	})

	body := `{"customerLegalId":"9001011234567","type":"SAVINGS","balance":"500"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "9001011234567", got.CustomerLegalID)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)))

	var resp models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "9001011234567123", resp.AccountNumber)
	assert.Equal(t, models.AccountTypeSavings, resp.Type)
}

func TestCreateAccountInvalidBody(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader("{not json"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccountInvalidType(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{})

	body := `{"customerLegalId":"9001011234567","type":"CHECKING"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Business rejections carry their catalogue status and stable code.
func TestCreateAccountBusinessErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{errs.ErrNoSuchCustomer, http.StatusNotFound, "CUSTOMER_NOT_FOUND"},
		{errs.ErrCustomerInactive, http.StatusUnprocessableEntity, "CUSTOMER_INACTIVE"},
		{errs.ErrAccountLimitExceeded, http.StatusConflict, "ACCOUNT_LIMIT_EXCEEDED"},
		{errs.ErrRetailAccountType, http.StatusUnprocessableEntity, "RETAIL_ACCOUNT_TYPE_INVALID"},
		{errs.ErrSalaryAccountExists, http.StatusConflict, "SALARY_ACCOUNT_ALREADY_EXISTS"},
		{errs.ErrInvestmentMinBalance, http.StatusUnprocessableEntity, "INVESTMENT_MIN_BALANCE"},
		{errs.ErrAccountNumberTaken, http.StatusConflict, "ACCOUNT_NUMBER_CONFLICT"},
	}

	for _, tc := range cases {
		t.Run(tc.wantCode, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountService{
				createFn: func(context.Context, service.CreateAccountParams) (*models.Account, error) {
					return nil, fmt.Errorf("admission: %w", tc.err)
				},
			})

			body := `{"customerLegalId":"9001011234567","type":"SAVINGS","balance":"500"}`
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp["code"])
		})
	}
}

// Infrastructure faults (unreachable registry, broker outage) surface as 503.
func TestCreateAccountSystemErrorMapsTo503(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{
		createFn: func(context.Context, service.CreateAccountParams) (*models.Account, error) {
			return nil, errs.NewSystem("customer lookup", fmt.Errorf("connection refused"))
		},
	})

	body := `{"customerLegalId":"9001011234567","type":"SAVINGS","balance":"500"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetAccountRoundTrip(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{
		getFn: func(_ context.Context, id int64) (*models.Account, error) {
			require.Equal(t, int64(1), id)
			return sampleAccount(), nil
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.AccountTypeSavings, resp.Type)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, models.AccountStatusActive, resp.Status)
}

func TestGetAccountNotFound(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{
		getFn: func(context.Context, int64) (*models.Account, error) {
			return nil, errs.ErrNoSuchAccount
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAccountNoContent(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{
		deleteFn: func(_ context.Context, id int64) error {
			require.Equal(t, int64(1), id)
			return nil
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

// Deleting an already-deleted id reports not-found, not success.
func TestDeleteAccountAlreadyGone(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{
		deleteFn: func(context.Context, int64) error {
			return errs.ErrNoSuchAccount
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAccountInvalidID(t *testing.T) {
	router := newAccountTestRouter(&mockAccountService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/accounts/abc", strings.NewReader(`{"status":"ACTIVE"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
