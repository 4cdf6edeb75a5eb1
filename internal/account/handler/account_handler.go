package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/corebank/services/internal/account/service"
	"github.com/corebank/services/shared/middleware"
	"github.com/corebank/services/shared/models"
)

// AccountService defines the operations used by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, params service.CreateAccountParams) (*models.Account, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccount(ctx context.Context, id int64, params service.UpdateAccountParams) (*models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type CreateAccountRequest struct {
	CustomerLegalID string          `json:"customerLegalId" validate:"required"`
	Type            string          `json:"type" validate:"required,oneof=SAVINGS SALARY INVESTMENT"`
	Balance         decimal.Decimal `json:"balance"`
}

type UpdateAccountRequest struct {
	Balance decimal.Decimal `json:"balance"`
	Status  string          `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

// RegisterRoutes mounts the account API under /api/v1/accounts.
func (h *AccountHandler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1/accounts")
	v1.POST("", h.CreateAccount)
	v1.GET("", h.ListAccounts)
	v1.GET("/:id", h.GetAccount)
	v1.PUT("/:id", h.UpdateAccount)
	v1.DELETE("/:id", h.DeleteAccount)
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if req.Balance.IsNegative() {
		middleware.RespondWithError(c, http.StatusBadRequest, "Balance must not be negative")
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), service.CreateAccountParams{
		CustomerLegalID: req.CustomerLegalID,
		Type:            req.Type,
		Balance:         req.Balance,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.accounts.UpdateAccount(c.Request.Context(), id, service.UpdateAccountParams{
		Balance: req.Balance,
		Status:  req.Status,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.accounts.DeleteAccount(c.Request.Context(), id); err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
