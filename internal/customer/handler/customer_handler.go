package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/corebank/services/internal/customer/service"
	"github.com/corebank/services/shared/middleware"
	"github.com/corebank/services/shared/models"
)

// CustomerService defines the operations used by CustomerHandler.
type CustomerService interface {
	CreateCustomer(ctx context.Context, params service.CreateCustomerParams) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByLegalID(ctx context.Context, legalID string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, params service.UpdateCustomerParams) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// CustomerHandler handles customer-related HTTP requests.
type CustomerHandler struct {
	customers CustomerService
}

func NewCustomerHandler(customers CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	LegalID string `json:"legalId" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=RETAIL CORPORATE INVESTMENT"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	LegalID string `json:"legalId" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=RETAIL CORPORATE INVESTMENT"`
	Status  string `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
	Address string `json:"address"`
}

// RegisterRoutes mounts the customer API under /api/v1/customers.
func (h *CustomerHandler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/api/v1/customers")
	v1.POST("", h.CreateCustomer)
	v1.GET("", h.ListCustomers)
	v1.GET("/search", h.SearchCustomer)
	v1.GET("/:id", h.GetCustomer)
	v1.PUT("/:id", h.UpdateCustomer)
	v1.DELETE("/:id", h.DeleteCustomer)
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	customer, err := h.customers.CreateCustomer(c.Request.Context(), service.CreateCustomerParams{
		Name:    req.Name,
		LegalID: req.LegalID,
		Type:    req.Type,
		Address: req.Address,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := h.customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// SearchCustomer is the lookup contract consumed by account-service: a
// snapshot by legal identifier, 404 when absent.
func (h *CustomerHandler) SearchCustomer(c *gin.Context) {
	legalID := c.Query("legalId")
	if legalID == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "legalId query parameter is required")
		return
	}
	customer, err := h.customers.GetCustomerByLegalID(c.Request.Context(), legalID)
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.ListCustomers(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	customer, err := h.customers.UpdateCustomer(c.Request.Context(), id, service.UpdateCustomerParams{
		Name:    req.Name,
		LegalID: req.LegalID,
		Type:    req.Type,
		Status:  req.Status,
		Address: req.Address,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.customers.DeleteCustomer(c.Request.Context(), id); err != nil {
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
