package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corebank/services/internal/user/service"
	"github.com/corebank/services/shared/middleware"
	"github.com/corebank/services/shared/models"
)

// UserService defines the operations used by UserHandler.
type UserService interface {
	CreateUser(ctx context.Context, params service.CreateUserParams) (*models.UserView, error)
	Login(ctx context.Context, email, password string) (string, *models.UserView, error)
	GetUser(ctx context.Context, id string) (*models.UserView, error)
	ListUsers(ctx context.Context) ([]models.UserView, error)
	UpdateUser(ctx context.Context, id string, params service.UpdateUserParams) (*models.UserView, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

type UpdateUserRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string           `json:"token"`
	User  *models.UserView `json:"user"`
}

// RegisterRoutes mounts the user API. Registration and login are open;
// everything else requires a bearer token.
func (h *UserHandler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	v1 := r.Group("/api/v1")
	v1.POST("/users", h.CreateUser)
	v1.POST("/auth/login", h.Login)

	protected := v1.Group("/users", auth)
	protected.GET("", h.ListUsers)
	protected.GET("/:id", h.GetUser)
	protected.PUT("/:id", h.UpdateUser)
	protected.DELETE("/:id", h.DeleteUser)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), service.CreateUserParams{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	if users == nil {
		users = []models.UserView{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), service.UpdateUserParams{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		middleware.RespondWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
