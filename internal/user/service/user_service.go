// Package service holds the user-service business logic: user directory CRUD
// plus login, with lifecycle events published inside each unit of work.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/corebank/services/internal/user/repository"
	"github.com/corebank/services/shared/config"
	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/events"
	"github.com/corebank/services/shared/middleware"
	"github.com/corebank/services/shared/models"
	"github.com/corebank/services/shared/utils"
)

// EventPublisher is the slice of the shared publisher this service depends on.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// UserService owns the user directory and issues login tokens.
type UserService struct {
	db        *sql.DB
	repo      *repository.UserRepository
	publisher EventPublisher
	auth      config.AuthConfig
	log       *zap.Logger
}

func NewUserService(db *sql.DB, repo *repository.UserRepository, publisher EventPublisher, auth config.AuthConfig, log *zap.Logger) *UserService {
	return &UserService{db: db, repo: repo, publisher: publisher, auth: auth, log: log}
}

// CreateUserParams carries the validated input for CreateUser.
type CreateUserParams struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	Address     string
}

// UpdateUserParams carries the validated input for UpdateUser.
type UpdateUserParams struct {
	Name        string
	Email       string
	PhoneNumber string
	Address     string
}

// CreateUser registers a user and publishes user.event.created in the same
// unit of work.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (*models.UserView, error) {
	passwordHash, err := utils.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		PhoneNumber:  params.PhoneNumber,
		Address:      params.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.UserEventsStream, events.UserCreated, userToView(user))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID))
	return userToView(user), nil
}

// Login verifies the credentials and returns a signed JWT.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.UserView, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNoSuchUser) {
			return "", nil, errs.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return "", nil, errs.ErrInvalidCredentials
	}

	token, err := middleware.IssueToken([]byte(s.auth.JWTSecret), s.auth.Issuer, user.ID, user.Email, s.auth.TokenExpiration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, userToView(user), nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.UserView, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userToView(user), nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.UserView, len(users))
	for i := range users {
		views[i] = *userToView(&users[i])
	}
	return views, nil
}

// UpdateUser applies profile changes and publishes user.event.updated in the
// same unit of work.
func (s *UserService) UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*models.UserView, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = params.Name
	user.Email = params.Email
	user.PhoneNumber = params.PhoneNumber
	user.Address = params.Address
	user.UpdatedAt = time.Now().UTC()

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Update(ctx, user); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.UserEventsStream, events.UserUpdated, userToView(user))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user updated", zap.String("user_id", id))
	return userToView(user), nil
}

// DeleteUser removes the user and publishes user.event.deleted with the bare
// identifier.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, events.UserEventsStream, events.UserDeleted, map[string]string{"id": id})
	})
	if err != nil {
		return err
	}

	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
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

func userToView(u *models.User) *models.UserView {
	return &models.UserView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
