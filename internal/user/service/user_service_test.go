package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corebank/services/internal/user/repository"
	"github.com/corebank/services/shared/config"
	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/events"
	"github.com/corebank/services/shared/middleware"
	"github.com/corebank/services/shared/utils"
)

type publishedEvent struct {
	stream    string
	eventType string
}

type mockPublisher struct {
	published []publishedEvent
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, stream, eventType string, _ any) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, publishedEvent{stream: stream, eventType: eventType})
	return nil
}

var testAuth = config.AuthConfig{
	JWTSecret:       "test-secret",
	TokenExpiration: time.Hour,
	Issuer:          "corebank",
}

func newTestService(t *testing.T, publisher EventPublisher) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewUserService(db, repository.NewUserRepository(db), publisher, testAuth, zap.NewNop())
	return svc, mock
}

func TestCreateUserPersistsAndPublishes(t *testing.T) {
	publisher := &mockPublisher{}
	svc, mock := newTestService(t, publisher)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := svc.CreateUser(context.Background(), CreateUserParams{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.True(t, len(user.ID) > 4 && user.ID[:4] == "usr-")

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.UserEventsStream, publisher.published[0].stream)
	assert.Equal(t, events.UserCreated, publisher.published[0].eventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, mock := newTestService(t, &mockPublisher{})

	hash, err := utils.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email =").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "phone_number", "address", "created_at", "updated_at"}).
			AddRow("usr-abc123", "Jane Doe", "jane@example.com", hash, "", "", now, now))

	token, user, err := svc.Login(context.Background(), "jane@example.com", "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, "usr-abc123", user.ID)

	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testAuth.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "usr-abc123", claims.UserID)
	assert.Equal(t, "corebank", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newTestService(t, &mockPublisher{})

	hash, err := utils.HashPassword("the right password")
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email =").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "phone_number", "address", "created_at", "updated_at"}).
			AddRow("usr-abc123", "Jane Doe", "jane@example.com", hash, "", "", now, now))

	_, _, err = svc.Login(context.Background(), "jane@example.com", "the wrong password")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

// An unknown email reports the same credential error as a bad password.
func TestLoginUnknownEmail(t *testing.T) {
	svc, mock := newTestService(t, &mockPublisher{})

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email =").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "phone_number", "address", "created_at", "updated_at"}))

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}
