package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/models"
)

func TestGetByLegalIDReturnsSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/customers/search", r.URL.Path)
		assert.Equal(t, "9001011234567", r.URL.Query().Get("legalId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"legalId":"9001011234567","type":"RETAIL","status":"ACTIVE"}`))
	}))
	defer server.Close()

	c := NewCustomerClient(server.URL, time.Second)
	snapshot, err := c.GetByLegalID(context.Background(), "9001011234567")
	require.NoError(t, err)
	assert.Equal(t, &models.CustomerSnapshot{
		ID: 42, LegalID: "9001011234567", Type: models.CustomerTypeRetail, Status: models.CustomerStatusActive,
	}, snapshot)
}

func TestGetByLegalIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewCustomerClient(server.URL, time.Second)
	_, err := c.GetByLegalID(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, errs.ErrNoSuchCustomer)
	assert.False(t, errs.IsSystem(err))
}

// A failing registry is a system fault, not an empty result.
func TestGetByLegalIDServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewCustomerClient(server.URL, time.Second)
	_, err := c.GetByLegalID(context.Background(), "9001011234567")
	assert.True(t, errs.IsSystem(err))
	assert.NotErrorIs(t, err, errs.ErrNoSuchCustomer)
}

func TestGetByLegalIDUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c := NewCustomerClient(server.URL, time.Second)
	_, err := c.GetByLegalID(context.Background(), "9001011234567")
	assert.True(t, errs.IsSystem(err))
	assert.NotErrorIs(t, err, errs.ErrNoSuchCustomer)
}

// A slow registry counts as unreachable once the client timeout expires.
func TestGetByLegalIDTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		server.Close()
	}()

	c := NewCustomerClient(server.URL, 50*time.Millisecond)
	_, err := c.GetByLegalID(context.Background(), "9001011234567")
	assert.True(t, errs.IsSystem(err))
}
