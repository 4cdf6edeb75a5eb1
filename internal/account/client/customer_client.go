// Package client holds the outbound HTTP client account-service uses to query
// the customer registry.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/corebank/services/shared/errs"
	"github.com/corebank/services/shared/models"
)

// CustomerClient fetches customer snapshots from customer-service by legal
// identifier. Snapshots are fetched per call and never cached here: the
// admission pipeline trades latency for freshness.
//
// The client distinguishes two failure classes that callers must not conflate:
// an empty result (errs.ErrNoSuchCustomer) and an unreachable or failing
// registry (*errs.SystemError). A timeout counts as the latter.
type CustomerClient struct {
	baseURL string
	http    *http.Client
}

// NewCustomerClient creates a client for the registry at baseURL. timeout
// bounds the full round trip.
func NewCustomerClient(baseURL string, timeout time.Duration) *CustomerClient {
	return &CustomerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetByLegalID returns the customer snapshot for legalID.
func (c *CustomerClient) GetByLegalID(ctx context.Context, legalID string) (*models.CustomerSnapshot, error) {
	endpoint := fmt.Sprintf("%s/api/v1/customers/search?legalId=%s", c.baseURL, url.QueryEscape(legalID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.NewSystem("build customer lookup request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.NewSystem("customer lookup", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var snapshot models.CustomerSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
			return nil, errs.NewSystem("decode customer snapshot", err)
		}
		return &snapshot, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.ErrNoSuchCustomer
	default:
		return nil, errs.NewSystem("customer lookup", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
