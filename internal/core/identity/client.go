// Package identity holds the outbound HTTP client for the external identity
// provider used by the session exchange flow.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Identity is the profile the provider returns for a valid external session.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Provider resolves an opaque external session id to an identity. The
// exchange service depends on this interface so tests can stub the provider.
type Provider interface {
	Resolve(ctx context.Context, sessionID string) (Identity, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	name       string
}

// NewClient builds a provider client. The timeout bounds the whole exchange
// call, including body read.
func NewClient(name, baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		name: name,
	}
}

// Name identifies the provider in sessions and grants.
func (c *Client) Name() string { return c.name }

func (c *Client) Resolve(ctx context.Context, sessionID string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session-data", nil)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: provider call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("identity: provider returned status %d", resp.StatusCode)
	}

	var ident Identity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return Identity{}, fmt.Errorf("identity: decode response: %w", err)
	}
	if ident.Email == "" {
		return Identity{}, fmt.Errorf("identity: provider response missing email")
	}

	return ident, nil
}
