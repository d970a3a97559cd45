// Package bigcommerce implements the commerce-platform integration: the
// customer-impersonation token provider, the storefront GraphQL query client,
// the page-context resolver, and the REST catalog enrichment lookup.
//
// All upstream calls are single-attempt by design: the chat pipeline prefers
// degrading (catalog highlights, or a canned apology further up) over
// retry-induced latency, so no backoff or retries live here.
package bigcommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultAPIBase is the management-API origin used when none is configured.
const DefaultAPIBase = "https://api.bigcommerce.com"

// tokenTTL is the validity window requested for impersonation tokens. Tokens
// are single-use per resolver invocation and never cached, so a short window
// is all the pipeline needs.
const tokenTTL = 60 * time.Second

// impersonationChannelID is the storefront channel tokens are scoped to.
const impersonationChannelID = 1

// Client issues authenticated calls against the commerce platform: the
// management API (token issuance, catalog REST) and per-store storefront
// GraphQL endpoints.
//
// APIBase and StorefrontScheme exist so tests can point the client at local
// fakes; production uses the defaults.
type Client struct {
	// APIBase is the management-API origin, e.g. "https://api.bigcommerce.com".
	APIBase string
	// StorefrontScheme is the scheme used for per-store GraphQL endpoints.
	StorefrontScheme string
	// HTTPClient performs all requests. Its Timeout bounds every upstream
	// call; the pipeline configures no other cancellation.
	HTTPClient *http.Client
}

// NewClient returns a Client with production defaults and the given timeout.
func NewClient(apiBase string, timeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		APIBase:          apiBase,
		StorefrontScheme: "https",
		HTTPClient:       &http.Client{Timeout: timeout},
	}
}

// impersonationTokenRequest is the token-issuance payload. The expiry is an
// absolute unix timestamp, not a duration.
type impersonationTokenRequest struct {
	ChannelID int   `json:"channel_id"`
	ExpiresAt int64 `json:"expires_at"`
}

// impersonationTokenResponse carries the issued bearer token.
type impersonationTokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// CreateCustomerImpersonationToken requests a short-lived storefront bearer
// credential for the store, authenticated with its long-lived access token.
// The credential expires 60 seconds after issuance and must be treated as
// single-use. Any transport error or non-2xx response propagates; there is no
// retry.
func (c *Client) CreateCustomerImpersonationToken(ctx context.Context, storeHash, accessToken string) (string, error) {
	expiresAt := time.Now().Add(tokenTTL).Unix()

	body, err := json.Marshal(impersonationTokenRequest{
		ChannelID: impersonationChannelID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("bigcommerce: marshal token request: %w", err)
	}

	url := fmt.Sprintf("%s/stores/%s/v3/storefront/api-token-customer-impersonation", c.APIBase, storeHash)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("bigcommerce: build token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bigcommerce: token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("bigcommerce: token endpoint returned %s", resp.Status)
	}

	var parsed impersonationTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("bigcommerce: decode token response: %w", err)
	}
	if parsed.Data.Token == "" {
		return "", fmt.Errorf("bigcommerce: token endpoint returned an empty token")
	}

	log.Debug().Str("store_hash", storeHash).Msg("issued customer impersonation token")
	return parsed.Data.Token, nil
}

// doJSON performs an HTTP request and decodes a JSON body into out, enforcing
// a 2xx status. Shared by the REST catalog calls.
func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body into the error for log context.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("bigcommerce: %s %s returned %s: %s", req.Method, req.URL.Path, resp.Status, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
