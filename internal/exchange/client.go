// Package exchange implements the client side of the backend
// token-exchange endpoint: it turns an authorization code or a refresh
// token into a fresh credential triple. The confidential client secret
// stays on the proxy; this client never sees it.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"spotivr/internal/session"
	"spotivr/pkg/logging"
)

// AuthenticationPath is the proxy's token-exchange route.
const AuthenticationPath = "/api/authentication"

// DefaultHTTPTimeout bounds a single exchange round trip.
const DefaultHTTPTimeout = 30 * time.Second

// Client talks to the backend token-exchange proxy. It performs exactly
// one POST per call and never retries; retry policy, if any, belongs to
// the caller.
type Client struct {
	proxyURL   string
	httpClient *http.Client
}

// NewClient creates an exchange client for the proxy at proxyURL
// (scheme and host, no path). A nil httpClient selects a default with a
// 30-second timeout.
func NewClient(proxyURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{proxyURL: proxyURL, httpClient: httpClient}
}

// ExchangeCode exchanges a one-time authorization code for a session.
// callbackURI must match the redirect URI used in the authorize request.
func (c *Client) ExchangeCode(ctx context.Context, code, callbackURI string) (session.Session, error) {
	return c.post(ctx, AuthRequest{
		Type:        TypeAuthorize,
		Code:        code,
		CallbackURI: callbackURI,
	}, "")
}

// ExchangeRefreshToken exchanges a refresh token for a renewed session.
// When the response omits a refresh token, the caller's original token is
// carried forward; that is never treated as an error.
func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (session.Session, error) {
	return c.post(ctx, AuthRequest{
		Type:         TypeRefresh,
		RefreshToken: refreshToken,
	}, refreshToken)
}

// post performs the exchange round trip. priorRefreshToken is substituted
// when a success body omits refresh_token.
func (c *Client) post(ctx context.Context, authReq AuthRequest, priorRefreshToken string) (session.Session, error) {
	payload, err := json.Marshal(authReq)
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to encode exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL+AuthenticationPath, bytes.NewReader(payload))
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to create exchange request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.Session{}, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to read exchange response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return session.Session{}, fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return session.Session{}, fmt.Errorf("malformed exchange response: %w", err)
	}

	if authResp.IsError() {
		return session.Session{}, fmt.Errorf("token exchange rejected: %s", authResp.Error)
	}

	if authResp.AccessToken == "" {
		return session.Session{}, fmt.Errorf("malformed exchange response: missing access token")
	}

	refreshToken := authResp.RefreshToken
	if refreshToken == "" {
		refreshToken = priorRefreshToken
		logging.Debug("Exchange", "Response omitted refresh token, keeping previous one")
	}

	return session.Session{
		AccessToken:  authResp.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.UnixMilli(authResp.ExpiresAt),
	}, nil
}
