// Package spotify holds the thin client-side pieces that talk directly to
// the identity provider's API. The playback client and playlist browsing
// live outside this core; only the identity check needed by the session
// router is implemented here.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	retry "github.com/appleboy/go-httpretry"

	"spotivr/pkg/logging"
)

// DefaultAPIBaseURL is the identity provider's Web API root.
const DefaultAPIBaseURL = "https://api.spotify.com"

// validateTimeout bounds the identity-check round trip.
const validateTimeout = 10 * time.Second

// Validator checks whether an access token is still accepted by the
// identity provider.
type Validator struct {
	baseURL string
	client  *retry.Client
}

// NewValidator creates a validator against the given API base URL. An
// empty baseURL selects the production API. Transient upstream failures
// are retried by the underlying client; a request that still fails only
// makes the token count as invalid.
func NewValidator(baseURL string) (*Validator, error) {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	client, err := retry.NewBackgroundClient(
		retry.WithHTTPClient(&http.Client{Timeout: validateTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Validator{baseURL: baseURL, client: client}, nil
}

// Validate performs one "who am I" call with the token as a bearer
// credential. It returns false on any non-success status or network
// failure; validity is a boolean signal only, errors are never
// propagated.
func (v *Validator) Validate(ctx context.Context, accessToken string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, v.baseURL+"/v1/me", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.client.DoWithContext(reqCtx, req)
	if err != nil {
		logging.Debug("Spotify", "Identity check failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
