package session

import (
	"time"
)

// Session is the authenticated state: the credential triple obtained from
// the token-exchange proxy.
//
// ExpiresAt already includes the proxy's five-minute safety margin, so a
// renewal scheduled for ExpiresAt always runs before the access token
// actually expires.
type Session struct {
	// AccessToken is the bearer credential for the identity provider's API.
	AccessToken string

	// RefreshToken is the long-lived credential used to mint new access
	// tokens. It is retained across renewals even when the provider omits
	// a new one in its response.
	RefreshToken string

	// ExpiresAt is the absolute expiry of AccessToken, margin included.
	ExpiresAt time.Time
}

// IsZero reports whether the session carries no credentials.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.ExpiresAt.IsZero()
}

// TTL returns the remaining lifetime of the session relative to now.
// The result is negative once the session is past its safety margin.
func (s Session) TTL(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}
