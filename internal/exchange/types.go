package exchange

// Request type discriminators for the token-exchange endpoint.
const (
	// TypeAuthorize exchanges a one-time authorization code.
	TypeAuthorize = "authorize"
	// TypeRefresh exchanges a refresh token.
	TypeRefresh = "refresh"
	// TypeError marks an error-shaped response body.
	TypeError = "error"
)

// AuthRequest is the JSON body sent to POST /api/authentication. Type is
// always present; Code and CallbackURI are set for "authorize" requests,
// RefreshToken for "refresh" requests.
type AuthRequest struct {
	Type         string `json:"type"`
	Code         string `json:"code,omitempty"`
	CallbackURI  string `json:"callback_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthResponse is the JSON body returned by the token-exchange endpoint.
//
// The proxy answers HTTP 200 for both outcomes: a success body carries
// the credential triple, a failure body carries Type "error" and a
// human-readable message. Callers must inspect the body, not just the
// status. ExpiresAt is epoch milliseconds with the proxy's five-minute
// safety margin already subtracted.
type AuthResponse struct {
	Type         string `json:"type,omitempty"`
	Error        string `json:"error,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// IsError reports whether the response body is error-shaped.
func (r *AuthResponse) IsError() bool {
	return r.Type == TypeError || r.Error != ""
}
