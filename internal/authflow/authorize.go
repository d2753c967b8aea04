package authflow

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultAuthorizeEndpoint is the identity provider's consent screen.
const DefaultAuthorizeEndpoint = "https://accounts.spotify.com/authorize"

// AuthorizeParams are the query parameters of an authorization request.
type AuthorizeParams struct {
	// ClientID is the provider-issued public client identifier.
	ClientID string

	// RedirectURI is where the consent screen sends the user back to.
	RedirectURI string

	// Scopes are the requested permission scopes.
	Scopes []string

	// State is the random anti-replay value echoed on the return leg.
	State string
}

// BuildAuthorizeURL constructs the consent-screen URL for an
// authorization-code request. An empty endpoint selects the provider
// default.
func BuildAuthorizeURL(endpoint string, params AuthorizeParams) (string, error) {
	if endpoint == "" {
		endpoint = DefaultAuthorizeEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorize endpoint: %w", err)
	}

	query := url.Values{
		"client_id":     {params.ClientID},
		"redirect_uri":  {params.RedirectURI},
		"scope":         {strings.Join(params.Scopes, " ")},
		"response_type": {"code"},
		"state":         {params.State},
		"show_dialog":   {"false"},
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}
