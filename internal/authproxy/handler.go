package authproxy

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"spotivr/internal/exchange"
	"spotivr/pkg/logging"

	"golang.org/x/oauth2"
)

// expiryMargin is subtracted from the upstream expiry so clients renew
// before the token actually lapses.
const expiryMargin = 5 * time.Minute

// maxRequestBytes bounds the request body. Exchange requests are tiny.
const maxRequestBytes = 64 * 1024

// Wire error messages. Clients match on these, so they are part of the
// endpoint contract.
const (
	errAuthorizing = "Error while authorizing Spotify"
	errRefreshing  = "Error while refreshing Spotify"
)

// Handler implements the token exchange endpoint. It is the only component
// that holds the client secret: browsers and local clients send authorization
// codes and refresh tokens here, and the handler performs the confidential
// upstream exchange on their behalf.
type Handler struct {
	clientID      string
	clientSecret  string
	tokenEndpoint string
}

// NewHandler creates a token exchange handler for the given upstream token
// endpoint.
func NewHandler(clientID, clientSecret, tokenEndpoint string) *Handler {
	return &Handler{
		clientID:      clientID,
		clientSecret:  clientSecret,
		tokenEndpoint: tokenEndpoint,
	}
}

// oauthConfig builds the upstream client config. A fresh config per request
// keeps the redirect URI request-scoped.
func (h *Handler) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.clientID,
		ClientSecret: h.clientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  h.tokenEndpoint,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req exchange.AuthRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	switch req.Type {
	case exchange.TypeAuthorize:
		h.handleAuthorize(r.Context(), w, req)
	case exchange.TypeRefresh:
		h.handleRefresh(r.Context(), w, req)
	default:
		// Only our own clients talk to this endpoint, so an unknown type
		// is a programmer error, not user input to tolerate.
		logging.Error("AuthProxy", nil, "Unrecognized authentication request type: %q", req.Type)
		writeJSON(w, map[string]string{"error": "Unrecognized type: " + req.Type})
	}
}

func (h *Handler) handleAuthorize(ctx context.Context, w http.ResponseWriter, req exchange.AuthRequest) {
	token, err := h.oauthConfig(req.CallbackURI).Exchange(ctx, req.Code)
	if err != nil {
		logging.Warn("AuthProxy", "Authorization code exchange failed: %v", err)
		writeError(w, errAuthorizing)
		return
	}

	logging.Info("AuthProxy", "Authorized a new session (expires %s)", token.Expiry.Format(time.RFC3339))
	h.writeToken(w, token, "")
}

func (h *Handler) handleRefresh(ctx context.Context, w http.ResponseWriter, req exchange.AuthRequest) {
	source := h.oauthConfig("").TokenSource(ctx, &oauth2.Token{RefreshToken: req.RefreshToken})
	token, err := source.Token()
	if err != nil {
		logging.Warn("AuthProxy", "Refresh token exchange failed: %v", err)
		writeError(w, errRefreshing)
		return
	}

	logging.Info("AuthProxy", "Refreshed a session (expires %s)", token.Expiry.Format(time.RFC3339))
	h.writeToken(w, token, req.RefreshToken)
}

// writeToken serialises an upstream token for the client, pulling the expiry
// forward by the safety margin. When the upstream rotates no refresh token,
// the one the client sent keeps being valid and is echoed back.
func (h *Handler) writeToken(w http.ResponseWriter, token *oauth2.Token, priorRefreshToken string) {
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = priorRefreshToken
	}

	writeJSON(w, exchange.AuthResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    token.Expiry.Add(-expiryMargin).UnixMilli(),
	})
}

// writeError reports an upstream failure. The status stays 200: failure is
// expressed in the payload shape so browser clients can read it without
// tripping CORS error handling.
func writeError(w http.ResponseWriter, message string) {
	writeJSON(w, exchange.AuthResponse{
		Type:  exchange.TypeError,
		Error: message,
	})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn("AuthProxy", "Failed to write response: %v", err)
	}
}
