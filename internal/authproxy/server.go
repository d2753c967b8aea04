package authproxy

import (
	"net/http"
	"time"

	"spotivr/internal/exchange"
)

// NewServer wires the exchange handler into an HTTP server listening on
// addr. Shutdown is the caller's responsibility.
func NewServer(addr string, handler *Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(exchange.AuthenticationPath, handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
