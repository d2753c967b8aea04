package authflow

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultCallbackPort is the default port for the loopback callback
// listener.
const DefaultCallbackPort = 5173

// maxMessageBytes bounds the size of a posted protocol message.
const maxMessageBytes = 16 << 10

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

// callbackServer is a temporary loopback HTTP server that receives a
// single authorization result and then shuts down. The result is
// delivered at most once regardless of how many requests arrive; stray
// or duplicate requests after the first are rejected.
type callbackServer struct {
	port          int
	expectedState string
	server        *http.Server
	listener      net.Listener
	resultCh      chan Result
	once          sync.Once
	serverURL     string
}

// newCallbackServer creates a callback server for one flow. Port 0
// selects a random available port. If expectedState is non-empty,
// redirects carrying a different state resolve to a failure.
func newCallbackServer(port int, expectedState string) *callbackServer {
	return &callbackServer{
		port:          port,
		expectedState: expectedState,
		resultCh:      make(chan Result, 1),
	}
}

// start begins listening and returns the redirect URI for the authorize
// request. The server stops when the context is cancelled.
func (s *callbackServer) start(ctx context.Context) (string, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.serverURL = fmt.Sprintf("http://127.0.0.1:%d", s.port)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.deliver(Result{Err: err})
		}
	}()

	go func() {
		<-ctx.Done()
		s.stop()
	}()

	return s.redirectURI(), nil
}

// results returns the one-shot result channel.
func (s *callbackServer) results() <-chan Result {
	return s.resultCh
}

// redirectURI returns the callback URI served by this listener.
func (s *callbackServer) redirectURI() string {
	return s.serverURL + "/callback"
}

// deliver sends the result exactly once.
func (s *callbackServer) deliver(result Result) {
	s.once.Do(func() {
		s.resultCh <- result
	})
}

// cancel resolves a still-pending flow with the given failure and shuts
// the listener down.
func (s *callbackServer) cancel(err error) {
	s.deliver(Result{Err: err})
	s.stop()
}

// handleCallback processes the callback request: either the provider's
// redirect (query parameters) or a posted protocol message (JSON body).
func (s *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var result Result
	switch r.Method {
	case http.MethodGet:
		result = s.resultFromRedirect(r)
	case http.MethodPost:
		result = s.resultFromMessage(r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var handled bool
	s.once.Do(func() {
		handled = true
		s.resultCh <- result
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	s.renderResult(w, result)

	// Give the response time to flush before tearing the listener down.
	go func() {
		time.Sleep(1 * time.Second)
		s.stop()
	}()
}

// resultFromRedirect maps the provider's redirect query onto a Result,
// validating the anti-replay state when one was issued.
func (s *callbackServer) resultFromRedirect(r *http.Request) Result {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		return Result{Err: fmt.Errorf("%w: %s", ErrDenied, errParam)}
	}

	if s.expectedState != "" && query.Get("state") != s.expectedState {
		return Result{Err: ErrStateMismatch}
	}

	code := query.Get("code")
	if code == "" {
		return Result{Err: ErrMalformedMessage}
	}

	return Result{Code: code}
}

// resultFromMessage parses a posted protocol message body.
func (s *callbackServer) resultFromMessage(r *http.Request) Result {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		return Result{Err: ErrMalformedMessage}
	}
	return ParseMessage(body)
}

// renderResult writes the HTML page shown in the browser window.
func (s *callbackServer) renderResult(w http.ResponseWriter, result Result) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var tmpl *template.Template
	var data interface{}

	if result.Success() {
		tmpl = template.Must(template.New("success").Parse(callbackSuccessHTML))
	} else {
		tmpl = template.Must(template.New("error").Parse(callbackErrorHTML))
		data = map[string]string{"Error": result.Err.Error()}
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// stop gracefully shuts down the callback server.
func (s *callbackServer) stop() {
	if s.server != nil {
		ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
