package authflow

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"spotivr/pkg/logging"
)

// LoopbackChannel implements Channel with a loopback callback server and
// the system browser. At most one flow is pending at a time: Open while a
// flow is pending cancels the prior flow and its channel receives
// ErrReplaced.
type LoopbackChannel struct {
	mu      sync.Mutex
	port    int
	current *callbackServer

	// openBrowser is swapped out in tests.
	openBrowser func(url string) error
}

// NewLoopbackChannel creates a channel listening on the given port. Port
// 0 selects DefaultCallbackPort.
func NewLoopbackChannel(port int) *LoopbackChannel {
	if port == 0 {
		port = DefaultCallbackPort
	}
	return &LoopbackChannel{
		port:        port,
		openBrowser: OpenBrowser,
	}
}

// RedirectURI returns the callback URI consent redirects arrive on. The
// port is fixed by configuration, so the URI is known before Open.
func (c *LoopbackChannel) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", c.port)
}

// Open starts the callback listener, opens the browser at authorizeURL,
// and returns the one-shot result channel. The anti-replay state is read
// from the authorize URL and validated on the return leg.
func (c *LoopbackChannel) Open(ctx context.Context, authorizeURL string) (<-chan Result, error) {
	expectedState, err := stateFromAuthorizeURL(authorizeURL)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		logging.Warn("AuthFlow", "Replacing pending authorization flow")
		c.current.cancel(ErrReplaced)
		c.current = nil
	}

	server := newCallbackServer(c.port, expectedState)
	if _, err := server.start(ctx); err != nil {
		return nil, err
	}

	if err := c.openBrowser(authorizeURL); err != nil {
		server.stop()
		return nil, fmt.Errorf("failed to open consent screen: %w", err)
	}

	c.current = server

	// Detach the bookkeeping once this flow resolves, so a finished flow
	// does not count against single-flight.
	results := make(chan Result, 1)
	go func() {
		result := <-server.results()
		c.mu.Lock()
		if c.current == server {
			c.current = nil
		}
		c.mu.Unlock()
		results <- result
	}()

	return results, nil
}

// Close cancels a pending flow, if any.
func (c *LoopbackChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.cancel(ErrClosed)
		c.current = nil
	}
}

// stateFromAuthorizeURL extracts the state query parameter the router put
// into the authorize URL.
func stateFromAuthorizeURL(authorizeURL string) (string, error) {
	u, err := url.Parse(authorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorize URL: %w", err)
	}
	return u.Query().Get("state"), nil
}
