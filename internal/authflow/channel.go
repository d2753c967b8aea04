// Package authflow runs the interactive part of the login: it opens the
// identity provider's consent screen in a separate browser window and
// receives the one-shot result on a loopback HTTP listener.
//
// The browser original of this component was a popup window plus a
// postMessage listener; here the same capability is provided by the
// system browser plus a temporary callback server. The wire shape of the
// result message is kept: {"type":"success","data":<code>} on success,
// any other type on failure.
package authflow

import (
	"context"
	"encoding/json"
	"errors"
)

// Result is the outcome of one Open call: either an authorization code or
// a failure. Exactly one Result is delivered per Open.
type Result struct {
	// Code is the one-time authorization code. Empty on failure.
	Code string

	// Err is nil on success and describes the failure otherwise.
	Err error
}

// Success reports whether the result carries an authorization code.
func (r Result) Success() bool {
	return r.Err == nil
}

// Channel is the capability the session router needs for interactive
// login: open an external consent flow and receive exactly one result.
type Channel interface {
	// Open starts the flow for the given authorize URL and returns a
	// one-shot channel on which the result is delivered. Calling Open
	// while a flow is pending replaces it; the prior flow's channel
	// receives a failure.
	Open(ctx context.Context, authorizeURL string) (<-chan Result, error)

	// RedirectURI returns the callback URI consent redirects arrive on.
	RedirectURI() string

	// Close cancels a pending flow, if any.
	Close()
}

// Failure reasons delivered on the result channel.
var (
	// ErrDenied means the provider or the user rejected the authorization.
	ErrDenied = errors.New("authorization denied")
	// ErrMalformedMessage means the callback payload did not match the
	// message protocol.
	ErrMalformedMessage = errors.New("malformed authorization message")
	// ErrStateMismatch means the anti-replay state on the return leg did
	// not match the one sent in the authorize URL.
	ErrStateMismatch = errors.New("authorization state mismatch")
	// ErrReplaced means a newer Open call superseded this flow.
	ErrReplaced = errors.New("authorization flow replaced")
	// ErrClosed means the channel was closed while the flow was pending.
	ErrClosed = errors.New("authorization flow closed")
)

// message is the cross-window message protocol shape. Data is decoded
// loosely so that a non-string payload can be rejected rather than
// silently coerced.
type message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ParseMessage decodes a raw protocol message into a Result. Anything
// that is not a well-formed success message (missing type, type other
// than "success", non-string data) is a failure.
func ParseMessage(raw []byte) Result {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Result{Err: ErrMalformedMessage}
	}

	if msg.Type == "" {
		return Result{Err: ErrMalformedMessage}
	}
	if msg.Type != "success" {
		return Result{Err: ErrDenied}
	}

	code, ok := msg.Data.(string)
	if !ok || code == "" {
		return Result{Err: ErrMalformedMessage}
	}

	return Result{Code: code}
}
