// Package authproxy implements the confidential side of the OAuth flow.
//
// The Spotify token endpoint requires the client secret, which must never
// reach end-user clients. This package exposes a single endpoint,
// POST /api/authentication, that accepts authorization codes and refresh
// tokens and performs the secret-bearing exchange upstream. Upstream
// failures are reported in the response payload rather than the HTTP
// status, so cross-origin callers can always read the result.
package authproxy
