// Package logging provides structured logging for spotivr, built on the
// standard library's slog package.
//
// Log entries carry a subsystem identifier ("Session", "AuthProxy",
// "CredentialStore", ...) so that output from the different parts of the
// authentication core can be filtered independently. Messages are plain
// printf-formatted strings; structured attributes are limited to the
// subsystem and an optional error.
//
// Credential values (access tokens, refresh tokens, client secrets) must
// never be passed to any function in this package.
//
// Initialize once at startup:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//
// and log from anywhere:
//
//	logging.Info("Session", "authenticated, token expires at %s", expiry)
//	logging.Error("AuthProxy", err, "upstream token request failed")
package logging
