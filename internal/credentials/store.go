// Package credentials provides durable persistence for the current
// session's credential triple: access token, refresh token, and expiry.
//
// The triple is stored as three independent string slots behind the Slots
// capability, with pluggable backends: plain files (default), the OS
// keychain, or process memory. Absent or corrupt slots are treated as "not
// authenticated", never as an error.
package credentials

import (
	"strconv"
	"time"

	"spotivr/internal/session"
	"spotivr/pkg/logging"
)

// Slot keys. The expiry slot holds a decimal string of epoch milliseconds.
const (
	slotAccessToken  = "access_token"
	slotRefreshToken = "refresh_token"
	slotExpiresAt    = "expires_at"
)

// Slots is the key/value capability a storage backend must provide.
// Get reports ok=false for an absent key; Set replaces the value of a
// single key; Delete removes a key and is a no-op when the key is absent.
type Slots interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Store persists the current Session across restarts.
type Store struct {
	slots Slots
}

// NewStore creates a credential store over the given slot backend.
func NewStore(slots Slots) *Store {
	return &Store{slots: slots}
}

// Load reads the stored session. It returns ok=false when any of the
// three slots is absent or the expiry slot does not parse; missing or
// corrupt data means "not authenticated", not an error.
func (s *Store) Load() (session.Session, bool) {
	accessToken, ok := s.slots.Get(slotAccessToken)
	if !ok || accessToken == "" {
		return session.Session{}, false
	}

	refreshToken, ok := s.slots.Get(slotRefreshToken)
	if !ok || refreshToken == "" {
		return session.Session{}, false
	}

	expiresStr, ok := s.slots.Get(slotExpiresAt)
	if !ok {
		return session.Session{}, false
	}

	expiresMs, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		logging.Warn("CredentialStore", "Stored expiry is not a timestamp, treating as unauthenticated")
		return session.Session{}, false
	}

	return session.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.UnixMilli(expiresMs),
	}, true
}

// Save writes the session as a whole-record replacement of all three
// slots. Token values are never logged.
func (s *Store) Save(sess session.Session) error {
	if err := s.slots.Set(slotAccessToken, sess.AccessToken); err != nil {
		return err
	}
	if err := s.slots.Set(slotRefreshToken, sess.RefreshToken); err != nil {
		return err
	}
	if err := s.slots.Set(slotExpiresAt, strconv.FormatInt(sess.ExpiresAt.UnixMilli(), 10)); err != nil {
		return err
	}

	logging.Info("CredentialStore", "Session stored (expires %s)", sess.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Clear removes all three slots.
func (s *Store) Clear() error {
	for _, key := range []string{slotAccessToken, slotRefreshToken, slotExpiresAt} {
		if err := s.slots.Delete(key); err != nil {
			return err
		}
	}

	logging.Info("CredentialStore", "Session cleared")
	return nil
}
