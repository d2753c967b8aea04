package credentials

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name under which slots are stored in the
// OS keychain.
const keyringService = "spotivr"

// KeyringSlots stores each slot as an entry in the operating system's
// keychain (Keychain on macOS, Secret Service on Linux, Credential
// Manager on Windows).
type KeyringSlots struct {
	service string
}

// NewKeyringSlots creates a keychain-backed slot store.
func NewKeyringSlots() *KeyringSlots {
	return &KeyringSlots{service: keyringService}
}

// Get reads a slot from the keychain. Absent entries and keychain errors
// both report ok=false.
func (k *KeyringSlots) Get(key string) (string, bool) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set writes a slot to the keychain.
func (k *KeyringSlots) Set(key, value string) error {
	return keyring.Set(k.service, key, value)
}

// Delete removes a slot from the keychain. A missing entry is not an
// error.
func (k *KeyringSlots) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
