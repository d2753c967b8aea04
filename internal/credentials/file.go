package credentials

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultStorageDir is the default directory for credential slot files,
// relative to the user's home directory.
const DefaultStorageDir = ".config/spotivr/credentials"

// FileSlots stores each slot in its own file. Files are created with 0600
// permissions and the directory with 0700, owner access only.
type FileSlots struct {
	dir string
}

// NewFileSlots creates a file-backed slot store rooted at dir. An empty
// dir selects DefaultStorageDir under the user's home directory.
func NewFileSlots(dir string) (*FileSlots, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, DefaultStorageDir)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential storage directory: %w", err)
	}

	return &FileSlots{dir: dir}, nil
}

// Get reads a slot file. Absent or unreadable files report ok=false.
func (f *FileSlots) Get(key string) (string, bool) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set writes a slot file with owner-only permissions.
func (f *FileSlots) Set(key, value string) error {
	if err := os.WriteFile(f.path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write credential slot %s: %w", key, err)
	}
	return nil
}

// Delete removes a slot file. A missing file is not an error.
func (f *FileSlots) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileSlots) path(key string) string {
	return filepath.Join(f.dir, key)
}
