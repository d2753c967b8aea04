package credentials

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"spotivr/internal/session"
)

func TestFileSlots_RoundTrip(t *testing.T) {
	slots, err := NewFileSlots(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSlots failed: %v", err)
	}

	if _, ok := slots.Get("access_token"); ok {
		t.Error("expected empty store before Set")
	}

	if err := slots.Set("access_token", "tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok := slots.Get("access_token")
	if !ok || value != "tok" {
		t.Errorf("Get = (%q, %v), expected (\"tok\", true)", value, ok)
	}

	if err := slots.Delete("access_token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := slots.Get("access_token"); ok {
		t.Error("expected slot to be gone after Delete")
	}
}

func TestFileSlots_Delete_Missing(t *testing.T) {
	slots, err := NewFileSlots(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSlots failed: %v", err)
	}

	if err := slots.Delete("never-set"); err != nil {
		t.Errorf("Delete of a missing slot should not error, got: %v", err)
	}
}

func TestFileSlots_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permission bits are not meaningful on Windows")
	}

	dir := t.TempDir()
	slots, err := NewFileSlots(dir)
	if err != nil {
		t.Fatalf("NewFileSlots failed: %v", err)
	}

	if err := slots.Set("refresh_token", "secret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "refresh_token"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("slot file permissions = %o, expected 0600", perm)
	}
}

func TestFileSlots_SurvivesReload(t *testing.T) {
	dir := t.TempDir()

	slots, err := NewFileSlots(dir)
	if err != nil {
		t.Fatalf("NewFileSlots failed: %v", err)
	}

	sess := session.Session{
		AccessToken:  "abc",
		RefreshToken: "def",
		ExpiresAt:    time.UnixMilli(1700000000000),
	}
	if err := NewStore(slots).Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Reopen the same directory, as after a restart.
	reopened, err := NewFileSlots(dir)
	if err != nil {
		t.Fatalf("NewFileSlots failed: %v", err)
	}

	loaded, ok := NewStore(reopened).Load()
	if !ok {
		t.Fatal("expected Load to succeed after reopen")
	}
	if loaded != sess {
		t.Errorf("loaded session %+v, expected %+v", loaded, sess)
	}
}
