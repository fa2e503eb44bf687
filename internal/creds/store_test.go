package creds

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"upstox-mcp/internal/types"
)

func testCredential() types.Credential {
	issued := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	return types.Credential{
		AccessToken: "test-token-abc123",
		IssuedAt:    issued,
		ExpiresAt:   issued.Add(12 * time.Hour),
		SavedAt:     issued,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)

	want := testCredential()
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after save")
	}
	if got.AccessToken != want.AccessToken {
		t.Errorf("access token = %q, want %q", got.AccessToken, want.AccessToken)
	}
	if !got.IssuedAt.Equal(want.IssuedAt) {
		t.Errorf("issued at = %v, want %v", got.IssuedAt, want.IssuedAt)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("expires at = %v, want %v", got.ExpiresAt, want.ExpiresAt)
	}
}

func TestLoadMissingFileIsNotAuthenticated(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nonexistent.json"))

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing file")
	}
}

func TestLoadMalformedFileIsNotAuthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("malformed file should not be an error, got %v", err)
	}
	if ok {
		t.Error("expected ok=false for a malformed file")
	}
}

func TestLoadEmptyTokenIsNotAuthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{"access_token":""}`), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for an empty token")
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)

	first := testCredential()
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.AccessToken = "replacement-token"
	second.SavedAt = first.SavedAt.Add(time.Hour)
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load after replace: ok=%v err=%v", ok, err)
	}
	if got.AccessToken != "replacement-token" {
		t.Errorf("access token = %q, want replacement", got.AccessToken)
	}
}

func TestSaveRestrictsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)

	if err := store.Save(testCredential()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credential file mode = %o, want 600", perm)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "token.json"))

	if err := store.Save(testCredential()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "token.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only token.json, got %v", names)
	}
}
