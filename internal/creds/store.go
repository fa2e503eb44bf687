package creds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/types"
)

// FileStore persists the single current credential as a JSON file. Writes
// go to a temp file in the same directory and are renamed into place, so a
// crash mid-write never leaves a partial credential behind. All access is
// serialized by a mutex.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ interfaces.CredentialStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the current credential. A missing or malformed file is the
// normal "not yet authenticated" state and reports ok=false with no error.
func (s *FileStore) Load() (types.Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.Credential{}, false, nil
		}
		return types.Credential{}, false, fmt.Errorf("read credential file: %w", err)
	}

	var cred types.Credential
	if err := json.Unmarshal(b, &cred); err != nil {
		return types.Credential{}, false, nil
	}
	if cred.AccessToken == "" {
		return types.Credential{}, false, nil
	}

	return cred, true, nil
}

// Save replaces the persisted credential wholesale.
func (s *FileStore) Save(cred types.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return faults.Wrap(faults.WriteError, err, "encode credential")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return faults.Wrap(faults.WriteError, err, "create temp credential file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return faults.Wrap(faults.WriteError, err, "write temp credential file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return faults.Wrap(faults.WriteError, err, "close temp credential file")
	}

	// The token is a secret; keep it out of other users' reach.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return faults.Wrap(faults.WriteError, err, "chmod credential file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return faults.Wrap(faults.WriteError, err, "replace credential file")
	}

	return nil
}
