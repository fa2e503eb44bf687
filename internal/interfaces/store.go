package interfaces

import "upstox-mcp/internal/types"

// CredentialStore persists the single current credential. Load reports
// ok=false when no credential is on file; that is a normal state, not an
// error.
type CredentialStore interface {
	Load() (cred types.Credential, ok bool, err error)
	Save(cred types.Credential) error
}
