package auth

import (
	"context"
	"time"

	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/interfaces"
)

// Session is the gatekeeper every tool call passes through. It reconciles
// the in-memory view with the persisted credential on every read, so a token
// refreshed by the authenticate command is picked up without a restart.
//
// In this headless context an expired credential surfaces as AuthRequired;
// reauthorization is only ever performed by the interactive flow.
type Session struct {
	store interfaces.CredentialStore
	now   func() time.Time
}

var _ interfaces.TokenProvider = (*Session)(nil)

func NewSession(store interfaces.CredentialStore) *Session {
	return &Session{store: store, now: time.Now}
}

// GetValidToken returns the stored access token if it is still inside the
// current daily window. Validity is decided purely from the recorded expiry;
// no network call is made.
func (s *Session) GetValidToken(ctx context.Context) (string, error) {
	cred, ok, err := s.store.Load()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", faults.New(faults.AuthRequired,
			"no credential on file; run the authenticate command to log in")
	}
	if !cred.Valid(s.now()) {
		return "", faults.New(faults.AuthRequired,
			"access token expired at %s; run the authenticate command to log in again",
			cred.ExpiresAt.Format(time.RFC3339))
	}
	return cred.AccessToken, nil
}
