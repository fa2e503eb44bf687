package interfaces

import "context"

// TokenProvider supplies a currently valid access token or explains why none
// exists. Every tool call that touches the remote API goes through this.
type TokenProvider interface {
	GetValidToken(ctx context.Context) (string, error)
}
