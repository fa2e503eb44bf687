package interfaces

import (
	"context"

	"upstox-mcp/internal/types"
)

// MarketClient is the remote Upstox REST API. Callers pass the bearer token
// explicitly; the client holds no credential state of its own.
type MarketClient interface {
	GetProfile(ctx context.Context, token string) (types.Profile, error)
	GetHoldings(ctx context.Context, token string) ([]types.Holding, error)
	GetPositions(ctx context.Context, token string) ([]types.Position, error)
	GetLTP(ctx context.Context, token, instrumentKey string) (types.LTPQuote, error)
	GetFullQuote(ctx context.Context, token, instrumentKey string) (types.FullQuote, error)
	GetMarketStatus(ctx context.Context, token string) (types.MarketStatus, error)
}
