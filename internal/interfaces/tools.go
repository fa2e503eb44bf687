package interfaces

import (
	"context"

	"upstox-mcp/internal/types"
)

// Tools is the façade exposed to the assistant runtime. Each operation
// acquires its token through the session, optionally resolves an instrument,
// delegates to the market client, and shapes the response. No operation
// performs its own retry or auth logic.
type Tools interface {
	GetUserProfile(ctx context.Context) (types.Profile, error)
	GetHoldings(ctx context.Context) (types.HoldingsReport, error)
	GetPositions(ctx context.Context) (types.PositionsReport, error)
	GetStockPrice(ctx context.Context, instrumentKey string) (types.LTPQuote, error)
	GetFullMarketQuote(ctx context.Context, instrumentKey string) (types.FullQuote, error)
	GetInstrumentKey(ctx context.Context, symbol string) (types.Instrument, error)
	SearchStocks(ctx context.Context, term string, limit int) ([]types.SearchResult, error)
	GetMarketStatus(ctx context.Context) (types.MarketStatus, error)
	CheckConnection(ctx context.Context) (types.ConnectionStatus, error)
}
