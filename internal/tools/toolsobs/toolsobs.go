package toolsobs

import (
	"context"

	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/logger"
	"upstox-mcp/internal/trace"
	"upstox-mcp/internal/types"
)

// observableTools wraps a Tools implementation with observability
// (logging & tracing)
type observableTools struct {
	tools interfaces.Tools
}

// Compile-time interface check
var _ interfaces.Tools = (*observableTools)(nil)

// Wrap wraps a toolset with observability middleware
func Wrap(tools interfaces.Tools) interfaces.Tools {
	return &observableTools{tools: tools}
}

func (ot *observableTools) GetUserProfile(ctx context.Context) (types.Profile, error) {
	ctx, span := trace.StartSpan(ctx, "tools.GetUserProfile")
	defer span.End()

	profile, err := ot.tools.GetUserProfile(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch user profile", err)
		return types.Profile{}, err
	}

	logger.DebugSkip(ctx, 1, "User profile fetched", "user_id", profile.UserID)
	return profile, nil
}

func (ot *observableTools) GetHoldings(ctx context.Context) (types.HoldingsReport, error) {
	ctx, span := trace.StartSpan(ctx, "tools.GetHoldings")
	defer span.End()

	report, err := ot.tools.GetHoldings(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch holdings", err)
		return types.HoldingsReport{}, err
	}

	logger.DebugSkip(ctx, 1, "Holdings fetched",
		"count", len(report.Holdings),
		"total_pnl", report.TotalPnL,
	)
	return report, nil
}

func (ot *observableTools) GetPositions(ctx context.Context) (types.PositionsReport, error) {
	ctx, span := trace.StartSpan(ctx, "tools.GetPositions")
	defer span.End()

	report, err := ot.tools.GetPositions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err)
		return types.PositionsReport{}, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched",
		"count", len(report.Positions),
		"total_pnl", report.TotalPnL,
	)
	return report, nil
}

func (ot *observableTools) GetStockPrice(ctx context.Context, instrumentKey string) (types.LTPQuote, error) {
	ctx, span := trace.StartSpan(ctx, "tools.GetStockPrice")
	defer span.End()

	quote, err := ot.tools.GetStockPrice(ctx, instrumentKey)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch stock price", err, "instrument_key", instrumentKey)
		return types.LTPQuote{}, err
	}

	logger.DebugSkip(ctx, 1, "Stock price fetched", "instrument_key", instrumentKey, "last_price", quote.LastPrice)
	return quote, nil
}

func (ot *observableTools) GetFullMarketQuote(ctx context.Context, instrumentKey string) (types.FullQuote, error) {
	ctx, span := trace.StartSpan(ctx, "tools.GetFullMarketQuote")
	defer span.End()

	quote, err := ot.tools.GetFullMarketQuote(ctx, instrumentKey)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch market quote", err, "instrument_key", instrumentKey)
		return types.FullQuote{}, err
	}

	logger.DebugSkip(ctx, 1, "Market quote fetched",
		"instrument_key", instrumentKey,
		"last_price", quote.LastPrice,
		"volume", quote.Volume,
	)
	return quote, nil
}

func (ot *observableTools) GetInstrumentKey(ctx context.Context, symbol string) (types.Instrument, error) {
	ctx, span := trace.StartSpan(ctx, "tools.GetInstrumentKey")
	defer span.End()

	inst, err := ot.tools.GetInstrumentKey(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to resolve symbol", err, "symbol", symbol)
		return types.Instrument{}, err
	}

	logger.DebugSkip(ctx, 1, "Symbol resolved", "symbol", symbol, "instrument_key", inst.InstrumentKey)
	return inst, nil
}

func (ot *observableTools) SearchStocks(ctx context.Context, term string, limit int) ([]types.SearchResult, error) {
	ctx, span := trace.StartSpan(ctx, "tools.SearchStocks")
	defer span.End()

	results, err := ot.tools.SearchStocks(ctx, term, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Stock search failed", err, "term", term, "limit", limit)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Stock search completed", "term", term, "matches", len(results))
	return results, nil
}

func (ot *observableTools) GetMarketStatus(ctx context.Context) (types.MarketStatus, error) {
	ctx, span := trace.StartSpan(ctx, "tools.GetMarketStatus")
	defer span.End()

	status, err := ot.tools.GetMarketStatus(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch market status", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Market status fetched", "exchanges", len(status))
	return status, nil
}

func (ot *observableTools) CheckConnection(ctx context.Context) (types.ConnectionStatus, error) {
	ctx, span := trace.StartSpan(ctx, "tools.CheckConnection")
	defer span.End()

	status, err := ot.tools.CheckConnection(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Connection check failed", err)
		return types.ConnectionStatus{}, err
	}

	logger.DebugSkip(ctx, 1, "Connection check completed", "connected", status.Connected)
	return status, nil
}
