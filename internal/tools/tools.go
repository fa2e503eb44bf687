package tools

import (
	"context"
	"strings"

	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/types"
)

// Toolset composes the session manager, the remote market client, and the
// instrument index into the operations exposed to the assistant runtime.
// Auth lives entirely in the session; no tool retries or refreshes tokens
// on its own.
type Toolset struct {
	session interfaces.TokenProvider
	market  interfaces.MarketClient
	index   interfaces.InstrumentIndex
}

var _ interfaces.Tools = (*Toolset)(nil)

func New(session interfaces.TokenProvider, market interfaces.MarketClient, index interfaces.InstrumentIndex) *Toolset {
	return &Toolset{session: session, market: market, index: index}
}

func (t *Toolset) GetUserProfile(ctx context.Context) (types.Profile, error) {
	token, err := t.session.GetValidToken(ctx)
	if err != nil {
		return types.Profile{}, err
	}
	return t.market.GetProfile(ctx, token)
}

func (t *Toolset) GetHoldings(ctx context.Context) (types.HoldingsReport, error) {
	token, err := t.session.GetValidToken(ctx)
	if err != nil {
		return types.HoldingsReport{}, err
	}

	holdings, err := t.market.GetHoldings(ctx, token)
	if err != nil {
		return types.HoldingsReport{}, err
	}

	report := types.HoldingsReport{Holdings: holdings}
	for _, h := range holdings {
		report.TotalInvestment += h.AveragePrice * float64(h.Quantity)
		report.CurrentValue += h.LastPrice * float64(h.Quantity)
		report.TotalPnL += h.PnL
	}
	if report.TotalInvestment > 0 {
		report.PnLPct = (report.CurrentValue - report.TotalInvestment) / report.TotalInvestment * 100
	}
	return report, nil
}

func (t *Toolset) GetPositions(ctx context.Context) (types.PositionsReport, error) {
	token, err := t.session.GetValidToken(ctx)
	if err != nil {
		return types.PositionsReport{}, err
	}

	positions, err := t.market.GetPositions(ctx, token)
	if err != nil {
		return types.PositionsReport{}, err
	}

	report := types.PositionsReport{Positions: positions}
	for _, p := range positions {
		report.TotalPnL += p.PnL
		report.TotalUnrealised += p.Unrealised
		report.TotalRealised += p.Realised
	}
	return report, nil
}

func (t *Toolset) GetStockPrice(ctx context.Context, instrumentKey string) (types.LTPQuote, error) {
	if strings.TrimSpace(instrumentKey) == "" {
		return types.LTPQuote{}, faults.New(faults.InvalidArgument, "instrument_key cannot be empty")
	}
	token, err := t.session.GetValidToken(ctx)
	if err != nil {
		return types.LTPQuote{}, err
	}
	return t.market.GetLTP(ctx, token, instrumentKey)
}

func (t *Toolset) GetFullMarketQuote(ctx context.Context, instrumentKey string) (types.FullQuote, error) {
	if strings.TrimSpace(instrumentKey) == "" {
		return types.FullQuote{}, faults.New(faults.InvalidArgument, "instrument_key cannot be empty")
	}
	token, err := t.session.GetValidToken(ctx)
	if err != nil {
		return types.FullQuote{}, err
	}

	quote, err := t.market.GetFullQuote(ctx, token, instrumentKey)
	if err != nil {
		return types.FullQuote{}, err
	}

	// Day change is close versus open from the quote's OHLC block.
	if quote.OHLC.Open != 0 {
		quote.DayChange = quote.OHLC.Close - quote.OHLC.Open
		quote.DayChangePct = quote.DayChange / quote.OHLC.Open * 100
	}
	return quote, nil
}

// GetInstrumentKey resolves a human-entered symbol to its instrument key
// using the local catalog only; no token is needed.
func (t *Toolset) GetInstrumentKey(ctx context.Context, symbol string) (types.Instrument, error) {
	return t.index.Resolve(symbol)
}

// SearchStocks performs a ranked fuzzy search over the local catalog only;
// no token is needed.
func (t *Toolset) SearchStocks(ctx context.Context, term string, limit int) ([]types.SearchResult, error) {
	return t.index.Search(term, limit)
}

func (t *Toolset) GetMarketStatus(ctx context.Context) (types.MarketStatus, error) {
	token, err := t.session.GetValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return t.market.GetMarketStatus(ctx, token)
}

// CheckConnection reports whether a valid credential exists and, when it
// does, who it belongs to. Missing or expired credentials are reported as a
// disconnected status, not an error; upstream failures propagate.
func (t *Toolset) CheckConnection(ctx context.Context) (types.ConnectionStatus, error) {
	token, err := t.session.GetValidToken(ctx)
	if err != nil {
		if faults.Is(err, faults.AuthRequired) {
			return types.ConnectionStatus{Connected: false, Detail: err.Error()}, nil
		}
		return types.ConnectionStatus{}, err
	}

	profile, err := t.market.GetProfile(ctx, token)
	if err != nil {
		return types.ConnectionStatus{}, err
	}
	return types.ConnectionStatus{
		Connected: true,
		UserName:  profile.UserName,
		Broker:    profile.Broker,
	}, nil
}
