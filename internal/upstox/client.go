package upstox

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"upstox-mcp/internal/api"
	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/types"
)

const DefaultBaseURL = "https://api.upstox.com"

type Params struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS int
}

// Client talks to the Upstox v2 REST API. It holds no credential state;
// callers supply the bearer token on every call. Transient transport
// failures are retried; HTTP error statuses are not.
type Client struct {
	api     *api.Client
	limiter *rate.Limiter
	retry   *api.RetryConfig
}

var _ interfaces.MarketClient = (*Client)(nil)

func NewClient(p Params) *Client {
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.RateLimitRPS <= 0 {
		p.RateLimitRPS = 10
	}
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(p.BaseURL),
			api.WithTimeout(p.Timeout),
			api.WithHeader("Accept", "application/json"),
			api.WithLogging(true),
		),
		limiter: rate.NewLimiter(rate.Limit(p.RateLimitRPS), p.RateLimitRPS),
		retry:   api.DefaultRetryConfig(),
	}
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return faults.Wrap(faults.UpstreamError, err, "rate limiter interrupted")
	}

	req := api.NewRequest(http.MethodGet, path).
		WithContext(ctx).
		WithHeader("Authorization", "Bearer "+token).
		WithHeader("Api-Version", "2.0")

	resp, err := c.api.DoWithRetry(req, c.retry)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			return faults.Wrap(faults.UpstreamError, err, "upstox returned HTTP %d for %s", statusErr.StatusCode, path)
		}
		return faults.Wrap(faults.UpstreamError, err, "upstox request %s failed", path)
	}
	if err := resp.ParseJSON(out); err != nil {
		return faults.Wrap(faults.UpstreamError, err, "decode upstox response for %s", path)
	}
	return nil
}

type profileEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		UserName   string   `json:"user_name"`
		Email      string   `json:"email"`
		UserID     string   `json:"user_id"`
		Broker     string   `json:"broker"`
		Exchanges  []string `json:"exchanges"`
		Products   []string `json:"products"`
		OrderTypes []string `json:"order_types"`
		UserType   string   `json:"user_type"`
		POA        bool     `json:"poa"`
		IsActive   bool     `json:"is_active"`
	} `json:"data"`
}

func (c *Client) GetProfile(ctx context.Context, token string) (types.Profile, error) {
	var env profileEnvelope
	if err := c.get(ctx, token, "/v2/user/profile", &env); err != nil {
		return types.Profile{}, err
	}
	d := env.Data
	return types.Profile{
		UserName:   d.UserName,
		Email:      d.Email,
		UserID:     d.UserID,
		Broker:     d.Broker,
		Exchanges:  d.Exchanges,
		Products:   d.Products,
		OrderTypes: d.OrderTypes,
		UserType:   d.UserType,
		POA:        d.POA,
		IsActive:   d.IsActive,
	}, nil
}

type holdingsEnvelope struct {
	Status string `json:"status"`
	Data   []struct {
		CompanyName   string  `json:"company_name"`
		TradingSymbol string  `json:"trading_symbol"`
		Exchange      string  `json:"exchange"`
		Quantity      int     `json:"quantity"`
		AveragePrice  float64 `json:"average_price"`
		LastPrice     float64 `json:"last_price"`
		PnL           float64 `json:"pnl"`
		DayChangePct  float64 `json:"day_change_percentage"`
	} `json:"data"`
}

func (c *Client) GetHoldings(ctx context.Context, token string) ([]types.Holding, error) {
	var env holdingsEnvelope
	if err := c.get(ctx, token, "/v2/portfolio/long-term-holdings", &env); err != nil {
		return nil, err
	}
	holdings := make([]types.Holding, 0, len(env.Data))
	for _, h := range env.Data {
		holdings = append(holdings, types.Holding{
			CompanyName:   h.CompanyName,
			TradingSymbol: h.TradingSymbol,
			Exchange:      h.Exchange,
			Quantity:      h.Quantity,
			AveragePrice:  h.AveragePrice,
			LastPrice:     h.LastPrice,
			PnL:           h.PnL,
			DayChangePct:  h.DayChangePct,
		})
	}
	return holdings, nil
}

type positionsEnvelope struct {
	Status string `json:"status"`
	Data   []struct {
		TradingSymbol string  `json:"trading_symbol"`
		Exchange      string  `json:"exchange"`
		Product       string  `json:"product"`
		Quantity      int     `json:"quantity"`
		BuyPrice      float64 `json:"buy_price"`
		SellPrice     float64 `json:"sell_price"`
		LastPrice     float64 `json:"last_price"`
		Value         float64 `json:"value"`
		PnL           float64 `json:"pnl"`
		Unrealised    float64 `json:"unrealised"`
		Realised      float64 `json:"realised"`
	} `json:"data"`
}

func (c *Client) GetPositions(ctx context.Context, token string) ([]types.Position, error) {
	var env positionsEnvelope
	if err := c.get(ctx, token, "/v2/portfolio/short-term-positions", &env); err != nil {
		return nil, err
	}
	positions := make([]types.Position, 0, len(env.Data))
	for _, p := range env.Data {
		positions = append(positions, types.Position{
			TradingSymbol: p.TradingSymbol,
			Exchange:      p.Exchange,
			Product:       p.Product,
			Quantity:      p.Quantity,
			BuyPrice:      p.BuyPrice,
			SellPrice:     p.SellPrice,
			LastPrice:     p.LastPrice,
			Value:         p.Value,
			PnL:           p.PnL,
			Unrealised:    p.Unrealised,
			Realised:      p.Realised,
		})
	}
	return positions, nil
}

type ltpEnvelope struct {
	Status string `json:"status"`
	Data   map[string]struct {
		LastPrice float64 `json:"last_price"`
	} `json:"data"`
}

// GetLTP fetches the last traded price for one instrument. The response is
// keyed by the exchange symbol rather than the requested instrument key, so
// the single entry is taken regardless of its key.
func (c *Client) GetLTP(ctx context.Context, token, instrumentKey string) (types.LTPQuote, error) {
	path := "/v2/market-quote/ltp?instrument_key=" + url.QueryEscape(instrumentKey)
	var env ltpEnvelope
	if err := c.get(ctx, token, path, &env); err != nil {
		return types.LTPQuote{}, err
	}
	for _, q := range env.Data {
		return types.LTPQuote{InstrumentKey: instrumentKey, LastPrice: q.LastPrice}, nil
	}
	return types.LTPQuote{}, faults.New(faults.UpstreamError, "no price data available for %s", instrumentKey)
}

type quoteEnvelope struct {
	Status string `json:"status"`
	Data   map[string]struct {
		LastPrice float64 `json:"last_price"`
		Volume    int64   `json:"volume"`
		OHLC      struct {
			Open  float64 `json:"open"`
			High  float64 `json:"high"`
			Low   float64 `json:"low"`
			Close float64 `json:"close"`
		} `json:"ohlc"`
		LastTradeTime string `json:"last_trade_time"`
	} `json:"data"`
}

// GetFullQuote fetches the detailed quote for one instrument. Day-change
// shaping is left to the caller.
func (c *Client) GetFullQuote(ctx context.Context, token, instrumentKey string) (types.FullQuote, error) {
	path := "/v2/market-quote/quotes?instrument_key=" + url.QueryEscape(instrumentKey)
	var env quoteEnvelope
	if err := c.get(ctx, token, path, &env); err != nil {
		return types.FullQuote{}, err
	}
	for _, q := range env.Data {
		return types.FullQuote{
			InstrumentKey: instrumentKey,
			LastPrice:     q.LastPrice,
			Volume:        q.Volume,
			OHLC: types.OHLC{
				Open:  q.OHLC.Open,
				High:  q.OHLC.High,
				Low:   q.OHLC.Low,
				Close: q.OHLC.Close,
			},
			LastTradeTime: q.LastTradeTime,
		}, nil
	}
	return types.FullQuote{}, faults.New(faults.UpstreamError, "no market data available for %s", instrumentKey)
}

type marketStatusEnvelope struct {
	Status string `json:"status"`
	Data   []struct {
		Exchange string `json:"exchange"`
		Status   string `json:"status"`
	} `json:"data"`
}

func (c *Client) GetMarketStatus(ctx context.Context, token string) (types.MarketStatus, error) {
	var env marketStatusEnvelope
	if err := c.get(ctx, token, "/v2/market/status", &env); err != nil {
		return nil, err
	}
	status := make(types.MarketStatus, len(env.Data))
	for _, s := range env.Data {
		status[s.Exchange] = s.Status
	}
	return status, nil
}
