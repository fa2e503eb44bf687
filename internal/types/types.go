package types

import "time"

// Credential is the persisted access credential for the Upstox API.
// It is always replaced wholesale, never mutated in place.
type Credential struct {
	AccessToken string    `json:"access_token"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	SavedAt     time.Time `json:"saved_at"`
}

// Valid reports whether the credential can authorize a call at the given
// instant. Validity is decided purely from the recorded expiry; no network
// check is made.
func (c Credential) Valid(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.ExpiresAt)
}

// Instrument is one tradable instrument from the static catalog.
type Instrument struct {
	InstrumentKey string `json:"instrument_key"`
	Symbol        string `json:"symbol"`
	CompanyName   string `json:"name"`
	Exchange      string `json:"exchange"`
	Category      string `json:"category"`
}

// SearchResult pairs an instrument with its match score for one query.
type SearchResult struct {
	Instrument Instrument `json:"instrument"`
	Score      int        `json:"score"`
}

type Profile struct {
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
}

type Holding struct {
	CompanyName   string  `json:"company_name"`
	TradingSymbol string  `json:"trading_symbol"`
	Exchange      string  `json:"exchange"`
	Quantity      int     `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	LastPrice     float64 `json:"last_price"`
	PnL           float64 `json:"pnl"`
	DayChangePct  float64 `json:"day_change_percentage"`
}

// HoldingsReport is the shaped get_holdings response: the raw holdings plus
// portfolio-level aggregates.
type HoldingsReport struct {
	Holdings        []Holding `json:"holdings"`
	TotalInvestment float64   `json:"total_investment"`
	CurrentValue    float64   `json:"current_value"`
	TotalPnL        float64   `json:"total_pnl"`
	PnLPct          float64   `json:"pnl_percentage"`
}

type Position struct {
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
}

type PositionsReport struct {
	Positions       []Position `json:"positions"`
	TotalPnL        float64    `json:"total_pnl"`
	TotalUnrealised float64    `json:"total_unrealised"`
	TotalRealised   float64    `json:"total_realised"`
}

type OHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type LTPQuote struct {
	InstrumentKey string  `json:"instrument_key"`
	LastPrice     float64 `json:"last_price"`
}

type FullQuote struct {
	InstrumentKey string  `json:"instrument_key"`
	LastPrice     float64 `json:"last_price"`
	OHLC          OHLC    `json:"ohlc"`
	Volume        int64   `json:"volume"`
	LastTradeTime string  `json:"last_trade_time,omitempty"`
	DayChange     float64 `json:"day_change"`
	DayChangePct  float64 `json:"day_change_percentage"`
}

// MarketStatus maps exchange name to its current market status.
type MarketStatus map[string]string

// ConnectionStatus is the check_connection result. Detail carries the reason
// when not connected.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	UserName  string `json:"user_name,omitempty"`
	Broker    string `json:"broker,omitempty"`
	Detail    string `json:"detail,omitempty"`
}
