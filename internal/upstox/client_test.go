package upstox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"upstox-mcp/internal/faults"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Params{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		RateLimitRPS: 100,
	})
}

// authChecking wraps a handler with assertions on the auth headers every
// endpoint must carry.
func authChecking(t *testing.T, token string, next http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+token {
			t.Errorf("Authorization = %q, want Bearer %s", got, token)
		}
		if got := r.Header.Get("Api-Version"); got != "2.0" {
			t.Errorf("Api-Version = %q, want 2.0", got)
		}
		next(w, r)
	}
}

func TestGetProfile(t *testing.T) {
	ts := httptest.NewServer(authChecking(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/user/profile" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":{
			"user_name":"Test User","email":"test@example.com","user_id":"AB1234",
			"broker":"UPSTOX","exchanges":["NSE","BSE"],"is_active":true}}`))
	}))
	defer ts.Close()

	profile, err := newTestClient(ts.URL).GetProfile(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.UserName != "Test User" {
		t.Errorf("user name = %q", profile.UserName)
	}
	if profile.Broker != "UPSTOX" {
		t.Errorf("broker = %q", profile.Broker)
	}
	if len(profile.Exchanges) != 2 {
		t.Errorf("exchanges = %v", profile.Exchanges)
	}
	if !profile.IsActive {
		t.Error("expected active profile")
	}
}

func TestGetHoldings(t *testing.T) {
	ts := httptest.NewServer(authChecking(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/portfolio/long-term-holdings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":[
			{"company_name":"Infosys Ltd","trading_symbol":"INFY","exchange":"NSE",
			 "quantity":10,"average_price":1400.5,"last_price":1450.25,"pnl":497.5,
			 "day_change_percentage":1.2}]}`))
	}))
	defer ts.Close()

	holdings, err := newTestClient(ts.URL).GetHoldings(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetHoldings failed: %v", err)
	}
	if len(holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(holdings))
	}
	h := holdings[0]
	if h.TradingSymbol != "INFY" || h.Quantity != 10 {
		t.Errorf("holding = %+v", h)
	}
	if h.AveragePrice != 1400.5 || h.LastPrice != 1450.25 {
		t.Errorf("prices = %v / %v", h.AveragePrice, h.LastPrice)
	}
}

func TestGetPositions(t *testing.T) {
	ts := httptest.NewServer(authChecking(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/portfolio/short-term-positions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":[
			{"trading_symbol":"TCS","exchange":"NSE","product":"I","quantity":5,
			 "buy_price":3900,"last_price":3950,"pnl":250,"unrealised":250,"realised":0}]}`))
	}))
	defer ts.Close()

	positions, err := newTestClient(ts.URL).GetPositions(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetPositions failed: %v", err)
	}
	if len(positions) != 1 || positions[0].TradingSymbol != "TCS" || positions[0].PnL != 250 {
		t.Errorf("positions = %+v", positions)
	}
}

func TestGetLTP(t *testing.T) {
	ts := httptest.NewServer(authChecking(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("instrument_key"); got != "NSE_EQ|INE009A01021" {
			t.Errorf("instrument_key = %q", got)
		}
		// The response is keyed by exchange symbol, not the requested key.
		w.Write([]byte(`{"status":"success","data":{"NSE_EQ:INFY":{"last_price":1450.25}}}`))
	}))
	defer ts.Close()

	quote, err := newTestClient(ts.URL).GetLTP(context.Background(), "tok", "NSE_EQ|INE009A01021")
	if err != nil {
		t.Fatalf("GetLTP failed: %v", err)
	}
	if quote.LastPrice != 1450.25 {
		t.Errorf("last price = %v", quote.LastPrice)
	}
	if quote.InstrumentKey != "NSE_EQ|INE009A01021" {
		t.Errorf("instrument key = %q, want the requested key echoed back", quote.InstrumentKey)
	}
}

func TestGetLTPEmptyData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).GetLTP(context.Background(), "tok", "NSE_EQ|X")
	if !faults.Is(err, faults.UpstreamError) {
		t.Errorf("expected UpstreamError for an empty quote map, got %v", err)
	}
}

func TestGetFullQuote(t *testing.T) {
	ts := httptest.NewServer(authChecking(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/market-quote/quotes" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":{"NSE_EQ:INFY":{
			"last_price":1450.25,"volume":1200000,
			"ohlc":{"open":1440,"high":1460,"low":1435,"close":1450.25},
			"last_trade_time":"2025-06-10T15:29:59+05:30"}}}`))
	}))
	defer ts.Close()

	quote, err := newTestClient(ts.URL).GetFullQuote(context.Background(), "tok", "NSE_EQ|INE009A01021")
	if err != nil {
		t.Fatalf("GetFullQuote failed: %v", err)
	}
	if quote.LastPrice != 1450.25 || quote.Volume != 1200000 {
		t.Errorf("quote = %+v", quote)
	}
	if quote.OHLC.Open != 1440 || quote.OHLC.High != 1460 {
		t.Errorf("ohlc = %+v", quote.OHLC)
	}
}

func TestGetMarketStatus(t *testing.T) {
	ts := httptest.NewServer(authChecking(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/market/status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":[
			{"exchange":"NSE","status":"NORMAL_OPEN"},
			{"exchange":"BSE","status":"CLOSED"}]}`))
	}))
	defer ts.Close()

	status, err := newTestClient(ts.URL).GetMarketStatus(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetMarketStatus failed: %v", err)
	}
	if status["NSE"] != "NORMAL_OPEN" || status["BSE"] != "CLOSED" {
		t.Errorf("status = %v", status)
	}
}

func TestHTTPErrorIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).GetProfile(context.Background(), "bad-token")
	if !faults.Is(err, faults.UpstreamError) {
		t.Errorf("expected UpstreamError, got %v", err)
	}
}

func TestMalformedResponseIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).GetProfile(context.Background(), "tok")
	if !faults.Is(err, faults.UpstreamError) {
		t.Errorf("expected UpstreamError for a non-JSON body, got %v", err)
	}
}
