package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"upstox-mcp/internal/catalog"
	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/logger"
)

// Server exposes each tool operation as a JSON POST endpoint. It is thin
// glue: decode parameters, call the façade, encode the result or the typed
// fault verbatim.
type Server struct {
	tools  interfaces.Tools
	router *chi.Mux
}

func New(tools interfaces.Tools) *Server {
	s := &Server{tools: tools}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/tools", func(r chi.Router) {
		r.Post("/get_user_profile", s.handleGetUserProfile)
		r.Post("/get_holdings", s.handleGetHoldings)
		r.Post("/get_positions", s.handleGetPositions)
		r.Post("/get_stock_price", s.handleGetStockPrice)
		r.Post("/get_full_market_quote", s.handleGetFullMarketQuote)
		r.Post("/get_instrument_key", s.handleGetInstrumentKey)
		r.Post("/search_stocks", s.handleSearchStocks)
		r.Post("/get_market_status", s.handleGetMarketStatus)
		r.Post("/check_connection", s.handleCheckConnection)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

type instrumentKeyParams struct {
	InstrumentKey string `json:"instrument_key"`
}

type symbolParams struct {
	Symbol string `json:"symbol"`
}

type searchParams struct {
	SearchTerm string `json:"search_term"`
	Limit      int    `json:"limit"`
}

func (s *Server) handleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	result, err := s.tools.GetUserProfile(r.Context())
	respond(w, r, result, err)
}

func (s *Server) handleGetHoldings(w http.ResponseWriter, r *http.Request) {
	result, err := s.tools.GetHoldings(r.Context())
	respond(w, r, result, err)
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	result, err := s.tools.GetPositions(r.Context())
	respond(w, r, result, err)
}

func (s *Server) handleGetStockPrice(w http.ResponseWriter, r *http.Request) {
	var params instrumentKeyParams
	if !decodeParams(w, r, &params) {
		return
	}
	result, err := s.tools.GetStockPrice(r.Context(), params.InstrumentKey)
	respond(w, r, result, err)
}

func (s *Server) handleGetFullMarketQuote(w http.ResponseWriter, r *http.Request) {
	var params instrumentKeyParams
	if !decodeParams(w, r, &params) {
		return
	}
	result, err := s.tools.GetFullMarketQuote(r.Context(), params.InstrumentKey)
	respond(w, r, result, err)
}

func (s *Server) handleGetInstrumentKey(w http.ResponseWriter, r *http.Request) {
	var params symbolParams
	if !decodeParams(w, r, &params) {
		return
	}
	result, err := s.tools.GetInstrumentKey(r.Context(), params.Symbol)
	respond(w, r, result, err)
}

func (s *Server) handleSearchStocks(w http.ResponseWriter, r *http.Request) {
	var params searchParams
	if !decodeParams(w, r, &params) {
		return
	}
	if params.Limit == 0 {
		params.Limit = 10 // wire default; the façade still rejects limit < 0
	}
	result, err := s.tools.SearchStocks(r.Context(), params.SearchTerm, params.Limit)
	respond(w, r, result, err)
}

func (s *Server) handleGetMarketStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.tools.GetMarketStatus(r.Context())
	respond(w, r, result, err)
}

func (s *Server) handleCheckConnection(w http.ResponseWriter, r *http.Request) {
	result, err := s.tools.CheckConnection(r.Context())
	respond(w, r, result, err)
}

// decodeParams decodes the JSON request body. An empty body is fine; the
// façade validates the zero values.
func decodeParams(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, faults.Wrap(faults.InvalidArgument, err, "malformed request body"))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": result})
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch faults.KindOf(err) {
	case faults.InvalidArgument:
		status = http.StatusBadRequest
	case faults.AuthRequired:
		status = http.StatusUnauthorized
	case faults.UpstreamError:
		status = http.StatusBadGateway
	default:
		if errors.Is(err, catalog.ErrNotFound) {
			status = http.StatusNotFound
		}
	}

	if status >= 500 {
		logger.ErrorWithErr(r.Context(), "Tool request failed", err, "path", r.URL.Path)
	}

	writeJSON(w, status, map[string]any{"error": errorBody{
		Kind:    faults.KindOf(err).String(),
		Message: err.Error(),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
