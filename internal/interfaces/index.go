package interfaces

import "upstox-mcp/internal/types"

// InstrumentIndex answers exact and fuzzy lookups over the static catalog.
// Implementations are immutable after load and safe for concurrent reads.
type InstrumentIndex interface {
	Resolve(symbol string) (types.Instrument, error)
	Search(term string, limit int) ([]types.SearchResult, error)
}
