package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/interfaces"
	"upstox-mcp/internal/types"
)

// ErrNotFound is returned by Resolve when no instrument carries the symbol.
var ErrNotFound = errors.New("instrument not found")

// Match scores, best first. Exact symbol matches outrank prefix matches,
// which outrank arbitrary substring matches.
const (
	scoreExact     = 3
	scorePrefix    = 2
	scoreSubstring = 1
)

// Index is the in-memory lookup structure over the static instrument
// catalog. It is built wholesale at load and never mutated afterwards, so it
// is safe for concurrent reads without locking.
type Index struct {
	bySymbol map[string][]types.Instrument
	all      []types.Instrument
}

var _ interfaces.InstrumentIndex = (*Index)(nil)

type catalogEntry struct {
	Symbol        string `json:"symbol"`
	InstrumentKey string `json:"instrument_key"`
	Name          string `json:"name"`
}

// Load reads the categorized catalog file (category -> list of entries) and
// builds the index. preferredExchanges is the deterministic tie-break order
// applied when one symbol is listed on several exchanges.
func Load(path string, preferredExchanges []string) (*Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw map[string][]catalogEntry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	instruments := make([]types.Instrument, 0, 4096)
	for category, entries := range raw {
		for _, e := range entries {
			if e.Symbol == "" || e.InstrumentKey == "" {
				continue
			}
			instruments = append(instruments, types.Instrument{
				InstrumentKey: e.InstrumentKey,
				Symbol:        strings.ToUpper(strings.TrimSpace(e.Symbol)),
				CompanyName:   e.Name,
				Exchange:      exchangeFromKey(e.InstrumentKey),
				Category:      category,
			})
		}
	}

	return New(instruments, preferredExchanges), nil
}

// New builds an index from already-shaped instruments.
func New(instruments []types.Instrument, preferredExchanges []string) *Index {
	rank := make(map[string]int, len(preferredExchanges))
	for i, ex := range preferredExchanges {
		rank[strings.ToUpper(ex)] = i
	}
	exchangeRank := func(ex string) int {
		if r, ok := rank[ex]; ok {
			return r
		}
		return len(rank) // unlisted exchanges sort after all preferred ones
	}

	ix := &Index{
		bySymbol: make(map[string][]types.Instrument, len(instruments)),
		all:      make([]types.Instrument, len(instruments)),
	}
	copy(ix.all, instruments)

	// Stable corpus order keeps search output deterministic across loads.
	sort.Slice(ix.all, func(i, j int) bool {
		if ix.all[i].Symbol != ix.all[j].Symbol {
			return ix.all[i].Symbol < ix.all[j].Symbol
		}
		return ix.all[i].InstrumentKey < ix.all[j].InstrumentKey
	})

	for _, inst := range ix.all {
		key := normalizeSymbol(inst.Symbol)
		ix.bySymbol[key] = append(ix.bySymbol[key], inst)
	}

	// Preference-sort each collision list once at build time so Resolve is a
	// plain head pick.
	for _, list := range ix.bySymbol {
		sort.Slice(list, func(i, j int) bool {
			ri, rj := exchangeRank(list[i].Exchange), exchangeRank(list[j].Exchange)
			if ri != rj {
				return ri < rj
			}
			if list[i].Exchange != list[j].Exchange {
				return list[i].Exchange < list[j].Exchange
			}
			return list[i].InstrumentKey < list[j].InstrumentKey
		})
	}

	return ix
}

// Len reports the number of indexed instruments.
func (ix *Index) Len() int { return len(ix.all) }

// Resolve maps a symbol to its instrument. When the symbol is listed on more
// than one exchange the preferred-exchange ordering decides, so repeated
// calls always return the same instrument.
func (ix *Index) Resolve(symbol string) (types.Instrument, error) {
	norm := normalizeSymbol(symbol)
	if norm == "" {
		return types.Instrument{}, faults.New(faults.InvalidArgument, "symbol cannot be empty")
	}

	list := ix.bySymbol[norm]
	if len(list) == 0 {
		return types.Instrument{}, fmt.Errorf("symbol %q: %w", symbol, ErrNotFound)
	}
	return list[0], nil
}

// Search returns up to limit instruments whose symbol or company name
// contains term, ranked exact > prefix > substring with lexical symbol order
// breaking ties.
func (ix *Index) Search(term string, limit int) ([]types.SearchResult, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil, faults.New(faults.InvalidArgument, "search term cannot be empty")
	}
	if limit <= 0 {
		return nil, faults.New(faults.InvalidArgument, "limit must be positive, got %d", limit)
	}

	results := make([]types.SearchResult, 0, limit)
	for _, inst := range ix.all {
		score := matchScore(inst, needle)
		if score == 0 {
			continue
		}
		results = append(results, types.SearchResult{Instrument: inst, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Instrument.Symbol != results[j].Instrument.Symbol {
			return results[i].Instrument.Symbol < results[j].Instrument.Symbol
		}
		return results[i].Instrument.InstrumentKey < results[j].Instrument.InstrumentKey
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func matchScore(inst types.Instrument, needle string) int {
	symbol := strings.ToLower(inst.Symbol)
	name := strings.ToLower(inst.CompanyName)

	switch {
	case symbol == needle:
		return scoreExact
	case strings.HasPrefix(symbol, needle) || strings.HasPrefix(name, needle):
		return scorePrefix
	case strings.Contains(symbol, needle) || strings.Contains(name, needle):
		return scoreSubstring
	default:
		return 0
	}
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// exchangeFromKey derives the exchange from an instrument key such as
// "NSE_EQ|INE009A01021".
func exchangeFromKey(key string) string {
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i]
	}
	return ""
}
