package searcher

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/chunker"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/scorer"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/textnorm"
	"github.com/mcavnar/homeai-june-2025-33-sub000/pkg/types"
)

const (
	// DefaultMinFlexibleQueryChars is the query length a query must exceed
	// before flexible matching is attempted
	DefaultMinFlexibleQueryChars = 30

	// DefaultMinChunkChars is the minimum normalized chunk length searched for
	DefaultMinChunkChars = 25

	// DefaultDedupDistance is the proximity within which weaker flexible hits
	// are dropped in favor of a stronger one
	DefaultDedupDistance = 50

	// DefaultMaxFlexibleMatches caps flexible matches kept per page
	DefaultMaxFlexibleMatches = 3

	// DefaultMinFlexibleConfidence is the exclusive floor for returned flexible matches
	DefaultMinFlexibleConfidence = 0.6

	// DefaultCacheSize is the number of (page, query) results memoized
	DefaultCacheSize = 1000
)

// Config holds the page engine thresholds
type Config struct {
	MinFlexibleQueryChars int     `toml:"min_flexible_query_chars"`
	MinChunkChars         int     `toml:"min_chunk_chars"`
	DedupDistance         int     `toml:"dedup_distance"`
	MaxFlexibleMatches    int     `toml:"max_flexible_matches"`
	MinFlexibleConfidence float64 `toml:"min_flexible_confidence"`
	CacheSize             int     `toml:"cache_size"` // 0 disables the result cache

	Chunker chunker.Config `toml:"chunker"`
	Scorer  scorer.Config  `toml:"scorer"`
}

// DefaultConfig returns the thresholds used by the report viewer
func DefaultConfig() Config {
	return Config{
		MinFlexibleQueryChars: DefaultMinFlexibleQueryChars,
		MinChunkChars:         DefaultMinChunkChars,
		DedupDistance:         DefaultDedupDistance,
		MaxFlexibleMatches:    DefaultMaxFlexibleMatches,
		MinFlexibleConfidence: DefaultMinFlexibleConfidence,
		CacheSize:             DefaultCacheSize,
		Chunker:               chunker.DefaultConfig(),
		Scorer:                scorer.DefaultConfig(),
	}
}

// Validate rejects thresholds that would make matching meaningless
func (c Config) Validate() error {
	if c.MinFlexibleQueryChars < 0 || c.MinChunkChars < 0 {
		return errors.New("length thresholds must be >= 0")
	}
	if c.DedupDistance < 0 {
		return errors.New("dedup distance must be >= 0")
	}
	if c.MaxFlexibleMatches < 1 {
		return errors.New("max flexible matches must be >= 1")
	}
	if c.CacheSize < 0 {
		return errors.New("cache size must be >= 0")
	}
	if c.Chunker.MinWords < 1 || c.Chunker.MaxWords < c.Chunker.MinWords {
		return fmt.Errorf("invalid chunk window %d..%d", c.Chunker.MinWords, c.Chunker.MaxWords)
	}
	if c.Scorer.NormalizedConfidence > c.Scorer.ExactConfidence {
		return errors.New("normalized confidence cannot exceed exact confidence")
	}
	return nil
}

// Engine searches a single page's text for a query using three tiers:
// exact, normalized, then flexible. An earlier tier that finds a hit stops
// the later ones.
type Engine struct {
	config  Config
	chunker *chunker.Chunker
	scorer  *scorer.Scorer
	cache   *lru.Cache[[32]byte, []types.Match]
}

// New creates an Engine with the default configuration
func New() *Engine {
	return NewEngine(DefaultConfig())
}

// NewEngine creates an Engine with explicit thresholds
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		config:  cfg,
		chunker: chunker.NewWithConfig(cfg.Chunker),
		scorer:  scorer.NewWithConfig(cfg.Scorer),
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[[32]byte, []types.Match](cfg.CacheSize)
		if err != nil {
			// This should never happen with a positive size
			panic(fmt.Sprintf("failed to create LRU cache: %v", err))
		}
		e.cache = cache
	}

	return e
}

// Config returns the engine's thresholds
func (e *Engine) Config() Config {
	return e.config
}

// Search returns the matches of query on one page, strongest first. Empty
// page text or a blank query yields an empty slice. pageNumber must be >= 1.
func (e *Engine) Search(pageText, query string, pageNumber int) []types.Match {
	if pageNumber < 1 {
		panic(fmt.Sprintf("searcher: %v: got %d", types.ErrInvalidPageNumber, pageNumber))
	}

	if pageText == "" || strings.TrimSpace(query) == "" {
		return []types.Match{}
	}

	var key [32]byte
	if e.cache != nil {
		key = cacheKey(pageText, query, pageNumber)
		if cached, ok := e.cache.Get(key); ok {
			return copyMatches(cached)
		}
	}

	matches := e.search(pageText, query, pageNumber)

	if e.cache != nil {
		e.cache.Add(key, copyMatches(matches))
	}

	return matches
}

func (e *Engine) search(pageText, query string, pageNumber int) []types.Match {
	if m, ok := e.exactMatch(pageText, query, pageNumber); ok {
		return []types.Match{m}
	}

	normPage := textnorm.NormalizeForSearch(pageText)

	if m, ok := e.normalizedMatch(pageText, normPage, query, pageNumber); ok {
		return []types.Match{m}
	}

	return e.flexibleMatches(pageText, normPage, query, pageNumber)
}

// exactMatch looks for the lower-cased query in the lower-cased raw page text
func (e *Engine) exactMatch(pageText, query string, pageNumber int) (types.Match, bool) {
	idx := strings.Index(strings.ToLower(pageText), strings.ToLower(query))
	if idx < 0 {
		return types.Match{}, false
	}

	return types.Match{
		PageNumber: pageNumber,
		TextIndex:  idx,
		RawIndex:   textnorm.MapLowerOffset(pageText, idx),
		Text:       query,
		Strategy:   types.StrategyExact,
		Confidence: e.scorer.BaseConfidence(types.StrategyExact),
	}, true
}

// normalizedMatch looks for the normalized query in the normalized page text
func (e *Engine) normalizedMatch(pageText, normPage, query string, pageNumber int) (types.Match, bool) {
	normQuery := textnorm.NormalizeForSearch(query)
	if normQuery == "" {
		return types.Match{}, false
	}

	idx := strings.Index(normPage, normQuery)
	if idx < 0 {
		return types.Match{}, false
	}

	return types.Match{
		PageNumber: pageNumber,
		TextIndex:  idx,
		RawIndex:   textnorm.MapNormalizedOffset(pageText, idx),
		Text:       normQuery,
		Strategy:   types.StrategyNormalized,
		Confidence: e.scorer.BaseConfidence(types.StrategyNormalized),
	}, true
}

// flexibleMatches locates chunks of a long query in the normalized page text,
// keeps the strongest few that are not near each other, and rescores them
// against the full query.
func (e *Engine) flexibleMatches(pageText, normPage, query string, pageNumber int) []types.Match {
	if textnorm.CharCount(query) <= e.config.MinFlexibleQueryChars {
		return []types.Match{}
	}

	chunks := e.chunker.GenerateChunks(query)
	if len(chunks) == 0 {
		return []types.Match{}
	}

	candidates := make([]types.Match, 0)
	for i := range chunks {
		chunk := &chunks[i]
		normChunk := textnorm.NormalizeForSearch(chunk.Text)
		chars := textnorm.CharCount(normChunk)
		if chars < e.config.MinChunkChars || normChunk == "" {
			continue
		}

		confidence := e.scorer.FlexibleConfidence(chars, chunk.WordCount())
		for _, idx := range findAll(normPage, normChunk) {
			candidates = append(candidates, types.Match{
				PageNumber: pageNumber,
				TextIndex:  idx,
				RawIndex:   textnorm.MapNormalizedOffset(pageText, idx),
				Text:       normChunk,
				Strategy:   types.StrategyFlexible,
				Confidence: confidence,
			})
		}
	}

	sortMatches(candidates)
	kept := e.dedupe(candidates)

	for i := range kept {
		kept[i].Confidence = e.scorer.ScoreMatchQuality(kept[i], query)
	}
	sortMatches(kept)

	results := make([]types.Match, 0, len(kept))
	for _, m := range kept {
		if m.Confidence > e.config.MinFlexibleConfidence {
			results = append(results, m)
		}
	}

	return results
}

// dedupe walks matches in rank order and drops any match within DedupDistance
// of one already kept, stopping at MaxFlexibleMatches.
func (e *Engine) dedupe(sorted []types.Match) []types.Match {
	kept := make([]types.Match, 0, e.config.MaxFlexibleMatches)

	for _, m := range sorted {
		if len(kept) >= e.config.MaxFlexibleMatches {
			break
		}

		near := false
		for _, k := range kept {
			if abs(m.TextIndex-k.TextIndex) < e.config.DedupDistance {
				near = true
				break
			}
		}
		if !near {
			kept = append(kept, m)
		}
	}

	return kept
}

// Purge drops every memoized result
func (e *Engine) Purge() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// CacheLen returns the number of memoized results
func (e *Engine) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

// findAll returns the start of every occurrence of needle in haystack. The
// scan resumes one byte after each hit, so overlapping occurrences are found.
func findAll(haystack, needle string) []int {
	var hits []int
	from := 0
	for from <= len(haystack) {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			break
		}
		hits = append(hits, from+i)
		from += i + 1
	}
	return hits
}

// SortMatches orders matches by descending confidence, then ascending page
// number, then ascending text index.
func SortMatches(matches []types.Match) {
	sortMatches(matches)
}

func sortMatches(matches []types.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Less(&matches[j])
	})
}

// copyMatches returns a copy so cached slices are never shared with callers
func copyMatches(src []types.Match) []types.Match {
	dst := make([]types.Match, len(src))
	copy(dst, src)
	return dst
}

// cacheKey computes a unique hash for a (page, query) pair
func cacheKey(pageText, query string, pageNumber int) [32]byte {
	var data strings.Builder
	data.WriteString(strconv.Itoa(pageNumber))
	data.WriteString("|")
	data.WriteString(strconv.Itoa(len(query)))
	data.WriteString("|")
	data.WriteString(query)
	data.WriteString("|")
	data.WriteString(pageText)
	return sha256.Sum256([]byte(data.String()))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
