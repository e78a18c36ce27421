package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/searcher"
	"github.com/mcavnar/homeai-june-2025-33-sub000/pkg/types"
)

// DefaultFetchConcurrency bounds concurrent page text reads
const DefaultFetchConcurrency = 8

// PageSource supplies the extracted text of a loaded document, one page at a
// time. Page numbers are 1-based.
type PageSource interface {
	PageCount(ctx context.Context) (int, error)
	PageText(ctx context.Context, pageNumber int) (string, error)
}

// StaticPages is an in-memory PageSource. Element i holds the text of page i+1.
type StaticPages []string

// PageCount returns the number of pages
func (p StaticPages) PageCount(_ context.Context) (int, error) {
	return len(p), nil
}

// PageText returns the text of a 1-based page
func (p StaticPages) PageText(_ context.Context, pageNumber int) (string, error) {
	if pageNumber < 1 || pageNumber > len(p) {
		return "", fmt.Errorf("page %d out of range 1..%d", pageNumber, len(p))
	}
	return p[pageNumber-1], nil
}

// Status is the coarse state of a session
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSearching Status = "searching"
	StatusResults   Status = "results"
)

// State is a snapshot of a session, safe to hand to a viewer
type State struct {
	ID           string        `json:"id"`
	Query        string        `json:"query"`
	Status       Status        `json:"status"`
	Matches      []types.Match `json:"matches"`
	CurrentIndex int           `json:"current_index"`
}

// Current returns the match at CurrentIndex
func (s State) Current() (types.Match, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Matches) {
		return types.Match{}, false
	}
	return s.Matches[s.CurrentIndex], true
}

// Config controls how a session reads pages
type Config struct {
	FetchConcurrency int `toml:"fetch_concurrency"`
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{FetchConcurrency: DefaultFetchConcurrency}
}

// Session runs a query across every page of one document and tracks the
// ordered matches and the current navigation position.
//
// A new Search supersedes any search still in flight: the older call is
// cancelled and its results are discarded.
type Session struct {
	id     string
	source PageSource
	engine *searcher.Engine
	config Config

	mu         sync.Mutex
	query      string
	matches    []types.Match
	index      int
	searching  bool
	generation uint64
	cancel     context.CancelFunc
}

// New creates a session over source with the default configuration
func New(source PageSource, engine *searcher.Engine) *Session {
	return NewWithConfig(source, engine, DefaultConfig())
}

// NewWithConfig creates a session with explicit configuration
func NewWithConfig(source PageSource, engine *searcher.Engine, cfg Config) *Session {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	if engine == nil {
		engine = searcher.New()
	}

	return &Session{
		id:     uuid.NewString(),
		source: source,
		engine: engine,
		config: cfg,
		index:  -1,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Search runs query against every page and replaces the session's matches.
// It returns the number of matches found.
//
// An empty or whitespace-only query clears the session. If another Search or
// Clear starts before this one finishes, this call returns context.Canceled
// and leaves the session untouched. A page that cannot be read contributes no
// matches.
func (s *Session) Search(ctx context.Context, query string) (int, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	gen := s.generation

	if strings.TrimSpace(query) == "" {
		s.resetLocked()
		s.mu.Unlock()
		return 0, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.query = query
	s.matches = nil
	s.index = -1
	s.searching = true
	s.mu.Unlock()

	defer cancel()

	texts, err := s.fetchPages(ctx)

	var matches []types.Match
	if err == nil {
		matches = make([]types.Match, 0)
		for i, text := range texts {
			matches = append(matches, s.engine.Search(text, query, i+1)...)
		}
		searcher.SortMatches(matches)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return 0, context.Canceled
	}

	s.cancel = nil
	s.searching = false
	s.matches = matches
	s.index = -1
	if len(matches) > 0 {
		s.index = 0
	}

	if err != nil {
		return 0, fmt.Errorf("failed to load pages: %w", err)
	}

	return len(matches), nil
}

// fetchPages reads every page's text concurrently. A failing page yields empty
// text; only cancellation or a failure to count pages aborts the fetch.
func (s *Session) fetchPages(ctx context.Context) ([]string, error) {
	count, err := s.source.PageCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	texts := make([]string, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.FetchConcurrency)

	for page := 1; page <= count; page++ {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			text, err := s.source.PageText(gctx, page)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("Warning: skipping page %d: %v", page, err)
				return nil
			}
			texts[page-1] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return texts, nil
}

// NextMatch advances to the next match, wrapping to the first after the last.
// It reports false when there are no matches.
func (s *Session) NextMatch() (types.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.matches) == 0 {
		return types.Match{}, false
	}
	s.index = (s.index + 1) % len(s.matches)
	return s.matches[s.index], true
}

// PrevMatch moves to the previous match, wrapping to the last before the first.
// It reports false when there are no matches.
func (s *Session) PrevMatch() (types.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.matches) == 0 {
		return types.Match{}, false
	}
	s.index = (s.index - 1 + len(s.matches)) % len(s.matches)
	return s.matches[s.index], true
}

// CurrentMatch returns the match at the current index
func (s *Session) CurrentMatch() (types.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index < 0 || s.index >= len(s.matches) {
		return types.Match{}, false
	}
	return s.matches[s.index], true
}

// Clear drops the query and matches, and abandons any search in flight
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.query = ""
	s.matches = nil
	s.index = -1
	s.searching = false
}

// State returns a snapshot of the session
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := StatusIdle
	switch {
	case s.searching:
		status = StatusSearching
	case s.query != "":
		status = StatusResults
	}

	matches := make([]types.Match, len(s.matches))
	copy(matches, s.matches)

	return State{
		ID:           s.id,
		Query:        s.query,
		Status:       status,
		Matches:      matches,
		CurrentIndex: s.index,
	}
}
