package types

import "math"

// Strategy identifies the matching tier that produced a match
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategyNormalized Strategy = "normalized"
	StrategyFlexible   Strategy = "flexible"
)

// Match is a located occurrence of a query (or one of its chunks) on a page
type Match struct {
	// Location
	PageNumber int // 1-based
	TextIndex  int // Byte offset into the text searched by Strategy
	RawIndex   int // Byte offset into the raw page text

	// Content
	Text string

	// Scoring
	Strategy   Strategy
	Confidence float64
}

// ValidateStrategy checks if the strategy is one of the known tiers
func (m *Match) ValidateStrategy() error {
	switch m.Strategy {
	case StrategyExact, StrategyNormalized, StrategyFlexible:
		return nil
	default:
		return ErrInvalidStrategy
	}
}

// Validate checks the match invariants
func (m *Match) Validate() error {
	if m.PageNumber < 1 {
		return ErrInvalidPageNumber
	}

	if m.TextIndex < 0 || m.RawIndex < 0 {
		return ErrInvalidTextIndex
	}

	if math.IsNaN(m.Confidence) || math.IsInf(m.Confidence, 0) {
		return ErrInvalidConfidence
	}

	return m.ValidateStrategy()
}

// Less reports whether m ranks ahead of other: higher confidence first, then
// lower page number, then lower text index.
func (m *Match) Less(other *Match) bool {
	if m.Confidence != other.Confidence {
		return m.Confidence > other.Confidence
	}
	if m.PageNumber != other.PageNumber {
		return m.PageNumber < other.PageNumber
	}
	return m.TextIndex < other.TextIndex
}
