// Package scorer assigns confidence values to page matches so results from
// different strategies can be ranked against each other.
//
// Exact and normalized matches get fixed confidences. Flexible matches are
// scored from chunk length and word count, then adjusted by ScoreMatchQuality
// using their word overlap with the full query. Scores are not clamped: a
// strong flexible match can exceed 1.0.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/textnorm"
	"github.com/mcavnar/homeai-june-2025-33-sub000/pkg/types"
)

// Config holds every weight used by the scorer
type Config struct {
	ExactConfidence      float64 `toml:"exact_confidence"`
	NormalizedConfidence float64 `toml:"normalized_confidence"`

	FlexibleBase       float64 `toml:"flexible_base"`
	LengthBonusPerChar float64 `toml:"length_bonus_per_char"`
	MaxLengthBonus     float64 `toml:"max_length_bonus"`
	WordBonusPerWord   float64 `toml:"word_bonus_per_word"`
	MaxWordBonus       float64 `toml:"max_word_bonus"`

	LongMatchChars     int     `toml:"long_match_chars"`
	VeryLongMatchChars int     `toml:"very_long_match_chars"`
	LongMatchBonus     float64 `toml:"long_match_bonus"`
	OverlapWeight      float64 `toml:"overlap_weight"`
}

// DefaultConfig returns the weights the report viewer ranks with
func DefaultConfig() Config {
	return Config{
		ExactConfidence:      1.0,
		NormalizedConfidence: 0.95,

		FlexibleBase:       0.3,
		LengthBonusPerChar: 0.005,
		MaxLengthBonus:     0.3,
		WordBonusPerWord:   0.05,
		MaxWordBonus:       0.2,

		LongMatchChars:     100,
		VeryLongMatchChars: 200,
		LongMatchBonus:     0.1,
		OverlapWeight:      0.2,
	}
}

// Scorer computes match confidences
type Scorer struct {
	config Config
}

// New creates a Scorer with the default weights
func New() *Scorer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Scorer with explicit weights
func NewWithConfig(cfg Config) *Scorer {
	return &Scorer{config: cfg}
}

// Config returns the scorer's weights
func (s *Scorer) Config() Config {
	return s.config
}

// BaseConfidence returns the fixed confidence for exact and normalized matches
// and the flexible base for flexible matches.
func (s *Scorer) BaseConfidence(strategy types.Strategy) float64 {
	switch strategy {
	case types.StrategyExact:
		return s.config.ExactConfidence
	case types.StrategyNormalized:
		return s.config.NormalizedConfidence
	case types.StrategyFlexible:
		return s.config.FlexibleBase
	default:
		panic(fmt.Sprintf("scorer: %v: %q", types.ErrInvalidStrategy, strategy))
	}
}

// FlexibleConfidence scores a chunk occurrence: the flexible base plus a
// length bonus capped at MaxLengthBonus plus a word-count bonus capped at
// MaxWordBonus. chunkChars is the normalized chunk length in characters.
func (s *Scorer) FlexibleConfidence(chunkChars, wordCount int) float64 {
	lengthBonus := math.Min(float64(chunkChars)*s.config.LengthBonusPerChar, s.config.MaxLengthBonus)
	wordBonus := math.Min(float64(wordCount)*s.config.WordBonusPerWord, s.config.MaxWordBonus)
	return mustBeFinite(s.config.FlexibleBase + lengthBonus + wordBonus)
}

// ScoreMatchQuality returns the match's confidence adjusted for length and for
// how much of the full query's vocabulary the matched text covers.
func (s *Scorer) ScoreMatchQuality(match types.Match, query string) float64 {
	confidence := match.Confidence

	chars := textnorm.CharCount(match.Text)
	if chars > s.config.LongMatchChars {
		confidence += s.config.LongMatchBonus
	}
	if chars > s.config.VeryLongMatchChars {
		confidence += s.config.LongMatchBonus
	}

	confidence += s.config.OverlapWeight * WordOverlap(query, match.Text)

	return mustBeFinite(confidence)
}

// WordOverlap returns the fraction of the normalized query's words that appear
// among the matched text's words, where a word counts as present if either
// word contains the other. An empty query yields 0.
func WordOverlap(query, matched string) float64 {
	queryWords := strings.Fields(textnorm.NormalizeForSearch(query))
	if len(queryWords) == 0 {
		return 0
	}
	matchWords := strings.Fields(textnorm.NormalizeForSearch(matched))

	found := 0
	for _, qw := range queryWords {
		for _, mw := range matchWords {
			if strings.Contains(mw, qw) || strings.Contains(qw, mw) {
				found++
				break
			}
		}
	}

	return float64(found) / float64(len(queryWords))
}

func mustBeFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("scorer: %v: %v", types.ErrInvalidConfidence, v))
	}
	return v
}
