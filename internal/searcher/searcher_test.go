package searcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcavnar/homeai-june-2025-33-sub000/pkg/types"
)

const roofQuote = "The roof has several loose shingles and granule loss. Recommend repair within 6 months."

func TestSearch_EmptyInput(t *testing.T) {
	e := New()

	assert.Empty(t, e.Search("", "roof", 1))
	assert.Empty(t, e.Search("The roof is new.", "", 1))
	assert.Empty(t, e.Search("The roof is new.", "  \n\t", 1))
	assert.NotNil(t, e.Search("", "roof", 1))
}

func TestSearch_InvalidPageNumberPanics(t *testing.T) {
	e := New()
	assert.Panics(t, func() { e.Search("text", "text", 0) })
	assert.Panics(t, func() { e.Search("text", "text", -3) })
}

func TestSearch_ExactTier(t *testing.T) {
	e := New()
	page := "Summary\nThe ROOF has several loose shingles and granule loss. Recommend repair within 6 months. " +
		"Some loose shingles and granule loss also seen at the porch."

	results := e.Search(page, "the roof has several loose shingles and granule loss.", 2)

	require.Len(t, results, 1)
	m := results[0]
	assert.Equal(t, types.StrategyExact, m.Strategy)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, 2, m.PageNumber)
	assert.Equal(t, strings.Index(strings.ToLower(page), "the roof has"), m.TextIndex)
	assert.Equal(t, m.TextIndex, m.RawIndex)
	assert.Equal(t, "the roof has several loose shingles and granule loss.", m.Text)
	require.NoError(t, m.Validate())
}

func TestSearch_ShortQueryExactStillWorks(t *testing.T) {
	e := New()

	results := e.Search("Active roof LEAK above the bedroom closet.", "leak", 4)
	require.Len(t, results, 1)
	assert.Equal(t, types.StrategyExact, results[0].Strategy)
	assert.Equal(t, 12, results[0].TextIndex)
}

func TestSearch_NormalizedTier(t *testing.T) {
	e := New()
	page := "The roof has several loose shingles and granule loss.\nRecommend repair within 6 months."

	results := e.Search(page, roofQuote, 1)

	require.Len(t, results, 1)
	m := results[0]
	assert.Equal(t, types.StrategyNormalized, m.Strategy)
	assert.Equal(t, 0.95, m.Confidence)
	assert.Equal(t, 0, m.TextIndex)
	assert.Equal(t, strings.ToLower(roofQuote), m.Text)
}

func TestSearch_NormalizedIndexIsInNormalizedText(t *testing.T) {
	e := New()
	page := "ELECTRICAL\n\n\n   Panel   cover\r\nscrews   are missing at the main panel."

	results := e.Search(page, "screws are missing", 3)

	require.Len(t, results, 1)
	m := results[0]
	assert.Equal(t, types.StrategyNormalized, m.Strategy)
	assert.Equal(t, strings.Index("electrical panel cover screws are missing at the main panel.", "screws"), m.TextIndex)
	assert.True(t, strings.HasPrefix(page[m.RawIndex:], "screws"))
}

func TestSearch_ShortQueryNeverFlexible(t *testing.T) {
	e := New()
	page := "The roof has several loose shingles and granule loss near the ridge vent."

	// 30 characters exactly: not long enough for flexible matching.
	query := "loose shingles & granule lossx"
	require.Len(t, query, 30)

	assert.Empty(t, e.Search(page, query, 1))
	assert.Empty(t, e.Search(page, "leak", 1))
}

func TestSearch_FlexibleHyphenationBreak(t *testing.T) {
	e := New()
	page := "The roof has several loose shingles and gran-\nule loss. Recommend repair within 6 months."

	results := e.Search(page, roofQuote, 1)

	require.Len(t, results, 2)
	for _, m := range results {
		assert.Equal(t, types.StrategyFlexible, m.Strategy)
		assert.Greater(t, m.Confidence, DefaultMinFlexibleConfidence)
		require.NoError(t, m.Validate())
	}

	assert.Equal(t, 0, results[0].TextIndex)
	assert.Equal(t, "the roof has several loose shingles and", results[0].Text)
	assert.Greater(t, results[0].Confidence, results[1].Confidence)

	assert.Equal(t, 56, results[1].TextIndex)
	assert.Equal(t, "recommend repair within 6 months", results[1].Text)
	assert.True(t, strings.HasPrefix(page[results[1].RawIndex:], "Recommend"))
}

func TestSearch_ExactBeatsFlexible(t *testing.T) {
	e := New()
	query := "water heater shows heavy corrosion at supply fittings"
	page := "Water heater shows heavy corrosion. " + strings.Repeat("z", 80) + " " + query

	results := e.Search(page, query, 1)

	require.Len(t, results, 1)
	assert.Equal(t, types.StrategyExact, results[0].Strategy)
	assert.Equal(t, 1.0, results[0].Confidence)
}

func TestSearch_FlexibleDeduplicatesNearbyHits(t *testing.T) {
	e := New()
	phrase := "loose shingles at north slopes"
	require.Len(t, phrase, 30)

	page := phrase + " -------- " + phrase
	query := "Inspector found loose shingles at north slopes of the garage roof"

	results := e.Search(page, query, 1)

	require.Len(t, results, 1)
	assert.Equal(t, types.StrategyFlexible, results[0].Strategy)
	assert.Equal(t, 0, results[0].TextIndex)
}

func TestSearch_FlexibleTopThreeCap(t *testing.T) {
	e := New()
	query := "Water heater shows heavy corrosion at supply fittings and the relief valve discharge pipe terminates too high above the floor"
	filler := " " + strings.Repeat("z", 60) + " "
	page := "water heater shows heavy corrosion" + filler +
		"supply fittings and the relief valve" + filler +
		"discharge pipe terminates too high above" + filler +
		"water heater shows heavy corrosion"

	results := e.Search(page, query, 1)

	require.Len(t, results, 3)
	for i, m := range results {
		assert.Equal(t, types.StrategyFlexible, m.Strategy)
		assert.Greater(t, m.Confidence, DefaultMinFlexibleConfidence)
		for j := i + 1; j < len(results); j++ {
			assert.GreaterOrEqual(t, abs(m.TextIndex-results[j].TextIndex), DefaultDedupDistance)
		}
	}

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Confidence, results[i].Confidence)
	}
}

func TestSearch_FlexibleConfidenceThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinFlexibleConfidence = 5.0
	e := NewEngine(cfg)

	page := "The roof has several loose shingles and gran-\nule loss. Recommend repair within 6 months."
	assert.Empty(t, e.Search(page, roofQuote, 1))
}

func TestSearch_NoChunksMeansNoFlexible(t *testing.T) {
	e := New()
	// Long enough overall, but no sentence has five words.
	query := "Cracked tile. Loose grout here. Missing caulk there."
	page := "cracked tile loose grout here missing caulk there"

	assert.Empty(t, e.Search(page, query, 1))
}

func TestSearch_Cache(t *testing.T) {
	e := New()
	page := "The roof has several loose shingles and granule loss.\nRecommend repair within 6 months."

	first := e.Search(page, roofQuote, 1)
	require.Len(t, first, 1)
	assert.Equal(t, 1, e.CacheLen())

	first[0].Confidence = 42
	second := e.Search(page, roofQuote, 1)
	require.Len(t, second, 1)
	assert.Equal(t, 0.95, second[0].Confidence)

	// Same page and query on another page number is a different entry.
	third := e.Search(page, roofQuote, 2)
	assert.Equal(t, 2, third[0].PageNumber)
	assert.Equal(t, 2, e.CacheLen())

	e.Purge()
	assert.Equal(t, 0, e.CacheLen())
}

func TestSearch_CacheDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 0
	e := NewEngine(cfg)

	results := e.Search("roof", "roof", 1)
	require.Len(t, results, 1)
	assert.Equal(t, 0, e.CacheLen())
	e.Purge()
}

func TestFindAll(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, findAll("aaaa", "aa"))
	assert.Equal(t, []int{4}, findAll("the roof", "roof"))
	assert.Nil(t, findAll("the roof", "attic"))
}

func TestSortMatches(t *testing.T) {
	matches := []types.Match{
		{PageNumber: 2, TextIndex: 5, Confidence: 0.9},
		{PageNumber: 1, TextIndex: 9, Confidence: 0.9},
		{PageNumber: 1, TextIndex: 3, Confidence: 0.9},
		{PageNumber: 3, TextIndex: 0, Confidence: 1.0},
	}

	SortMatches(matches)

	assert.Equal(t, 3, matches[0].PageNumber)
	assert.Equal(t, 1, matches[1].PageNumber)
	assert.Equal(t, 3, matches[1].TextIndex)
	assert.Equal(t, 1, matches[2].PageNumber)
	assert.Equal(t, 9, matches[2].TextIndex)
	assert.Equal(t, 2, matches[3].PageNumber)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative dedup", func(c *Config) { c.DedupDistance = -1 }},
		{"zero max matches", func(c *Config) { c.MaxFlexibleMatches = 0 }},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }},
		{"inverted window", func(c *Config) { c.Chunker.MinWords = 8; c.Chunker.MaxWords = 4 }},
		{"normalized above exact", func(c *Config) { c.Scorer.NormalizedConfidence = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
