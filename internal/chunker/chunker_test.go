package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/textnorm"
)

func TestNew(t *testing.T) {
	c := New()
	require.NotNil(t, c)
	assert.Equal(t, DefaultConfig(), c.Config())
}

func TestNewWithConfig_ZeroFieldsFallBack(t *testing.T) {
	c := NewWithConfig(Config{})
	assert.Equal(t, DefaultMinWords, c.Config().MinWords)
	assert.Equal(t, DefaultMaxWords, c.Config().MaxWords)
	assert.Equal(t, 0, c.Config().MinChars)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"no punctuation", "water heater is past its service life", []string{"water heater is past its service life"}},
		{"two sentences", "Roof is worn. Replace soon.", []string{"Roof is worn", "Replace soon"}},
		{"punctuation runs", "Danger!!! Exposed wiring?! Call an electrician...", []string{"Danger", "Exposed wiring", "Call an electrician"}},
		{"only punctuation", "...!?", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func TestGenerateChunks_ShortQuery(t *testing.T) {
	c := New()

	assert.Empty(t, c.GenerateChunks(""))
	assert.Empty(t, c.GenerateChunks("leak"))
	assert.Empty(t, c.GenerateChunks("Loose shingles noted. Gutters clogged."), "every sentence has fewer than 5 words")
}

func TestGenerateChunks_WindowCounts(t *testing.T) {
	c := NewWithConfig(Config{MinWords: 5, MaxWords: 10, MinChars: 0})

	// 7 words: windows of 5, 6, 7 -> 3 + 2 + 1
	chunks := c.GenerateChunks("one two three four five six seven")
	assert.Len(t, chunks, 6)

	// 12 words: windows of 5..10 -> 8+7+6+5+4+3
	chunks = c.GenerateChunks("a b c d e f g h i j k l")
	assert.Len(t, chunks, 33)
	for _, ch := range chunks {
		assert.GreaterOrEqual(t, ch.WordCount(), 5)
		assert.LessOrEqual(t, ch.WordCount(), 10)
	}
}

func TestGenerateChunks_MinCharsFilter(t *testing.T) {
	c := New()

	// Five short words join to 13 characters; nothing survives the 25-char floor.
	assert.Empty(t, c.GenerateChunks("a bb cc dd ee ff gg"))

	chunks := c.GenerateChunks("The roof has several loose shingles and granule loss")
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.GreaterOrEqual(t, textnorm.CharCount(ch.Text), DefaultMinChars, ch.Text)
	}
}

func TestGenerateChunks_NeverCrossSentences(t *testing.T) {
	c := New()
	query := "The roof has several loose shingles and granule loss. Recommend repair by a licensed roofing contractor."

	chunks := c.GenerateChunks(query)
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		require.NoError(t, ch.Validate())
		assert.False(t, strings.Contains(ch.Text, "loss Recommend"), "chunk %q spans two sentences", ch.Text)
		assert.NotContains(t, ch.Text, ".")
	}
}

func TestGenerateChunks_Order(t *testing.T) {
	c := New()
	chunks := c.GenerateChunks("The roof has several loose shingles and granule loss")
	require.NotEmpty(t, chunks)

	assert.Equal(t, "The roof has several loose", chunks[0].Text)
	assert.Equal(t, []string{"The", "roof", "has", "several", "loose"}, chunks[0].Words)
	assert.Equal(t, 0, chunks[0].OriginalIndex)

	last := chunks[len(chunks)-1]
	assert.Equal(t, 9, last.WordCount())
	assert.Equal(t, "The roof has several loose shingles and granule loss", last.Text)
}

func TestGenerateChunks_OriginalIndexAdvancesAcrossSentences(t *testing.T) {
	c := New()
	first := "Water heater shows corrosion at the supply fittings"
	query := first + ". Temperature relief valve discharge pipe is missing entirely."

	chunks := c.GenerateChunks(query)
	require.NotEmpty(t, chunks)

	var sawSecond bool
	for _, ch := range chunks {
		if ch.Words[0] == "Temperature" {
			sawSecond = true
			assert.GreaterOrEqual(t, ch.OriginalIndex, textnorm.CharCount(first))
		}
	}
	assert.True(t, sawSecond)
}
