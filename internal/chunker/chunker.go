package chunker

import (
	"regexp"
	"strings"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/textnorm"
	"github.com/mcavnar/homeai-june-2025-33-sub000/pkg/types"
)

const (
	// DefaultMinWords is the shortest word window emitted
	DefaultMinWords = 5

	// DefaultMaxWords is the longest word window emitted
	DefaultMaxWords = 10

	// DefaultMinChars is the minimum joined length (in characters) of a kept chunk
	DefaultMinChars = 25
)

// sentenceBoundary splits a query into sentences on runs of terminal punctuation
var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Config controls the word-window sizes and the length floor
type Config struct {
	MinWords int `toml:"min_words"`
	MaxWords int `toml:"max_words"`
	MinChars int `toml:"min_chars"`
}

// DefaultConfig returns the window bounds used by the report viewer
func DefaultConfig() Config {
	return Config{
		MinWords: DefaultMinWords,
		MaxWords: DefaultMaxWords,
		MinChars: DefaultMinChars,
	}
}

// Chunker decomposes long query strings into overlapping word windows
type Chunker struct {
	config Config
}

// New creates a Chunker with the default configuration
func New() *Chunker {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Chunker with explicit window bounds. Zero fields fall
// back to the defaults.
func NewWithConfig(cfg Config) *Chunker {
	if cfg.MinWords <= 0 {
		cfg.MinWords = DefaultMinWords
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = DefaultMaxWords
	}
	if cfg.MinChars < 0 {
		cfg.MinChars = DefaultMinChars
	}
	return &Chunker{config: cfg}
}

// Config returns the chunker's effective configuration
func (c *Chunker) Config() Config {
	return c.config
}

// GenerateChunks splits query into sentences and emits every contiguous word
// window of MinWords..min(len(sentence), MaxWords) words whose joined text is at
// least MinChars characters. Windows never cross a sentence boundary.
// Chunks are ordered by sentence, then window length, then start offset.
func (c *Chunker) GenerateChunks(query string) []types.SearchChunk {
	chunks := make([]types.SearchChunk, 0)

	consumed := 0
	for _, sentence := range SplitSentences(query) {
		words := strings.Fields(sentence)
		maxLen := c.config.MaxWords
		if len(words) < maxLen {
			maxLen = len(words)
		}

		for size := c.config.MinWords; size <= maxLen; size++ {
			for start := 0; start+size <= len(words); start++ {
				chunk := types.NewSearchChunk(words[start:start+size], consumed+start)
				if textnorm.CharCount(chunk.Text) < c.config.MinChars {
					continue
				}
				chunks = append(chunks, chunk)
			}
		}

		consumed += textnorm.CharCount(sentence)
	}

	return chunks
}

// SplitSentences splits text on runs of '.', '!' or '?' and returns the trimmed,
// non-empty segments. Text with no terminal punctuation is a single sentence.
func SplitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sentences = append(sentences, p)
	}
	return sentences
}
