package types

import "strings"

// SearchChunk is a contiguous word window taken from a query string
type SearchChunk struct {
	Text          string   // Words joined by single spaces
	Words         []string // Tokens in query order
	OriginalIndex int      // Approximate position in the query, diagnostic only
}

// NewSearchChunk builds a chunk from an ordered word slice. The slice is copied.
func NewSearchChunk(words []string, originalIndex int) SearchChunk {
	w := make([]string, len(words))
	copy(w, words)
	return SearchChunk{
		Text:          strings.Join(w, " "),
		Words:         w,
		OriginalIndex: originalIndex,
	}
}

// WordCount returns the number of words in the chunk
func (c *SearchChunk) WordCount() int {
	return len(c.Words)
}

// Validate checks that the chunk is non-empty and its text agrees with its words
func (c *SearchChunk) Validate() error {
	if len(c.Words) == 0 || c.Text == "" {
		return ErrEmptyChunk
	}
	if c.Text != strings.Join(c.Words, " ") {
		return ErrChunkTextMismatch
	}
	return nil
}
