// Package chunker turns long free-text queries into overlapping word windows.
//
// Inspection findings are usually quoted as whole sentences. PDF text
// extraction breaks those sentences with hyphenation, reordered inline
// elements and stray whitespace, so a long quote rarely survives as one exact
// substring. The chunker produces shorter windows that are still distinctive
// enough to locate the quote:
//
//	c := chunker.New()
//	chunks := c.GenerateChunks("The roof has several loose shingles and granule loss.")
//	for _, ch := range chunks {
//	    fmt.Println(ch.Text)
//	}
//
// # Algorithm
//
//  1. Split the query on runs of '.', '!' or '?'; drop empty segments.
//  2. Split each sentence on whitespace.
//  3. For window lengths MinWords..min(words, MaxWords), take every
//     contiguous slice of that length.
//  4. Keep windows whose joined text is at least MinChars characters.
//
// Defaults are 5..10 words and 25 characters. A query with fewer than
// MinWords words in every sentence yields no chunks; callers treat that as
// "flexible matching unavailable".
//
// OriginalIndex on each chunk is approximate and only useful for diagnostics.
package chunker
