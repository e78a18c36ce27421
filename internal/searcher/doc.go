// Package searcher locates a quoted passage inside the text of one report page.
//
// Quotes copied out of an inspection report rarely match the extracted page
// text byte for byte: PDF extraction inserts line breaks, doubles spaces and
// splits hyphenated words. The Engine therefore tries three tiers in order and
// stops at the first tier that finds anything:
//
//   - Exact: case-insensitive substring of the raw page text (confidence 1.0)
//   - Normalized: whitespace collapsed and lower-cased on both sides (0.95)
//   - Flexible: 5-10 word chunks of the query found in the normalized page
//
// # Basic Usage
//
//	engine := searcher.New()
//
//	matches := engine.Search(pageText, "Recommend repair within 6 months", 3)
//	for _, m := range matches {
//	    fmt.Printf("page %d @%d [%s] %.2f\n",
//	        m.PageNumber, m.RawIndex, m.Strategy, m.Confidence)
//	}
//
// # Flexible Matching
//
// Flexible matching only runs for queries longer than 30 characters. Every
// chunk of at least 25 characters is located at all of its occurrences,
// including overlapping ones, and scored by length and word count:
//
//	confidence = 0.3 + min(chars*0.005, 0.3) + min(words*0.05, 0.2)
//
// Candidates are ranked, and any candidate starting within 50 characters of a
// stronger one is dropped. The top three survivors are rescored against the
// whole query (long-match bonuses plus word overlap) and only those above 0.6
// are returned. Rescored confidence is not clamped and can exceed 1.0.
//
// # Offsets
//
// TextIndex is expressed in the coordinates of the tier that produced the
// match: the lower-cased raw text for exact matches and the normalized text
// otherwise. RawIndex maps the same position back into the raw page text,
// which is what a viewer needs to highlight the passage.
//
// # Caching
//
// Results are memoized per (page number, page text, query) in an LRU cache
// sized by Config.CacheSize. Callers always receive their own copy.
package searcher
