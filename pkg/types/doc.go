// Package types provides shared type definitions for the report search server.
//
// This package defines domain types used across multiple components, including
// query chunks, page matches, and the matching strategies that produce them.
//
// # Strategies
//
// Every match is tagged with the tier that produced it:
//
//	types.StrategyExact      // case-insensitive substring of the raw page text
//	types.StrategyNormalized // substring after whitespace collapsing and case folding
//	types.StrategyFlexible   // word-window chunk of a long query
//
// # Matches
//
// Match carries a page number (1-based), the offset of the hit within the text
// the producing strategy searched, and a confidence used for ranking:
//
//	m := types.Match{
//	    PageNumber: 3,
//	    TextIndex:  412,
//	    Text:       "loose shingles and granule loss",
//	    Strategy:   types.StrategyFlexible,
//	    Confidence: 0.84,
//	}
//
// Exact matches index into the lower-cased raw page text; normalized and flexible
// matches index into the normalized page text. RawIndex always refers to the raw
// page text so a viewer can highlight without re-deriving offsets.
//
// Flexible confidences are not clamped and may exceed 1.0. Only their order is
// meaningful.
//
// # Validation
//
//	if err := match.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
