// Package session runs a search across every page of an open report and keeps
// the navigable result list a viewer highlights from.
//
// A Session moves between three states:
//
//	idle ──Search(q)──▶ searching ──▶ results(N, index)
//	  ▲                                  │  ▲
//	  └──────Clear / Search("")──────────┘  └─ NextMatch / PrevMatch
//
// Page text comes from a PageSource and is fetched concurrently; matching is
// done page by page with a searcher.Engine and the aggregated matches are
// ordered by confidence, then page number, then text index.
//
// # Usage
//
//	s := session.New(pdfDoc, searcher.New())
//
//	n, err := s.Search(ctx, issue.SourceQuote)
//	if err != nil {
//	    return err
//	}
//	if m, ok := s.CurrentMatch(); ok {
//	    viewer.Highlight(m.PageNumber, m.RawIndex, len(m.Text))
//	}
//	s.NextMatch() // wraps to the first match after the last
//
// # Superseded Searches
//
// Only the most recent Search is allowed to publish results. Starting a new
// Search or calling Clear cancels the context of any search still reading
// pages, and that older call returns context.Canceled without touching the
// session state.
package session
