// Package pdftext extracts per-page plain text from inspection report PDFs.
//
// Extraction is best effort. Text layout in PDFs is positional, so the output
// often contains hard line breaks, doubled spaces and split words. Callers
// search it with the normalization tiers in package searcher rather than
// cleaning it here.
//
//	doc, err := pdftext.Open(ctx, "report.pdf")
//	if err != nil {
//	    return err
//	}
//	s := session.New(doc, searcher.New())
package pdftext
