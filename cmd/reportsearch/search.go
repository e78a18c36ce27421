package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/config"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/pdftext"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/searcher"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/session"
	"github.com/mcavnar/homeai-june-2025-33-sub000/pkg/types"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <input.pdf> <query>",
	Short: "Find a quoted passage in a PDF",
	Long: `Search every page of a PDF for a passage and print the matches in page order.

Examples:
  reportsearch search report.pdf "double tapped breaker"
  reportsearch search report.pdf "Water stains observed at the ceiling" --json`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	inputFile, query := args[0], args[1]

	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputFile)
	}
	if !strings.HasSuffix(strings.ToLower(inputFile), ".pdf") {
		return fmt.Errorf("input file must be a PDF: %s", inputFile)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := pdftext.Open(cmd.Context(), inputFile)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	state, err := searchPages(cmd, doc, query, cfg)
	if err != nil {
		return err
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), state)
	}
	writeText(cmd.OutOrStdout(), state)
	return nil
}

// searchPages runs a one-shot session over source
func searchPages(cmd *cobra.Command, source session.PageSource, query string, cfg *config.Config) (session.State, error) {
	sess := session.NewWithConfig(source, searcher.NewEngine(cfg.Search), cfg.Session)
	if _, err := sess.Search(cmd.Context(), query); err != nil {
		return session.State{}, fmt.Errorf("search failed: %w", err)
	}
	return sess.State(), nil
}

type matchOutput struct {
	PageNumber int     `json:"page_number"`
	TextIndex  int     `json:"text_index"`
	RawIndex   int     `json:"raw_index"`
	Text       string  `json:"text"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
}

type searchOutput struct {
	Query   string        `json:"query"`
	Total   int           `json:"total_matches"`
	Matches []matchOutput `json:"matches"`
}

func toMatchOutput(m types.Match) matchOutput {
	return matchOutput{
		PageNumber: m.PageNumber,
		TextIndex:  m.TextIndex,
		RawIndex:   m.RawIndex,
		Text:       m.Text,
		Strategy:   string(m.Strategy),
		Confidence: m.Confidence,
	}
}

func writeJSON(w io.Writer, state session.State) error {
	out := searchOutput{
		Query:   state.Query,
		Total:   len(state.Matches),
		Matches: make([]matchOutput, 0, len(state.Matches)),
	}
	for _, m := range state.Matches {
		out.Matches = append(out.Matches, toMatchOutput(m))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeText(w io.Writer, state session.State) {
	if len(state.Matches) == 0 {
		_, _ = fmt.Fprintf(w, "No matches for %q\n", state.Query)
		return
	}

	_, _ = fmt.Fprintf(w, "%d match(es) for %q\n", len(state.Matches), state.Query)
	for i, m := range state.Matches {
		_, _ = fmt.Fprintf(w, "%3d. page %d @%d  [%s %.2f]  %s\n",
			i+1, m.PageNumber, m.RawIndex, m.Strategy, m.Confidence, snippet(m.Text, 80))
	}
}

// snippet flattens whitespace and truncates to limit runes
func snippet(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
