package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/ingest"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/session"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/storage"
	"github.com/mcavnar/homeai-june-2025-33-sub000/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeReportNotFound   = -32001 // No ingested report with that ID
	ErrorCodeIngestInProgress = -32002 // Another ingest operation is already running
	ErrorCodeIssueNotFound    = -32003 // No issue with that ID
	ErrorCodeEmptyQuery       = -32004 // Quote or title parameter is empty
)

// Severity labels accepted by add_issue
var validSeverities = map[string]bool{
	"minor":    true,
	"moderate": true,
	"major":    true,
	"safety":   true,
}

// handleIngestReport handles the ingest_report tool invocation
func (s *Server) handleIngestReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	config := &ingest.Config{
		Workers: s.config.Workers,
		Force:   getBoolDefault(args, "force", false),
	}

	stats, err := s.ingester.IngestPath(ctx, path, config)
	if errors.Is(err, ingest.ErrIngestInProgress) {
		return nil, newMCPError(ErrorCodeIngestInProgress, "another ingest is already running", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "ingest failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.dropSessions(stats.UpdatedIDs)

	response := map[string]interface{}{
		"ingested":         true,
		"reports_ingested": stats.ReportsIngested,
		"reports_skipped":  stats.ReportsSkipped,
		"reports_failed":   stats.ReportsFailed,
		"pages_stored":     stats.PagesStored,
		"empty_pages":      stats.EmptyPages,
		"report_ids":       stats.ReportIDs,
		"duration_ms":      stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchReport handles the search_report tool invocation
func (s *Server) handleSearchReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	reportID, err := getIDParam(args, "report_id")
	if err != nil {
		return nil, err
	}

	// An empty query is allowed and clears the session
	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or not a string",
		})
	}

	report, err := s.lookupReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	sess := s.sessionFor(report.ID)
	if _, err := sess.Search(ctx, query); err != nil {
		return nil, searchError(ctx, err)
	}

	response := formatState(sess.State())
	response["report_id"] = report.ID
	response["page_count"] = report.PageCount
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleLocateIssue handles the locate_issue tool invocation
func (s *Server) handleLocateIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	issueID, err := getIDParam(args, "issue_id")
	if err != nil {
		return nil, err
	}

	issue, err := s.storage.GetIssue(ctx, issueID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeIssueNotFound, "issue not found", map[string]interface{}{
			"issue_id": issueID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get issue", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// The quote is searched exactly as it was recorded
	sess := s.sessionFor(issue.ReportID)
	found, err := sess.Search(ctx, issue.SourceQuote)
	if err != nil {
		return nil, searchError(ctx, err)
	}

	response := formatState(sess.State())
	response["found"] = found > 0
	response["report_id"] = issue.ReportID
	response["issue"] = formatIssue(issue)
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleNavigateMatch handles the navigate_match tool invocation
func (s *Server) handleNavigateMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	reportID, err := getIDParam(args, "report_id")
	if err != nil {
		return nil, err
	}

	action := getStringDefault(args, "action", ActionCurrent)
	switch action {
	case ActionNext, ActionPrev, ActionCurrent, ActionClear:
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid action", map[string]interface{}{
			"param":   "action",
			"value":   action,
			"allowed": []string{ActionNext, ActionPrev, ActionCurrent, ActionClear},
		})
	}

	if _, err := s.lookupReport(ctx, reportID); err != nil {
		return nil, err
	}

	sess, ok := s.existingSession(reportID)
	if !ok {
		// Nothing searched yet
		response := map[string]interface{}{
			"report_id":     reportID,
			"action":        action,
			"found":         false,
			"status":        session.StatusIdle,
			"total_matches": 0,
			"current_index": -1,
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	var found bool
	switch action {
	case ActionNext:
		_, found = sess.NextMatch()
	case ActionPrev:
		_, found = sess.PrevMatch()
	case ActionCurrent:
		_, found = sess.CurrentMatch()
	case ActionClear:
		sess.Clear()
	}

	response := formatState(sess.State())
	response["report_id"] = reportID
	response["action"] = action
	response["found"] = found
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAddIssue handles the add_issue tool invocation
func (s *Server) handleAddIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	reportID, err := getIDParam(args, "report_id")
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(getStringDefault(args, "title", ""))
	if title == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "title parameter is required and cannot be empty", map[string]interface{}{
			"param":  "title",
			"reason": "missing or empty",
		})
	}

	quote := getStringDefault(args, "source_quote", "")
	if strings.TrimSpace(quote) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "source_quote parameter is required and cannot be empty", map[string]interface{}{
			"param":  "source_quote",
			"reason": "missing or empty",
		})
	}

	severity := getStringDefault(args, "severity", "")
	if severity != "" && !validSeverities[severity] {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid severity", map[string]interface{}{
			"param": "severity",
			"value": severity,
		})
	}

	report, err := s.lookupReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	issue := &storage.Issue{
		ReportID:    report.ID,
		Title:       title,
		System:      getStringDefault(args, "system", ""),
		Severity:    severity,
		SourceQuote: quote,
	}
	if err := s.storage.CreateIssue(ctx, issue); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to create issue", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"created": true,
		"issue":   formatIssue(issue),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	reportID, err := getIDParam(args, "report_id")
	if err != nil {
		return nil, err
	}

	status, err := s.storage.GetStatus(ctx, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"ingested":  false,
			"report_id": reportID,
			"message":   "Report not ingested. Use the ingest_report tool to ingest its PDF.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	report := status.Report
	response := map[string]interface{}{
		"ingested": true,
		"report": map[string]interface{}{
			"id":               report.ID,
			"path":             report.SourcePath,
			"title":            report.Title,
			"page_count":       report.PageCount,
			"size_bytes":       report.SizeBytes,
			"last_ingested_at": status.LastIngestedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"pages_count":      status.PagesCount,
			"empty_pages":      status.EmptyPages,
			"issues_count":     status.IssuesCount,
			"total_chars":      status.TotalChars,
			"database_size_mb": fmt.Sprintf("%.2f", status.DatabaseSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"text_extracted":      status.Health.TextExtracted,
			"pages_complete":      status.Health.PagesComplete,
		},
	}

	if sess, ok := s.existingSession(reportID); ok {
		state := sess.State()
		response["session"] = map[string]interface{}{
			"id":            state.ID,
			"query":         state.Query,
			"status":        state.Status,
			"total_matches": len(state.Matches),
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// lookupReport fetches a report, translating a miss into an MCP error
func (s *Server) lookupReport(ctx context.Context, reportID int64) (*storage.Report, error) {
	report, err := s.storage.GetReportByID(ctx, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeReportNotFound, "report not found", map[string]interface{}{
			"report_id": reportID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get report", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return report, nil
}

// searchError converts a session search failure into an MCP error. A search
// cancelled by a newer one on the same report is reported as superseded.
func searchError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return newMCPError(ErrorCodeInternalError, "search superseded by a newer search", map[string]interface{}{
			"superseded": true,
		})
	}
	return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable PDF file or directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() && !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ErrNotPDF
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatState renders a session snapshot
func formatState(state session.State) map[string]interface{} {
	matches := make([]map[string]interface{}, 0, len(state.Matches))
	for _, m := range state.Matches {
		matches = append(matches, formatMatch(m))
	}

	response := map[string]interface{}{
		"session_id":    state.ID,
		"query":         state.Query,
		"status":        state.Status,
		"total_matches": len(state.Matches),
		"current_index": state.CurrentIndex,
		"matches":       matches,
	}
	if current, ok := state.Current(); ok {
		response["current"] = formatMatch(current)
	}
	return response
}

func formatMatch(m types.Match) map[string]interface{} {
	return map[string]interface{}{
		"page_number": m.PageNumber,
		"text_index":  m.TextIndex,
		"raw_index":   m.RawIndex,
		"text":        m.Text,
		"strategy":    m.Strategy,
		"confidence":  math.Round(m.Confidence*1000) / 1000,
	}
}

func formatIssue(issue *storage.Issue) map[string]interface{} {
	return map[string]interface{}{
		"id":           issue.ID,
		"report_id":    issue.ReportID,
		"title":        issue.Title,
		"system":       issue.System,
		"severity":     issue.Severity,
		"source_quote": issue.SourceQuote,
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIDParam extracts a required positive integer ID. JSON numbers arrive as
// float64.
func getIDParam(args map[string]interface{}, key string) (int64, error) {
	var id int64
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, invalidIDError(key, v)
		}
		id = int64(v)
	case int:
		id = int64(v)
	case int64:
		id = v
	case nil:
		return 0, newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing",
		})
	default:
		return 0, invalidIDError(key, v)
	}

	if id < 1 {
		return 0, invalidIDError(key, id)
	}
	return id, nil
}

func invalidIDError(key string, value interface{}) error {
	return newMCPError(ErrorCodeInvalidParams, key+" must be a positive integer", map[string]interface{}{
		"param": key,
		"value": value,
	})
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotPDF          = errors.New("file is not a PDF")
)
