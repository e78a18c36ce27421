package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Navigation actions accepted by navigate_match
const (
	ActionNext    = "next"
	ActionPrev    = "prev"
	ActionCurrent = "current"
	ActionClear   = "clear"
)

// ingestReportTool returns the tool definition for ingest_report
func ingestReportTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_report",
		Description: "Extract and store the page text of an inspection report PDF, or of every PDF in a directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a .pdf file or a directory containing PDFs",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-extract reports even when their content hash is unchanged",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchReportTool returns the tool definition for search_report
func searchReportTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_report",
		Description: "Find a passage in an ingested report. Tries exact, whitespace-normalized, then fuzzy chunk matching on every page",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"report_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the ingested report",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to find. An empty query clears the report's current results",
				},
			},
			Required: []string{"report_id", "query"},
		},
	}
}

// locateIssueTool returns the tool definition for locate_issue
func locateIssueTool() mcp.Tool {
	return mcp.Tool{
		Name:        "locate_issue",
		Description: "Find where an issue's source quote appears in its report",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"issue_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the issue",
				},
			},
			Required: []string{"issue_id"},
		},
	}
}

// navigateMatchTool returns the tool definition for navigate_match
func navigateMatchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "navigate_match",
		Description: "Move through the current search results of a report. next and prev wrap around",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"report_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the ingested report",
				},
				"action": map[string]interface{}{
					"type":        "string",
					"description": "Navigation action",
					"enum":        []string{ActionNext, ActionPrev, ActionCurrent, ActionClear},
					"default":     ActionCurrent,
				},
			},
			Required: []string{"report_id"},
		},
	}
}

// addIssueTool returns the tool definition for add_issue
func addIssueTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_issue",
		Description: "Record an issue against a report, with the passage of the report it was taken from",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"report_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the ingested report",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Short issue title",
				},
				"source_quote": map[string]interface{}{
					"type":        "string",
					"description": "Passage copied from the report, used verbatim by locate_issue",
				},
				"system": map[string]interface{}{
					"type":        "string",
					"description": "Building system, e.g. roof, plumbing, electrical",
				},
				"severity": map[string]interface{}{
					"type":        "string",
					"description": "Severity label",
					"enum":        []string{"minor", "moderate", "major", "safety"},
				},
			},
			Required: []string{"report_id", "title", "source_quote"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query ingest status and statistics for a report",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"report_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the report",
				},
			},
			Required: []string{"report_id"},
		},
	}
}
