// Package mcp implements the Model Context Protocol (MCP) server for
// reportsearch.
//
// The server exposes six tools to AI assistants:
//   - ingest_report: Extract and store the page text of a report PDF or a directory of PDFs
//   - search_report: Find a passage in an ingested report
//   - locate_issue: Find where a recorded issue's source quote appears
//   - navigate_match: Step through the current results of a report
//   - add_issue: Record an issue with the passage it was taken from
//   - get_status: Check ingest status and statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Standard output carries protocol messages only. Logs go to stderr.
//
// # Basic Usage
//
//	reportsearch serve
//
// # Tool: search_report
//
//	Request:
//	{
//	  "name": "search_report",
//	  "arguments": {
//	    "report_id": 3,
//	    "query": "Water stains observed at the ceiling"
//	  }
//	}
//
//	Response:
//	{
//	  "session_id": "6f1c...",
//	  "report_id": 3,
//	  "status": "results",
//	  "total_matches": 1,
//	  "current_index": 0,
//	  "current": {
//	    "page_number": 7,
//	    "text_index": 412,
//	    "raw_index": 415,
//	    "text": "water stains observed at the ceiling",
//	    "strategy": "normalized",
//	    "confidence": 0.95
//	  },
//	  "matches": [...]
//	}
//
// An empty query clears the report's results.
//
// # Sessions
//
// The server keeps one search session per report. search_report and
// locate_issue replace the session's results; navigate_match moves through
// them. When two searches on the same report overlap, the later one wins and
// the earlier call fails with a "superseded" error. Re-ingesting a report
// whose content changed discards its session.
//
// # Error Codes
//
//	-32602: Invalid params
//	-32603: Internal error
//	-32001: Report not found
//	-32002: Ingest in progress
//	-32003: Issue not found
//	-32004: Empty title or source quote
//
// Errors carry a Data field with the offending parameter where one applies:
//
//	{
//	  "code": -32602,
//	  "message": "invalid path",
//	  "data": {"param": "path", "reason": "path must be absolute"}
//	}
package mcp
