package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/config"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/ingest"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/pdftext"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/searcher"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/session"
	"github.com/mcavnar/homeai-june-2025-33-sub000/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "reportsearch"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	ingester *ingest.Ingester
	engine   *searcher.Engine
	config   *config.Config

	mu       sync.Mutex
	sessions map[int64]*session.Session
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dbPath, err := cfg.ResolvedDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return newServer(cfg, store, pdftext.NewExtractor()), nil
}

func newServer(cfg *config.Config, store storage.Storage, extractor ingest.Extractor) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		storage:  store,
		ingester: ingest.New(store, extractor),
		engine:   searcher.NewEngine(cfg.Search),
		config:   cfg,
		sessions: make(map[int64]*session.Session),
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the database
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestReportTool(), s.handleIngestReport)
	s.mcp.AddTool(searchReportTool(), s.handleSearchReport)
	s.mcp.AddTool(locateIssueTool(), s.handleLocateIssue)
	s.mcp.AddTool(navigateMatchTool(), s.handleNavigateMatch)
	s.mcp.AddTool(addIssueTool(), s.handleAddIssue)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// sessionFor returns the search session of a report, creating it on first use
func (s *Server) sessionFor(reportID int64) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[reportID]
	if !ok {
		pages := storage.NewReportPages(s.storage, reportID)
		sess = session.NewWithConfig(pages, s.engine, s.config.Session)
		s.sessions[reportID] = sess
	}
	return sess
}

// existingSession returns the session of a report without creating one
func (s *Server) existingSession(reportID int64) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[reportID]
	return sess, ok
}

// dropSessions discards the sessions of re-ingested reports. Their page
// text may have changed, so stale matches would point at the wrong place.
func (s *Server) dropSessions(reportIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range reportIDs {
		if sess, ok := s.sessions[id]; ok {
			sess.Clear()
			delete(s.sessions, id)
		}
	}
}
