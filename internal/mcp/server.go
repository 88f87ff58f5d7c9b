package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jmhart/textpress/internal/config"
	"github.com/jmhart/textpress/internal/service"
	"github.com/jmhart/textpress/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "textpress"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	store   store.Store
	service *service.Service
	log     *slog.Logger
}

// NewServer creates a new MCP server instance over the configured
// database
func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.New(store.Options{
		Dir:  cfg.Database.Dir,
		File: cfg.Database.File,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	svc := service.New(st, logger)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		store:   st,
		service: svc,
		log:     logger,
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(addEntryTool(), s.handleAddEntry)
	s.mcp.AddTool(processEntriesTool(), s.handleProcessEntries)
	s.mcp.AddTool(listEntriesTool(), s.handleListEntries)
	s.mcp.AddTool(searchEntriesTool(), s.handleSearchEntries)
	s.mcp.AddTool(getEntryTool(), s.handleGetEntry)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
}
