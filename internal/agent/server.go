package agent

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"edharness/internal/app"
	"edharness/pkg/logging"
)

// Server serves the harness tools over MCP.
type Server struct {
	services *app.Services
	mcp      *server.MCPServer
}

// NewServer registers the harness tools on a new MCP server.
func NewServer(services *app.Services, version string) *Server {
	s := &Server{services: services}
	s.mcp = server.NewMCPServer(
		"edharness",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcp.AddTools(s.tools()...)
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve answers requests read from in on out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
	logging.Info("Agent", "Serving harness tools on stdio")
	return stdio.Listen(ctx, in, out)
}
