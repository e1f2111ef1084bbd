// ABOUTME: Stdio MCP server lifecycle shared by the CLI and cmd/server
// ABOUTME: Serves the tools while following auth changes and day rollovers
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/mealstreak/internal/app"
)

// ServerName is the MCP implementation name reported to clients
const ServerName = "mealstreak"

// Serve serves the mealstreak tools on stdio until a signal arrives or
// the transport fails
func Serve(parent context.Context, a *app.App, version string) error {
	server := mcpserver.NewMCPServer(ServerName, version)
	RegisterTools(server, a)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.Watch(ctx, time.Minute); err != nil && ctx.Err() == nil {
			a.Logger.Warn("state watcher stopped", "err", err)
		}
	}()

	a.Logger.Info("MCP server starting on stdio", "user", a.Orchestrator.Session().UserID)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
