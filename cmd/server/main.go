// ABOUTME: Main entry point for the mealstreak MCP server with stdio transport
// ABOUTME: Loads config, opens the configured backend and serves the tools
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harper/mealstreak/internal/app"
	"github.com/harper/mealstreak/internal/config"
	"github.com/harper/mealstreak/internal/mcp"
)

var version = "dev"

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "mealstreak"})

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(cfg.Level())

	a, err := app.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open backend", "err", err)
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.Start(ctx); err != nil {
		// serve anyway; the reload tool recovers once the store is reachable
		logger.Warn("initial load failed", "err", err)
	}

	if err := mcp.Serve(ctx, a, version); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
