// ABOUTME: MCP tool definitions and registration for the mealstreak server
// ABOUTME: Exposes marking meals, range fetches, streak state and reloads
package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/core"
	"github.com/harper/mealstreak/internal/models"
)

// Service is the completion tracker the tools drive. *app.App satisfies it.
type Service interface {
	MarkMeal(ctx context.Context, at time.Time, slot string, completion models.Completion) error
	FetchCompletions(ctx context.Context, r calendar.Range) ([]models.CompletionRecord, error)
	Reload(ctx context.Context) error
	Snapshot() core.Snapshot
	Today() calendar.Day
	Day(day calendar.Day) time.Time
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, svc Service) *Handlers {
	handlers := NewHandlers(svc)

	server.AddTool(mcp.Tool{
		Name:        "mark_meal",
		Description: "Record whether a meal slot was eaten on a day. A completion of 'none' clears the record.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"slot": map[string]interface{}{
					"type":        "string",
					"description": "Meal slot: breakfast, lunch, dinner or logged_meal",
				},
				"completion": map[string]interface{}{
					"type":        "string",
					"description": "ateExact, ateSimilar or none (default: ateExact)",
					"enum":        []string{"ateExact", "ateSimilar", "none"},
					"default":     "ateExact",
				},
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Day as YYYY-MM-DD (default: today)",
				},
			},
			Required: []string{"slot"},
		},
	}, handlers.MarkMeal)

	server.AddTool(mcp.Tool{
		Name:        "fetch_completions",
		Description: "Fetch completion records for an inclusive date range and merge them into the tracked state.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"start": map[string]interface{}{
					"type":        "string",
					"description": "First day as YYYY-MM-DD",
				},
				"end": map[string]interface{}{
					"type":        "string",
					"description": "Last day as YYYY-MM-DD (default: start)",
				},
			},
			Required: []string{"start"},
		},
	}, handlers.FetchCompletions)

	server.AddTool(mcp.Tool{
		Name:        "get_streak",
		Description: "Get the current and best streak plus per-day completion state for the loaded windows.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetStreak)

	server.AddTool(mcp.Tool{
		Name:        "reload",
		Description: "Refetch the current week and trailing window from storage, replacing the cached records.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.Reload)

	return handlers
}
