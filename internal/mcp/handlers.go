// ABOUTME: MCP tool handler implementations for the mealstreak server
// ABOUTME: Validates arguments, calls the tracker and renders JSON results
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/core"
	"github.com/harper/mealstreak/internal/models"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	svc Service
}

// NewHandlers creates handlers backed by svc
func NewHandlers(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

type dayState struct {
	Date     string `json:"date"`
	Complete bool   `json:"complete"`
}

type streakResult struct {
	UserID             string     `json:"user_id"`
	Today              string     `json:"today"`
	CurrentStreak      int        `json:"current_streak"`
	BestStreak         int        `json:"best_streak"`
	TotalCompletedDays int        `json:"total_completed_days"`
	LastCompletedDate  string     `json:"last_completed_date,omitempty"`
	Days               []dayState `json:"days"`
}

func newStreakResult(s core.Snapshot) streakResult {
	out := streakResult{
		UserID:             s.UserID,
		Today:              s.Today.String(),
		CurrentStreak:      s.Streak.CurrentStreak,
		BestStreak:         s.Streak.BestStreak,
		TotalCompletedDays: s.Streak.TotalCompletedDays,
		Days:               make([]dayState, 0, len(s.Days)),
	}
	if s.Streak.LastCompletedDate != nil {
		out.LastCompletedDate = s.Streak.LastCompletedDate.String()
	}
	for _, d := range s.Days {
		out.Days = append(out.Days, dayState{Date: d.Date.String(), Complete: d.IsComplete})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, core.ErrNotAuthenticated) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: not signed in", action))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", action, err))
}

// MarkMeal handles the mark_meal tool
func (h *Handlers) MarkMeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, err := request.RequireString("slot")
	if err != nil {
		return mcp.NewToolResultError("slot argument is required and must be a string"), nil
	}
	slot, err = models.NormalizeSlot(slot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	completion, err := models.ParseCompletion(request.GetString("completion", string(models.CompletionAteExact)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	day := h.svc.Today()
	if raw := request.GetString("date", ""); raw != "" {
		day, err = calendar.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date: %v", err)), nil
		}
	}

	if err := h.svc.MarkMeal(ctx, h.svc.Day(day), slot, completion); err != nil {
		return errorResult("mark meal failed", err), nil
	}

	snap := h.svc.Snapshot()
	return jsonResult(map[string]any{
		"date":           day.String(),
		"slot":           slot,
		"completion":     string(completion),
		"day_complete":   snap.IsComplete(day),
		"current_streak": snap.Streak.CurrentStreak,
	})
}

// FetchCompletions handles the fetch_completions tool
func (h *Handlers) FetchCompletions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := request.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError("start argument is required and must be a string"), nil
	}
	end := request.GetString("end", start)

	r, err := calendar.ParseRange(start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid range: %v", err)), nil
	}

	records, err := h.svc.FetchCompletions(ctx, r)
	if err != nil {
		return errorResult("fetch failed", err), nil
	}

	type recordView struct {
		Date       string `json:"date"`
		Slot       string `json:"slot"`
		Completion string `json:"completion"`
	}
	out := make([]recordView, 0, len(records))
	for _, rec := range records {
		out = append(out, recordView{Date: rec.Date.String(), Slot: rec.MealSlot, Completion: string(rec.Completion)})
	}
	return jsonResult(map[string]any{
		"range":   r.String(),
		"count":   len(out),
		"records": out,
	})
}

// GetStreak handles the get_streak tool
func (h *Handlers) GetStreak(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(newStreakResult(h.svc.Snapshot()))
}

// Reload handles the reload tool
func (h *Handlers) Reload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.svc.Reload(ctx); err != nil {
		return errorResult("reload failed", err), nil
	}
	return jsonResult(newStreakResult(h.svc.Snapshot()))
}
