// ABOUTME: Export of a user's completions and derived streaks
// ABOUTME: Supports YAML, JSON and Markdown output
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
)

// Export formats
const (
	FormatYAML     = "yaml"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ExportVersion is bumped when the export layout changes
const ExportVersion = "1.0"

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string                      `yaml:"version" json:"version"`
	ExportedAt string                      `yaml:"exported_at" json:"exported_at"`
	Tool       string                      `yaml:"tool" json:"tool"`
	UserID     string                      `yaml:"user_id" json:"user_id"`
	DayRule    models.DayRule              `yaml:"day_rule" json:"day_rule"`
	Range      calendar.Range              `yaml:"range" json:"range"`
	Summary    models.StreakSummary        `yaml:"summary" json:"summary"`
	Days       []models.DayCompletionState `yaml:"days" json:"days"`
	Records    []models.CompletionRecord   `yaml:"records" json:"records"`
}

// NewExport assembles an export document
func NewExport(userID string, rule models.DayRule, r calendar.Range, records []models.CompletionRecord, days []models.DayCompletionState, summary models.StreakSummary, now time.Time) *ExportData {
	if records == nil {
		records = []models.CompletionRecord{}
	}
	if days == nil {
		days = []models.DayCompletionState{}
	}
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: now.Format(time.RFC3339),
		Tool:       "mealstreak",
		UserID:     userID,
		DayRule:    rule,
		Range:      r,
		Summary:    summary,
		Days:       days,
		Records:    records,
	}
}

// Write encodes the export in format to w
func (d *ExportData) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		return d.WriteYAML(w)
	case FormatJSON:
		return d.WriteJSON(w)
	case FormatMarkdown, "md":
		return d.WriteMarkdown(w)
	default:
		return fmt.Errorf("unsupported export format %q (want yaml, json or markdown)", format)
	}
}

// WriteYAML encodes the export as YAML
func (d *ExportData) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteJSON encodes the export as indented JSON
func (d *ExportData) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteMarkdown renders the export as a Markdown report
func (d *ExportData) WriteMarkdown(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Meal Streak Export - %s\n\n", d.UserID)
	fmt.Fprintf(&b, "Generated: %s\n\n", d.ExportedAt)
	fmt.Fprintf(&b, "Range: %s (rule: %s)\n\n", d.Range, d.DayRule)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Current streak:** %d\n", d.Summary.CurrentStreak)
	fmt.Fprintf(&b, "- **Best streak:** %d\n", d.Summary.BestStreak)
	fmt.Fprintf(&b, "- **Completed days:** %d\n", d.Summary.TotalCompletedDays)
	if d.Summary.LastCompletedDate != nil {
		fmt.Fprintf(&b, "- **Last completed:** %s\n", d.Summary.LastCompletedDate)
	}
	b.WriteString("\n")

	if len(d.Records) > 0 {
		b.WriteString("## Completions\n\n")
		b.WriteString("| Date | Meal | Completion |\n")
		b.WriteString("|------|------|------------|\n")
		for _, rec := range d.Records {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", rec.Date, rec.MealSlot, rec.Completion)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile writes the export to outputPath, creating parent directories
func (d *ExportData) WriteFile(outputPath, format string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return d.Write(file, format)
}

// FormatFromPath guesses an export format from a file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatYAML
	}
}
