package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/conflict"
	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/intent"
)

// Result limits
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
	DefaultSearchLimit  = 20
	MaxSearchLimit      = 100
	MaxQueryLength      = 500
)

// now is the clock used by every operation; tests replace it.
var now = time.Now

// IntentView is an intent prepared for display.
type IntentView struct {
	ID           string   `json:"id"`
	Timestamp    string   `json:"timestamp"`
	RelativeTime string   `json:"relative_time"`
	User         string   `json:"user"`
	Prompt       string   `json:"prompt"`
	Model        string   `json:"model"`
	Overrides    []string `json:"overrides"`
}

// ViewOf builds the display form of an intent.
func ViewOf(it intent.Intent, at time.Time) IntentView {
	it = it.Normalized()
	return IntentView{
		ID:           it.ID,
		Timestamp:    it.Timestamp,
		RelativeTime: it.RelativeTime(at),
		User:         it.User,
		Prompt:       it.Prompt,
		Model:        it.Model,
		Overrides:    it.Overrides,
	}
}

func viewsOf(intents []intent.Intent, at time.Time) []IntentView {
	views := make([]IntentView, 0, len(intents))
	for _, it := range intents {
		views = append(views, ViewOf(it, at))
	}
	return views
}

// FormatConflictList renders intents as a numbered plain-text listing.
func FormatConflictList(intents []intent.Intent, at time.Time) string {
	var b strings.Builder
	b.WriteString("Recent intents for this file:\n\n")
	for i, it := range intents {
		fmt.Fprintf(&b, "%d. %s by %s\n", i+1, it.RelativeTime(at), it.User)
		fmt.Fprintf(&b, "   %s\n\n", it.Prompt)
	}
	return b.String()
}

// conflictOptions merges a per-call window with the configured default.
// Zero means unset; a negative window is rejected.
func conflictOptions(cfg *config.Config, windowDays int, at time.Time) (conflict.Options, error) {
	if windowDays < 0 {
		return conflict.Options{}, errors.NewInvalidRequest(fmt.Sprintf("window_days must be positive, got %d", windowDays))
	}
	if windowDays == 0 && cfg != nil {
		windowDays = cfg.WindowDays
	}
	return conflict.Options{WindowDays: windowDays, Now: at}, nil
}

// clampLimit applies a default and an upper bound to a requested limit.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
