package ops

import (
	"fmt"
	"strings"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/conflict"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// CheckInput contains parameters for the Check operation.
type CheckInput struct {
	Path       string // required
	Prompt     string // optional: the intended change
	WindowDays int    // default: config window_days
}

// CheckOutput contains the result of the Check operation.
type CheckOutput struct {
	Path           string             `json:"path"`
	Safe           bool               `json:"safe"`
	Message        string             `json:"message"`
	TotalIntents   int                `json:"total_intents"`
	Decision       *conflict.Decision `json:"decision,omitempty"`
	RecentIntents  []IntentView       `json:"recent_intents,omitempty"`
	Listing        string             `json:"listing,omitempty"`
	Recommendation string             `json:"recommendation,omitempty"`
}

// Check reports conflicts between a planned change and a file's recent intents.
// Without a prompt it lists the intents inside the window.
func Check(st *store.Store, cfg *config.Config, input CheckInput) (*CheckOutput, error) {
	rel, err := st.Rel(input.Path)
	if err != nil {
		return nil, err
	}
	intents, err := st.History(rel)
	if err != nil {
		return nil, err
	}

	at := now()
	opts, err := conflictOptions(cfg, input.WindowDays, at)
	if err != nil {
		return nil, err
	}
	out := &CheckOutput{Path: rel, TotalIntents: len(intents)}

	if len(intents) == 0 {
		out.Safe = true
		out.Message = "No previous intents found for this file"
		return out, nil
	}

	if prompt := strings.TrimSpace(input.Prompt); prompt != "" {
		d := conflict.Decide(prompt, intents, opts)
		out.Decision = &d
		out.Safe = d.Action == conflict.ActionProceed
		out.Message = d.Conflict.Recommendation
		if d.Conflict.HasConflicts {
			out.Listing = FormatConflictList(d.Conflict.ConflictingIntents, at)
		}
		return out, nil
	}

	recent := sortNewestFirst(conflict.Windowed(intents, opts))
	if len(recent) == 0 {
		out.Safe = true
		out.Message = "No recent intents found within the conflict window"
		return out, nil
	}

	out.Message = fmt.Sprintf("Found %d recent intent(s) for this file", len(recent))
	out.RecentIntents = viewsOf(recent, at)
	out.Listing = FormatConflictList(recent, at)
	out.Recommendation = "Review these intents before making changes. Provide a prompt to analyze for specific conflicts."
	return out, nil
}
