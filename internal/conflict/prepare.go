package conflict

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bickolasliu/intention-mcp/internal/intent"
)

// Summary is one windowed intent as presented to a reviewer.
type Summary struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Prompt    string `json:"prompt"`
	TimeAgo   string `json:"time_ago"`
	IsRecent  bool   `json:"is_recent"`
}

// Request is a brief asking a human or model reviewer to judge a conflict.
type Request struct {
	CurrentPrompt       string    `json:"current_prompt"`
	RecentIntents       []Summary `json:"recent_intents"`
	AnalysisPrompt      string    `json:"analysis_prompt"`
	RequiresLLMAnalysis bool      `json:"requires_llm_analysis"`
}

// Prepare builds a review brief for newPrompt against the windowed intents,
// newest first. Without windowed intents no review is required.
func Prepare(newPrompt string, existing []intent.Intent, opts Options) Request {
	opts = opts.withDefaults()

	if len(existing) == 0 {
		return Request{
			CurrentPrompt:  newPrompt,
			RecentIntents:  []Summary{},
			AnalysisPrompt: "No previous intents found. This is the first tracked change to this file.",
		}
	}

	recent := Windowed(existing, opts)
	if len(recent) == 0 {
		return Request{
			CurrentPrompt:  newPrompt,
			RecentIntents:  []Summary{},
			AnalysisPrompt: fmt.Sprintf("No recent changes in the last %d days. Safe to proceed.", opts.WindowDays),
		}
	}

	slices.SortStableFunc(recent, func(a, b intent.Intent) int {
		switch {
		case intent.NewestFirst(a, b):
			return -1
		case intent.NewestFirst(b, a):
			return 1
		}
		return 0
	})

	summaries := make([]Summary, 0, len(recent))
	for _, it := range recent {
		summaries = append(summaries, Summary{
			ID:        it.ID,
			Timestamp: it.Timestamp,
			User:      it.User,
			Prompt:    it.Prompt,
			TimeAgo:   it.RelativeTime(opts.Now),
			IsRecent:  it.Age(opts.Now) < VeryRecent,
		})
	}

	return Request{
		CurrentPrompt:       newPrompt,
		RecentIntents:       summaries,
		AnalysisPrompt:      analysisPrompt(newPrompt, summaries),
		RequiresLLMAnalysis: true,
	}
}

func analysisPrompt(newPrompt string, recent []Summary) string {
	var b strings.Builder

	b.WriteString("CONFLICT ANALYSIS REQUEST\n")
	b.WriteString("========================\n\n")
	b.WriteString("Please analyze if the following new change conflicts with recent intents:\n\n")
	b.WriteString("NEW CHANGE INTENT:\n")
	fmt.Fprintf(&b, "%q\n\n", newPrompt)
	b.WriteString("RECENT INTENTS ON THIS FILE:\n\n")

	for i, s := range recent {
		fmt.Fprintf(&b, "%d. %s by %s:\n", i+1, s.TimeAgo, s.User)
		fmt.Fprintf(&b, "   %q\n", s.Prompt)
		if s.IsRecent {
			b.WriteString("   WARNING: Very recent change (less than 24 hours ago)\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("ANALYSIS REQUIRED:\n")
	b.WriteString("1. Do these intents conflict with each other?\n")
	b.WriteString("2. Would the new change undo or contradict recent work?\n")
	b.WriteString("3. Are multiple people working on related features that might conflict?\n")
	b.WriteString("4. Severity: HIGH (stop and coordinate), MEDIUM (review carefully), LOW (proceed with caution), NONE (safe)\n\n")
	b.WriteString("Please determine if there is a conflict and explain your reasoning.")

	return b.String()
}

// SystemPrompt returns the reviewer instructions that accompany a Request.
func SystemPrompt() string {
	return `You are analyzing potential conflicts in code changes. When presented with a new intent and recent intents on the same file:

1. Identify if the changes are contradictory (e.g., one adds authentication, another removes it)
2. Check if changes affect the same functionality in incompatible ways
3. Consider if multiple developers are working on overlapping features
4. Assess the risk level:
   - HIGH: Direct contradiction or will break recent work
   - MEDIUM: Overlapping changes that need coordination
   - LOW: Related but compatible changes
   - NONE: No conflict detected

Provide a clear, concise assessment and recommendation.`
}
