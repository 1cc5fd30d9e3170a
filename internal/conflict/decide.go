package conflict

import "github.com/bickolasliu/intention-mcp/internal/intent"

// Action is the outcome of the decision policy.
type Action string

const (
	// ActionProceed lets the change go ahead. Low-severity findings ride
	// along as a warning.
	ActionProceed Action = "proceed"

	// ActionEscalate asks for an external review before the change is applied.
	ActionEscalate Action = "escalate"

	// ActionBlock refuses the change unless it is forced.
	ActionBlock Action = "block"
)

// Decision is the single policy result write paths act on.
type Decision struct {
	Action   Action   `json:"action"`
	Conflict Info     `json:"conflict"`
	Analysis *Request `json:"analysis,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Decide maps detector severity to an action: none and low proceed, medium
// escalates with a review brief, high blocks.
func Decide(newPrompt string, existing []intent.Intent, opts Options) Decision {
	opts = opts.withDefaults()
	info := Detect(newPrompt, existing, opts)

	switch info.Severity {
	case SeverityHigh:
		return Decision{
			Action:   ActionBlock,
			Conflict: info,
			Reason:   info.Recommendation,
		}
	case SeverityMedium:
		req := Prepare(newPrompt, existing, opts)
		return Decision{
			Action:   ActionEscalate,
			Conflict: info,
			Analysis: &req,
			Reason:   "Conflicting intents from multiple contributors need review before proceeding.",
		}
	default:
		return Decision{
			Action:   ActionProceed,
			Conflict: info,
		}
	}
}
