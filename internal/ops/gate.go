package ops

import (
	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/conflict"
	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// Guidance returned when a change is held for review.
const (
	escalateMessage     = "Conflicting intents detected. Please analyze for conflicts before proceeding."
	escalateInstruction = "Review the conflict analysis request. If there is NO significant conflict, retry with skip_conflict_check: true. " +
		"If there IS a conflict, either abort or use force: true to override."
)

// GateOptions are the caller's acknowledgements for a guarded change.
type GateOptions struct {
	// Force applies the change despite any finding and records the
	// conflicting intents as overridden.
	Force bool

	// SkipConflictCheck acknowledges a completed review. It clears an
	// escalation but never a block.
	SkipConflictCheck bool

	WindowDays int
}

// gateResult is what a write path needs to know after the decision policy ran.
type gateResult struct {
	Decision  conflict.Decision
	Proceed   bool
	Overrides []string
	Warning   string
}

// gate runs the decision policy for a planned change to rel.
// A block without Force is returned as a CONFLICT error.
func gate(st *store.Store, cfg *config.Config, rel, prompt string, opts GateOptions) (*gateResult, error) {
	intents, err := st.History(rel)
	if err != nil {
		return nil, err
	}

	copts, err := conflictOptions(cfg, opts.WindowDays, now())
	if err != nil {
		return nil, err
	}
	d := conflict.Decide(prompt, intents, copts)
	res := &gateResult{Decision: d}

	switch d.Action {
	case conflict.ActionBlock:
		if !opts.Force {
			return nil, errors.NewConflict(d.Reason, d.Conflict.ConflictingIDs())
		}
		res.Proceed = true
		res.Overrides = d.Conflict.ConflictingIDs()
	case conflict.ActionEscalate:
		switch {
		case opts.Force:
			res.Proceed = true
			res.Overrides = d.Conflict.ConflictingIDs()
		case opts.SkipConflictCheck:
			res.Proceed = true
		}
	default:
		res.Proceed = true
		if d.Conflict.HasConflicts {
			res.Warning = d.Conflict.Recommendation
		}
	}
	return res, nil
}
