package ops

import (
	"github.com/bickolasliu/intention-mcp/internal/analysis"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// ExplainInput contains parameters for the Explain operation.
type ExplainInput struct {
	Path string // required
}

// ExplainOutput contains the result of the Explain operation.
type ExplainOutput struct {
	Path            string                   `json:"path"`
	TotalIntents    int                      `json:"total_intents"`
	Explanation     string                   `json:"explanation"`
	Themes          []string                 `json:"themes"`
	Timeline        []analysis.TimelineEntry `json:"timeline"`
	Contributors    []analysis.Contributor   `json:"contributors"`
	Recommendations []string                 `json:"recommendations"`
	Message         string                   `json:"message,omitempty"`
}

// Explain summarizes why a file looks the way it does from its intent history.
func Explain(st *store.Store, input ExplainInput) (*ExplainOutput, error) {
	rel, err := st.Rel(input.Path)
	if err != nil {
		return nil, err
	}
	intents, err := st.History(rel)
	if err != nil {
		return nil, err
	}

	a := analysis.Analyze(intents, now())
	out := &ExplainOutput{
		Path:            rel,
		TotalIntents:    len(intents),
		Explanation:     a.Summary,
		Themes:          a.Themes,
		Timeline:        a.Timeline,
		Contributors:    a.Contributors,
		Recommendations: a.Recommendations,
	}
	if len(intents) == 0 {
		out.Message = "No intent history found for this file"
		out.Explanation = "This file has no recorded intents. Consider using intention tools to track future changes."
	}
	return out, nil
}
