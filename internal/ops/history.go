package ops

import (
	"fmt"
	"slices"

	"github.com/bickolasliu/intention-mcp/internal/intent"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Path  string // required
	Limit int    // default: 10, max: 100
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Path       string       `json:"path"`
	Intents    []IntentView `json:"intents"`
	TotalCount int          `json:"total_count"`
	Message    string       `json:"message"`
}

// History returns a file's intents, newest first.
func History(st *store.Store, input HistoryInput) (*HistoryOutput, error) {
	rel, err := st.Rel(input.Path)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(input.Limit, DefaultHistoryLimit, MaxHistoryLimit)

	intents, err := st.History(rel)
	if err != nil {
		return nil, err
	}
	if len(intents) == 0 {
		return &HistoryOutput{
			Path:    rel,
			Intents: []IntentView{},
			Message: "No intent history found for this file",
		}, nil
	}

	sorted := sortNewestFirst(intents)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	return &HistoryOutput{
		Path:       rel,
		Intents:    viewsOf(sorted, now()),
		TotalCount: len(intents),
		Message:    fmt.Sprintf("Found %d intent(s) for this file (showing %d)", len(intents), len(sorted)),
	}, nil
}

// sortNewestFirst returns a newest-first copy of intents.
func sortNewestFirst(intents []intent.Intent) []intent.Intent {
	sorted := slices.Clone(intents)
	slices.SortStableFunc(sorted, func(a, b intent.Intent) int {
		switch {
		case intent.NewestFirst(a, b):
			return -1
		case intent.NewestFirst(b, a):
			return 1
		}
		return 0
	})
	return sorted
}
