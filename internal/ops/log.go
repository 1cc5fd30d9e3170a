package ops

import (
	"fmt"
	"strings"

	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// LogInput contains parameters for the Log operation.
type LogInput struct {
	Path      string   // required
	Prompt    string   // required
	User      string   // resolved by the caller
	Model     string   // resolved by the caller
	Overrides []string // ids already recorded for Path
}

// LogOutput contains the result of the Log operation.
type LogOutput struct {
	Path    string     `json:"path"`
	Intent  IntentView `json:"intent"`
	Message string     `json:"message"`
	Note    string     `json:"note"`
}

// Log records an intent for a change made outside the write/edit operations.
func Log(st *store.Store, input LogInput) (*LogOutput, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.NewInvalidRequest("prompt is required")
	}
	rel, err := st.Rel(input.Path)
	if err != nil {
		return nil, err
	}

	saved, err := st.Save(rel, store.SaveInput{
		Prompt:    input.Prompt,
		User:      input.User,
		Model:     input.Model,
		Overrides: input.Overrides,
	})
	if err != nil {
		return nil, err
	}

	return &LogOutput{
		Path:    rel,
		Intent:  ViewOf(saved, now()),
		Message: fmt.Sprintf("Intent logged successfully for: %s", rel),
		Note:    "Consider using intention_write or intention_edit for automatic intent tracking",
	}, nil
}
