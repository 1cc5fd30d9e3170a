package ops

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/conflict"
	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// WriteInput contains parameters for the Write operation.
type WriteInput struct {
	Path    string // required
	Content string // full new file content
	Prompt  string // required
	User    string // resolved by the caller
	Model   string // resolved by the caller
	GateOptions
}

// WriteOutput contains the result of the Write operation.
type WriteOutput struct {
	Path        string             `json:"path"`
	Applied     bool               `json:"applied"`
	Created     bool               `json:"created,omitempty"`
	Intent      *IntentView        `json:"intent,omitempty"`
	Decision    *conflict.Decision `json:"decision,omitempty"`
	Warning     string             `json:"warning,omitempty"`
	Message     string             `json:"message"`
	Instruction string             `json:"instruction,omitempty"`
}

// Write replaces (or creates) a source file and records the intent behind it.
// The decision policy runs first; an escalation returns without touching the
// file, a block fails with CONFLICT unless forced.
func Write(st *store.Store, cfg *config.Config, input WriteInput) (*WriteOutput, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.NewInvalidRequest("prompt is required")
	}
	sp, err := ValidateSourcePath(st, input.Path)
	if err != nil {
		return nil, err
	}

	g, err := gate(st, cfg, sp.Rel, input.Prompt, input.GateOptions)
	if err != nil {
		return nil, err
	}
	if !g.Proceed {
		return &WriteOutput{
			Path:        sp.Rel,
			Decision:    &g.Decision,
			Message:     escalateMessage,
			Instruction: escalateInstruction,
		}, nil
	}

	_, statErr := os.Stat(sp.Abs)
	created := stderrors.Is(statErr, os.ErrNotExist)
	var before string
	if !created {
		if before, err = readSource(sp); err != nil {
			return nil, err
		}
	}

	if err := st.EnsureRoot(); err != nil {
		return nil, err
	}
	if err := writeSource(sp, input.Content); err != nil {
		return nil, err
	}

	saved, err := st.Save(sp.Rel, store.SaveInput{
		Prompt:    input.Prompt,
		User:      input.User,
		Model:     input.Model,
		Overrides: g.Overrides,
	})
	if err != nil {
		return nil, undoWrite(sp, before, !created, err)
	}

	view := ViewOf(saved, now())
	return &WriteOutput{
		Path:     sp.Rel,
		Applied:  true,
		Created:  created,
		Intent:   &view,
		Decision: &g.Decision,
		Warning:  g.Warning,
		Message:  fmt.Sprintf("File written successfully: %s", sp.Rel),
	}, nil
}
