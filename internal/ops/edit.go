package ops

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/conflict"
	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// EditInput contains parameters for the Edit operation.
type EditInput struct {
	Path       string // required, must exist
	OldText    string // required, exact text to replace
	NewText    string
	ReplaceAll bool   // default: first occurrence only
	Prompt     string // required
	User       string // resolved by the caller
	Model      string // resolved by the caller
	GateOptions
}

// EditOutput contains the result of the Edit operation.
type EditOutput struct {
	Path         string             `json:"path"`
	Applied      bool               `json:"applied"`
	Replacements int                `json:"replacements,omitempty"`
	Patch        string             `json:"patch,omitempty"`
	Intent       *IntentView        `json:"intent,omitempty"`
	Decision     *conflict.Decision `json:"decision,omitempty"`
	Warning      string             `json:"warning,omitempty"`
	Message      string             `json:"message"`
	Instruction  string             `json:"instruction,omitempty"`
}

// Edit substitutes exact text in an existing source file and records the
// intent behind it. A missing file or absent text fails before the decision
// policy runs, and neither the file nor its history is touched.
func Edit(st *store.Store, cfg *config.Config, input EditInput) (*EditOutput, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.NewInvalidRequest("prompt is required")
	}
	if input.OldText == "" {
		return nil, errors.NewInvalidRequest("old_text is required")
	}
	sp, err := ValidateSourcePath(st, input.Path)
	if err != nil {
		return nil, err
	}

	before, err := readSource(sp)
	if err != nil {
		return nil, err
	}
	count := strings.Count(before, input.OldText)
	if count == 0 {
		return nil, errors.NewNoMatch(sp.Rel)
	}

	var after string
	if input.ReplaceAll {
		after = strings.ReplaceAll(before, input.OldText, input.NewText)
	} else {
		after = strings.Replace(before, input.OldText, input.NewText, 1)
		count = 1
	}

	g, err := gate(st, cfg, sp.Rel, input.Prompt, input.GateOptions)
	if err != nil {
		return nil, err
	}
	if !g.Proceed {
		return &EditOutput{
			Path:        sp.Rel,
			Decision:    &g.Decision,
			Message:     escalateMessage,
			Instruction: escalateInstruction,
		}, nil
	}

	if err := st.EnsureRoot(); err != nil {
		return nil, err
	}
	if err := writeSource(sp, after); err != nil {
		return nil, err
	}

	saved, err := st.Save(sp.Rel, store.SaveInput{
		Prompt:    input.Prompt,
		User:      input.User,
		Model:     input.Model,
		Overrides: g.Overrides,
	})
	if err != nil {
		return nil, undoWrite(sp, before, true, err)
	}

	view := ViewOf(saved, now())
	return &EditOutput{
		Path:         sp.Rel,
		Applied:      true,
		Replacements: count,
		Patch:        patchText(before, after),
		Intent:       &view,
		Decision:     &g.Decision,
		Warning:      g.Warning,
		Message:      fmt.Sprintf("File edited successfully: %s", sp.Rel),
	}, nil
}

// patchText renders the change as a unified-style patch.
func patchText(before, after string) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(before, after)
	return dmp.PatchToText(patches)
}
