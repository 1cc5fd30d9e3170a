package ops

import (
	"strings"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/conflict"
	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// AnalyzeInput contains parameters for the Analyze operation.
type AnalyzeInput struct {
	Path       string // required
	Prompt     string // required
	WindowDays int    // default: config window_days
}

// AnalyzeOutput contains the result of the Analyze operation.
type AnalyzeOutput struct {
	Path             string             `json:"path"`
	RequiresAnalysis bool               `json:"requires_analysis"`
	Safe             bool               `json:"safe"`
	Message          string             `json:"message,omitempty"`
	AnalysisRequest  string             `json:"analysis_request,omitempty"`
	SystemPrompt     string             `json:"system_prompt,omitempty"`
	RecentIntents    []conflict.Summary `json:"recent_intents"`
	CurrentPrompt    string             `json:"current_prompt"`
	Instruction      string             `json:"instruction,omitempty"`
}

// Analyze prepares a conflict review brief for a planned change.
func Analyze(st *store.Store, cfg *config.Config, input AnalyzeInput) (*AnalyzeOutput, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, errors.NewInvalidRequest("prompt is required")
	}
	rel, err := st.Rel(input.Path)
	if err != nil {
		return nil, err
	}
	intents, err := st.History(rel)
	if err != nil {
		return nil, err
	}

	opts, err := conflictOptions(cfg, input.WindowDays, now())
	if err != nil {
		return nil, err
	}
	req := conflict.Prepare(prompt, intents, opts)
	out := &AnalyzeOutput{
		Path:          rel,
		RecentIntents: req.RecentIntents,
		CurrentPrompt: req.CurrentPrompt,
	}
	if !req.RequiresLLMAnalysis {
		out.Safe = true
		out.Message = req.AnalysisPrompt
		return out, nil
	}

	out.RequiresAnalysis = true
	out.AnalysisRequest = req.AnalysisPrompt
	out.SystemPrompt = conflict.SystemPrompt()
	out.Instruction = "Please analyze the above conflict analysis request and determine if there are any conflicts. " +
		"Respond with your assessment including severity (HIGH/MEDIUM/LOW/NONE) and reasoning."
	return out, nil
}
