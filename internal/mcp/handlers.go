package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/identity"
	"github.com/bickolasliu/intention-mcp/internal/ops"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store  *store.Store
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{store: st, cfg: cfg, logger: logger}
}

// Request types for each tool

// WriteRequest represents the arguments for intention_write.
type WriteRequest struct {
	Path              string `json:"path"`
	Content           string `json:"content"`
	Prompt            string `json:"prompt"`
	User              string `json:"user,omitempty"`
	Model             string `json:"model,omitempty"`
	Force             bool   `json:"force,omitempty"`
	SkipConflictCheck bool   `json:"skip_conflict_check,omitempty"`
	WindowDays        int    `json:"window_days,omitempty"`
}

// EditRequest represents the arguments for intention_edit.
type EditRequest struct {
	Path              string `json:"path"`
	OldText           string `json:"old_text"`
	NewText           string `json:"new_text"`
	ReplaceAll        bool   `json:"replace_all,omitempty"`
	Prompt            string `json:"prompt"`
	User              string `json:"user,omitempty"`
	Model             string `json:"model,omitempty"`
	Force             bool   `json:"force,omitempty"`
	SkipConflictCheck bool   `json:"skip_conflict_check,omitempty"`
	WindowDays        int    `json:"window_days,omitempty"`
}

// CheckRequest represents the arguments for intention_check.
type CheckRequest struct {
	Path       string `json:"path"`
	Prompt     string `json:"prompt,omitempty"`
	WindowDays int    `json:"window_days,omitempty"`
}

// HistoryRequest represents the arguments for intention_history.
type HistoryRequest struct {
	Path  string `json:"path"`
	Limit int    `json:"limit,omitempty"`
}

// SearchRequest represents the arguments for intention_search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// LogRequest represents the arguments for intention_log.
type LogRequest struct {
	Path      string   `json:"path"`
	Prompt    string   `json:"prompt"`
	User      string   `json:"user,omitempty"`
	Model     string   `json:"model,omitempty"`
	Overrides []string `json:"overrides,omitempty"`
}

// ExplainRequest represents the arguments for intention_explain.
type ExplainRequest struct {
	Path string `json:"path"`
}

// AnalyzeRequest represents the arguments for intention_analyze.
type AnalyzeRequest struct {
	Path       string `json:"path"`
	Prompt     string `json:"prompt"`
	WindowDays int    `json:"window_days,omitempty"`
}

// identify resolves the author of a change for one call.
func (h *Handlers) identify(ctx context.Context, user, model string) (string, string) {
	override := strings.TrimSpace(user)
	if override == "" {
		override = h.cfg.User
	}
	r := identity.New(override, h.store.Workspace())
	return r.User(ctx), r.Model(model)
}

// Handler implementations

// HandleWrite handles the intention_write tool call.
func (h *Handlers) HandleWrite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WriteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	user, model := h.identify(ctx, input.User, input.Model)
	result, err := ops.Write(h.store, h.cfg, ops.WriteInput{
		Path:    input.Path,
		Content: input.Content,
		Prompt:  input.Prompt,
		User:    user,
		Model:   model,
		GateOptions: ops.GateOptions{
			Force:             input.Force,
			SkipConflictCheck: input.SkipConflictCheck,
			WindowDays:        input.WindowDays,
		},
	})
	if err != nil {
		return h.fail("intention_write", err), nil
	}

	h.logger.Info("file written",
		zap.String("path", result.Path),
		zap.Bool("applied", result.Applied),
		zap.String("user", user))
	return successResult(result)
}

// HandleEdit handles the intention_edit tool call.
func (h *Handlers) HandleEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EditRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	user, model := h.identify(ctx, input.User, input.Model)
	result, err := ops.Edit(h.store, h.cfg, ops.EditInput{
		Path:       input.Path,
		OldText:    input.OldText,
		NewText:    input.NewText,
		ReplaceAll: input.ReplaceAll,
		Prompt:     input.Prompt,
		User:       user,
		Model:      model,
		GateOptions: ops.GateOptions{
			Force:             input.Force,
			SkipConflictCheck: input.SkipConflictCheck,
			WindowDays:        input.WindowDays,
		},
	})
	if err != nil {
		return h.fail("intention_edit", err), nil
	}

	h.logger.Info("file edited",
		zap.String("path", result.Path),
		zap.Bool("applied", result.Applied),
		zap.Int("replacements", result.Replacements),
		zap.String("user", user))
	return successResult(result)
}

// HandleCheck handles the intention_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Check(h.store, h.cfg, ops.CheckInput{
		Path:       input.Path,
		Prompt:     input.Prompt,
		WindowDays: input.WindowDays,
	})
	if err != nil {
		return h.fail("intention_check", err), nil
	}

	return successResult(result)
}

// HandleHistory handles the intention_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.History(h.store, ops.HistoryInput{
		Path:  input.Path,
		Limit: input.Limit,
	})
	if err != nil {
		return h.fail("intention_history", err), nil
	}

	return successResult(result)
}

// HandleSearch handles the intention_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.store, ops.SearchInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return h.fail("intention_search", err), nil
	}

	return successResult(result)
}

// HandleLog handles the intention_log tool call.
func (h *Handlers) HandleLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	user, model := h.identify(ctx, input.User, input.Model)
	result, err := ops.Log(h.store, ops.LogInput{
		Path:      input.Path,
		Prompt:    input.Prompt,
		User:      user,
		Model:     model,
		Overrides: input.Overrides,
	})
	if err != nil {
		return h.fail("intention_log", err), nil
	}

	h.logger.Info("intent logged", zap.String("path", result.Path), zap.String("user", user))
	return successResult(result)
}

// HandleExplain handles the intention_explain tool call.
func (h *Handlers) HandleExplain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExplainRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Explain(h.store, ops.ExplainInput{Path: input.Path})
	if err != nil {
		return h.fail("intention_explain", err), nil
	}

	return successResult(result)
}

// HandleAnalyze handles the intention_analyze tool call.
func (h *Handlers) HandleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnalyzeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Analyze(h.store, h.cfg, ops.AnalyzeInput{
		Path:       input.Path,
		Prompt:     input.Prompt,
		WindowDays: input.WindowDays,
	})
	if err != nil {
		return h.fail("intention_analyze", err), nil
	}

	return successResult(result)
}

// HandleFiles handles the intention_files tool call.
func (h *Handlers) HandleFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Files(ctx, h.store)
	if err != nil {
		return h.fail("intention_files", err), nil
	}

	return successResult(result)
}

// Result helpers

// fail logs a tool failure and converts it to an error result.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	e := errors.As(err)
	if e.Code == errors.ErrInternal {
		h.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	} else {
		h.logger.Debug("tool rejected", zap.String("tool", tool), zap.String("code", string(e.Code)), zap.String("message", e.Message))
	}
	return errorResult(err)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// INTERNAL errors keep their message but never their details.
func errorResult(err error) *mcp.CallToolResult {
	e := errors.As(err)

	errorObj := map[string]any{
		"code":    e.Code,
		"message": e.Message,
		"status":  e.Status,
	}
	if e.Code != errors.ErrInternal && e.Details != nil {
		errorObj["details"] = e.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
