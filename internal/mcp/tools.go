package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bickolasliu/intention-mcp/internal/ops"
)

// Shared parameter descriptions.
const (
	pathDesc      = "File path relative to the workspace root (absolute paths inside the workspace are accepted)"
	promptDesc    = "Why this change is being made. Be specific: it is what future readers and conflict checks see."
	userDesc      = "Who is making the change. Defaults to the configured user, git identity, or OS account."
	modelDesc     = "AI model identifier. Defaults to ANTHROPIC_MODEL, OPENAI_MODEL or AI_MODEL."
	windowDesc    = "Days of history to consider for conflicts. Defaults to the configured window (7)."
	forceDesc     = "Apply even if conflicts are detected; the conflicting intents are recorded as overridden."
	skipCheckDesc = "Set after reviewing a conflict analysis that found no real conflict. Does not bypass a blocking conflict."
)

var writeToolDef = mcp.NewTool("intention_write",
	mcp.WithDescription("Write a file and record the intent behind the change. "+
		"Conflicting recent intents hold the write for review or block it."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("path", mcp.Required(), mcp.Description(pathDesc)),
	mcp.WithString("content", mcp.Required(), mcp.Description("Complete new content of the file")),
	mcp.WithString("prompt", mcp.Required(), mcp.Description(promptDesc)),
	mcp.WithString("user", mcp.Description(userDesc)),
	mcp.WithString("model", mcp.Description(modelDesc)),
	mcp.WithBoolean("force", mcp.Description(forceDesc)),
	mcp.WithBoolean("skip_conflict_check", mcp.Description(skipCheckDesc)),
	mcp.WithNumber("window_days", mcp.Description(windowDesc), mcp.Min(1)),
)

var editToolDef = mcp.NewTool("intention_edit",
	mcp.WithDescription("Replace exact text in an existing file and record the intent behind the change. "+
		"Returns a patch of what changed."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("path", mcp.Required(), mcp.Description(pathDesc)),
	mcp.WithString("old_text", mcp.Required(), mcp.Description("Exact text to replace")),
	mcp.WithString("new_text", mcp.Required(), mcp.Description("Replacement text")),
	mcp.WithBoolean("replace_all", mcp.Description("Replace every occurrence instead of the first")),
	mcp.WithString("prompt", mcp.Required(), mcp.Description(promptDesc)),
	mcp.WithString("user", mcp.Description(userDesc)),
	mcp.WithString("model", mcp.Description(modelDesc)),
	mcp.WithBoolean("force", mcp.Description(forceDesc)),
	mcp.WithBoolean("skip_conflict_check", mcp.Description(skipCheckDesc)),
	mcp.WithNumber("window_days", mcp.Description(windowDesc), mcp.Min(1)),
)

var checkToolDef = mcp.NewTool("intention_check",
	mcp.WithDescription("Check a file's recent intents for conflicts with a planned change. "+
		"Without a prompt, lists the intents inside the conflict window."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("path", mcp.Required(), mcp.Description(pathDesc)),
	mcp.WithString("prompt", mcp.Description("The planned change to check")),
	mcp.WithNumber("window_days", mcp.Description(windowDesc), mcp.Min(1)),
)

var historyToolDef = mcp.NewTool("intention_history",
	mcp.WithDescription("Show the recorded intents for a file, newest first."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("path", mcp.Required(), mcp.Description(pathDesc)),
	mcp.WithNumber("limit", mcp.Description("Maximum intents to return"),
		mcp.DefaultNumber(ops.DefaultHistoryLimit), mcp.Min(1), mcp.Max(ops.MaxHistoryLimit)),
)

var searchToolDef = mcp.NewTool("intention_search",
	mcp.WithDescription("Search intent prompts across every tracked file (case-insensitive substring)."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for in prompts")),
	mcp.WithNumber("limit", mcp.Description("Maximum results to return"),
		mcp.DefaultNumber(ops.DefaultSearchLimit), mcp.Min(1), mcp.Max(ops.MaxSearchLimit)),
)

var logToolDef = mcp.NewTool("intention_log",
	mcp.WithDescription("Record an intent for a change made outside the intention tools."),
	mcp.WithString("path", mcp.Required(), mcp.Description(pathDesc)),
	mcp.WithString("prompt", mcp.Required(), mcp.Description(promptDesc)),
	mcp.WithString("user", mcp.Description(userDesc)),
	mcp.WithString("model", mcp.Description(modelDesc)),
	mcp.WithArray("overrides", mcp.Description("Ids of earlier intents on this file that this change supersedes"),
		mcp.WithStringItems()),
)

var explainToolDef = mcp.NewTool("intention_explain",
	mcp.WithDescription("Explain a file's evolution from its intent history: themes, timeline, contributors and recommendations."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("path", mcp.Required(), mcp.Description(pathDesc)),
)

var analyzeToolDef = mcp.NewTool("intention_analyze",
	mcp.WithDescription("Prepare a conflict review brief comparing a planned change with the file's recent intents."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("path", mcp.Required(), mcp.Description(pathDesc)),
	mcp.WithString("prompt", mcp.Required(), mcp.Description("The planned change")),
	mcp.WithNumber("window_days", mcp.Description(windowDesc), mcp.Min(1)),
)

var filesToolDef = mcp.NewTool("intention_files",
	mcp.WithDescription("List every file with recorded intents and its latest change."),
	mcp.WithReadOnlyHintAnnotation(true),
)
