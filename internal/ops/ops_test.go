package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bickolasliu/intention-mcp/internal/config"
	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/intent"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

func newTestEnv(t *testing.T) (*store.Store, *config.Config) {
	t.Helper()
	ws := t.TempDir()
	st, err := store.New(ws, filepath.Join(ws, ".intents"), nil)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	return st, config.DefaultConfig()
}

// shiftClock moves the operations' clock by d for the rest of the test.
func shiftClock(t *testing.T, d time.Duration) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Now().Add(d) }
	t.Cleanup(func() { now = prev })
}

func logIntent(t *testing.T, st *store.Store, path, prompt, user string) *LogOutput {
	t.Helper()
	out, err := Log(st, LogInput{Path: path, Prompt: prompt, User: user})
	if err != nil {
		t.Fatalf("Log(%q) error = %v", prompt, err)
	}
	return out
}

func TestViewOf(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	v := ViewOf(intent.Intent{
		ID:        "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Timestamp: intent.FormatTimestamp(at.Add(-3 * time.Hour)),
		User:      "alice",
		Prompt:    "Add login",
	}, at)

	if v.RelativeTime != "3 hours ago" {
		t.Errorf("RelativeTime = %q", v.RelativeTime)
	}
	if v.Model != intent.UnknownModel {
		t.Errorf("Model = %q, want %q", v.Model, intent.UnknownModel)
	}
	if v.Overrides == nil {
		t.Error("Overrides = nil, want empty slice")
	}
}

func TestFormatConflictList(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	got := FormatConflictList([]intent.Intent{
		{Timestamp: intent.FormatTimestamp(at.Add(-2 * time.Hour)), User: "alice", Prompt: "Add login"},
		{Timestamp: intent.FormatTimestamp(at.Add(-50 * time.Hour)), User: "bob", Prompt: "Remove login"},
	}, at)

	want := "Recent intents for this file:\n\n" +
		"1. 2 hours ago by alice\n   Add login\n\n" +
		"2. 2 days ago by bob\n   Remove login\n\n"
	if got != want {
		t.Errorf("FormatConflictList() =\n%q\nwant\n%q", got, want)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{{0, 10}, {-1, 10}, {5, 5}, {500, 100}}
	for _, tt := range tests {
		if got := clampLimit(tt.in, 10, 100); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLog(t *testing.T) {
	st, _ := newTestEnv(t)

	out, err := Log(st, LogInput{Path: "./src/auth.js", Prompt: "Add authentication to login page", User: "alice", Model: "claude"})
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if out.Path != "src/auth.js" {
		t.Errorf("Path = %q, want %q", out.Path, "src/auth.js")
	}
	if out.Intent.User != "alice" || out.Intent.Model != "claude" {
		t.Errorf("Intent = %+v", out.Intent)
	}
	if out.Message != "Intent logged successfully for: src/auth.js" {
		t.Errorf("Message = %q", out.Message)
	}

	if _, err := Log(st, LogInput{Path: "a.go", Prompt: " "}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Log() without prompt error = %v, want INVALID_REQUEST", err)
	}
	if _, err := Log(st, LogInput{Path: "../escape.go", Prompt: "x"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Log() outside workspace error = %v, want INVALID_REQUEST", err)
	}
}

func TestHistory(t *testing.T) {
	st, _ := newTestEnv(t)

	out, err := History(st, HistoryInput{Path: "main.go"})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(out.Intents) != 0 || out.Message != "No intent history found for this file" {
		t.Errorf("History() empty = %+v", out)
	}

	for _, p := range []string{"first", "second", "third"} {
		logIntent(t, st, "main.go", p, "alice")
		time.Sleep(2 * time.Millisecond)
	}

	out, err = History(st, HistoryInput{Path: "main.go", Limit: 2})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if out.TotalCount != 3 || len(out.Intents) != 2 {
		t.Fatalf("History() total=%d len=%d, want 3/2", out.TotalCount, len(out.Intents))
	}
	if out.Intents[0].Prompt != "third" || out.Intents[1].Prompt != "second" {
		t.Errorf("History() order = %q, %q, want newest first", out.Intents[0].Prompt, out.Intents[1].Prompt)
	}
	if out.Message != "Found 3 intent(s) for this file (showing 2)" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestSearch(t *testing.T) {
	st, _ := newTestEnv(t)
	logIntent(t, st, "src/auth.js", "Add authentication to login page", "alice")

	out, err := Search(t.Context(), st, SearchInput{Query: "authentication", Limit: 10})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].File != "src/auth.js" {
		t.Fatalf("Search() = %+v, want one hit in src/auth.js", out.Results)
	}
	if out.Message != `Found 1 intent(s) matching "authentication"` {
		t.Errorf("Message = %q", out.Message)
	}

	out, err = Search(t.Context(), st, SearchInput{Query: "nonexistent"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out.Results) != 0 || out.Message != "No intents found matching your query" {
		t.Errorf("Search() miss = %+v", out)
	}

	if _, err := Search(t.Context(), st, SearchInput{Query: "  "}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Search() empty query error = %v, want INVALID_REQUEST", err)
	}
	if _, err := Search(t.Context(), st, SearchInput{Query: strings.Repeat("q", MaxQueryLength+1)}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Search() long query error = %v, want INVALID_REQUEST", err)
	}
}

func TestCheck(t *testing.T) {
	st, cfg := newTestEnv(t)

	out, err := Check(st, cfg, CheckInput{Path: "api.go"})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !out.Safe || out.Message != "No previous intents found for this file" {
		t.Errorf("Check() empty = %+v", out)
	}

	logIntent(t, st, "api.go", "Add authentication to the API endpoint", "alice")

	t.Run("without prompt lists recent", func(t *testing.T) {
		out, err := Check(st, cfg, CheckInput{Path: "api.go"})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if out.Safe {
			t.Error("Safe = true, want false with recent intents")
		}
		if len(out.RecentIntents) != 1 || !strings.Contains(out.Listing, "by alice") {
			t.Errorf("Check() = %+v", out)
		}
	})

	t.Run("opposite prompt blocks", func(t *testing.T) {
		out, err := Check(st, cfg, CheckInput{Path: "api.go", Prompt: "Remove authentication from the API"})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if out.Safe || out.Decision == nil || out.Decision.Action != "block" {
			t.Errorf("Check() = %+v, want block", out)
		}
		if !strings.HasPrefix(out.Message, "HIGH CONFLICT") {
			t.Errorf("Message = %q", out.Message)
		}
	})

	t.Run("outside window", func(t *testing.T) {
		shiftClock(t, 10*24*time.Hour)
		out, err := Check(st, cfg, CheckInput{Path: "api.go"})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !out.Safe || out.Message != "No recent intents found within the conflict window" {
			t.Errorf("Check() = %+v", out)
		}

		// A wider per-call window reaches back further
		out, err = Check(st, cfg, CheckInput{Path: "api.go", WindowDays: 30})
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if out.Safe {
			t.Error("Safe = true with 30-day window, want false")
		}
	})
}

func TestAnalyze(t *testing.T) {
	st, cfg := newTestEnv(t)

	if _, err := Analyze(st, cfg, AnalyzeInput{Path: "a.go"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Analyze() without prompt error = %v, want INVALID_REQUEST", err)
	}

	out, err := Analyze(st, cfg, AnalyzeInput{Path: "a.go", Prompt: "Add caching"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if out.RequiresAnalysis || !out.Safe {
		t.Errorf("Analyze() empty = %+v", out)
	}
	if out.Message != "No previous intents found. This is the first tracked change to this file." {
		t.Errorf("Message = %q", out.Message)
	}

	logIntent(t, st, "a.go", "Add caching layer", "bob")
	out, err = Analyze(st, cfg, AnalyzeInput{Path: "a.go", Prompt: "Remove caching layer"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !out.RequiresAnalysis {
		t.Fatal("RequiresAnalysis = false, want true")
	}
	if !strings.HasPrefix(out.AnalysisRequest, "CONFLICT ANALYSIS REQUEST") || out.SystemPrompt == "" {
		t.Errorf("Analyze() = %+v", out)
	}
	if len(out.RecentIntents) != 1 || !out.RecentIntents[0].IsRecent {
		t.Errorf("RecentIntents = %+v", out.RecentIntents)
	}
}

func TestExplain(t *testing.T) {
	st, _ := newTestEnv(t)

	out, err := Explain(st, ExplainInput{Path: "lib.go"})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if out.Message != "No intent history found for this file" || out.TotalIntents != 0 {
		t.Errorf("Explain() empty = %+v", out)
	}

	logIntent(t, st, "lib.go", "fix bug", "alice")
	logIntent(t, st, "lib.go", "add test", "alice")

	out, err = Explain(st, ExplainInput{Path: "lib.go"})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if out.TotalIntents != 2 || !strings.HasPrefix(out.Explanation, "This file has undergone 2 tracked changes") {
		t.Errorf("Explain() = %+v", out)
	}
	if len(out.Contributors) != 1 || out.Contributors[0].ContributionCount != 2 {
		t.Errorf("Contributors = %+v", out.Contributors)
	}
}

func TestFiles(t *testing.T) {
	st, _ := newTestEnv(t)

	out, err := Files(t.Context(), st)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if out.Total != 0 || out.Files == nil {
		t.Errorf("Files() empty = %+v", out)
	}

	logIntent(t, st, "b.go", "Create b", "alice")
	logIntent(t, st, "a/x.go", "Create x", "bob")
	time.Sleep(2 * time.Millisecond)
	logIntent(t, st, "a/x.go", "Tune x", "carol")

	out, err = Files(t.Context(), st)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if out.Total != 2 {
		t.Fatalf("Total = %d, want 2", out.Total)
	}
	first := out.Files[0]
	if first.Path != "a/x.go" || first.IntentCount != 2 || first.LastUser != "carol" || first.LastPrompt != "Tune x" {
		t.Errorf("Files()[0] = %+v", first)
	}
}

func TestValidateSourcePath(t *testing.T) {
	st, _ := newTestEnv(t)

	sp, err := ValidateSourcePath(st, "pkg/file.go")
	if err != nil {
		t.Fatalf("ValidateSourcePath() error = %v", err)
	}
	if sp.Abs != filepath.Join(st.Workspace(), "pkg", "file.go") {
		t.Errorf("Abs = %q", sp.Abs)
	}

	if _, err := ValidateSourcePath(st, ".intents/pkg/file.go.json"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("storage path error = %v, want INVALID_REQUEST", err)
	}

	if err := os.Mkdir(filepath.Join(st.Workspace(), "dir"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateSourcePath(st, "dir"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("directory error = %v, want INVALID_REQUEST", err)
	}

	target := filepath.Join(t.TempDir(), "outside.txt")
	if err := os.WriteFile(target, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(st.Workspace(), "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := ValidateSourcePath(st, "link.txt"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("symlink error = %v, want INVALID_REQUEST", err)
	}
}
