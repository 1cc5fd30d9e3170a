package analysis

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bickolasliu/intention-mcp/internal/intent"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func at(prompt, user string, ts time.Time) intent.Intent {
	return intent.Intent{
		ID:        fmt.Sprintf("%s-%d", user, ts.Unix()),
		Timestamp: intent.FormatTimestamp(ts),
		User:      user,
		Prompt:    prompt,
		Model:     intent.UnknownModel,
		Overrides: []string{},
	}
}

func TestAnalyze_Empty(t *testing.T) {
	got := Analyze(nil, testNow)
	want := Analysis{
		Summary:         "No intents found for analysis.",
		Themes:          []string{},
		Timeline:        []TimelineEntry{},
		Contributors:    []Contributor{},
		Recommendations: []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Analyze() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_Themes(t *testing.T) {
	intents := []intent.Intent{
		at("fix bug", "alice", testNow.Add(-48*time.Hour)),
		at("add test", "alice", testNow.Add(-24*time.Hour)),
	}

	got := Analyze(intents, testNow)
	want := map[string]bool{intent.ThemeBugFixes: true, intent.ThemeTesting: true}
	for theme := range want {
		found := false
		for _, th := range got.Themes {
			if th == theme {
				found = true
			}
		}
		if !found {
			t.Errorf("Themes = %v, missing %q", got.Themes, theme)
		}
	}
}

func TestAnalyze_Full(t *testing.T) {
	intents := []intent.Intent{
		at("Fix bug in login form", "alice", time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)),
		at("Add test for login form", "bob", time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)),
		at("Fix crash on empty input", "alice", time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)),
	}

	got := Analyze(intents, testNow)
	want := Analysis{
		Summary: "This file has undergone 3 tracked changes from 2026-10-10 to 2026-10-14. " +
			"The primary focus areas have been: Bug Fixes, Feature Development, Testing. " +
			"The main contributor is alice with 2 changes.",
		Themes: []string{intent.ThemeBugFixes, intent.ThemeFeatures, intent.ThemeTesting},
		Timeline: []TimelineEntry{
			{Date: "2026-10-14", Prompt: "Fix crash on empty input", User: "alice"},
			{Date: "2026-10-12", Prompt: "Add test for login form", User: "bob"},
			{Date: "2026-10-10", Prompt: "Fix bug in login form", User: "alice"},
		},
		Contributors: []Contributor{
			{User: "alice", ContributionCount: 2, LastContribution: "2026-10-14"},
			{User: "bob", ContributionCount: 1, LastContribution: "2026-10-12"},
		},
		Recommendations: []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Analyze() mismatch (-want +got):\n%s", diff)
	}

	// Input order is preserved
	if intents[0].User != "alice" || intents[1].User != "bob" {
		t.Error("Analyze() reordered its input")
	}
}

func TestAnalyze_SingleChangeSummary(t *testing.T) {
	intents := []intent.Intent{at("Initial scaffolding", "dana", testNow.Add(-time.Hour))}

	got := Analyze(intents, testNow)
	want := "This file has undergone 1 tracked change from 2026-10-16 to 2026-10-16. The main contributor is dana with 1 change."
	if got.Summary != want {
		t.Errorf("Summary = %q, want %q", got.Summary, want)
	}
}

func TestAnalyze_Recommendations(t *testing.T) {
	users := []string{"alice", "bob", "carol", "dave"}
	var intents []intent.Intent
	for i := 0; i < 12; i++ {
		intents = append(intents, at("Tweak handler", users[i%len(users)], testNow.Add(-time.Duration(i+1)*time.Hour)))
	}

	got := Analyze(intents, testNow)
	want := []string{RecHighActivity, RecNoTesting, RecNoDocs, RecManyContribute}
	if diff := cmp.Diff(want, got.Recommendations); diff != "" {
		t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_TestingOutsideTopFive(t *testing.T) {
	// Testing matches once while five other themes match more often.
	var intents []intent.Intent
	for i := 0; i < 2; i++ {
		intents = append(intents, at("Fix and add refactor docs for auth", "alice", testNow.Add(-time.Duration(i+1)*time.Hour)))
	}
	intents = append(intents, at("Write unit test", "alice", testNow.Add(-5*time.Hour)))

	got := Analyze(intents, testNow)
	if slices.Contains(got.Themes, intent.ThemeTesting) {
		t.Fatalf("Themes = %v, want Testing outside top five", got.Themes)
	}
	if diff := cmp.Diff([]string{RecNoTesting}, got.Recommendations); diff != "" {
		t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_DocumentationOutsideTopFive(t *testing.T) {
	var intents []intent.Intent
	for i := 0; i < 2; i++ {
		intents = append(intents, at("Fix and add refactor test for auth", "alice", testNow.Add(-time.Duration(i+1)*time.Hour)))
	}
	intents = append(intents, at("Update docs", "alice", testNow.Add(-3*time.Hour)))
	for i := 0; i < 3; i++ {
		intents = append(intents, at("Tweak handler", "alice", testNow.Add(-time.Duration(i+4)*time.Hour)))
	}

	got := Analyze(intents, testNow)
	if slices.Contains(got.Themes, intent.ThemeDocumentation) {
		t.Fatalf("Themes = %v, want Documentation outside top five", got.Themes)
	}
	if diff := cmp.Diff([]string{RecNoDocs}, got.Recommendations); diff != "" {
		t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_TopFiveLimit(t *testing.T) {
	intents := []intent.Intent{
		at("Fix bug, add feature, refactor, test, document, secure auth, optimize", "alice", testNow.Add(-time.Hour)),
	}
	got := Analyze(intents, testNow)
	if len(got.Themes) != 5 {
		t.Errorf("Themes = %v, want 5", got.Themes)
	}
	// Equal counts keep table order
	if got.Themes[0] != intent.ThemeBugFixes || got.Themes[4] != intent.ThemeDocumentation {
		t.Errorf("Themes = %v, want table order", got.Themes)
	}
}

func TestAnalyze_TimelineLimitAndTruncation(t *testing.T) {
	var intents []intent.Intent
	for i := 0; i < 15; i++ {
		intents = append(intents, at(strings.Repeat("x", 150), "alice", testNow.Add(-time.Duration(i)*time.Hour)))
	}

	got := Analyze(intents, testNow)
	if len(got.Timeline) != 10 {
		t.Fatalf("Timeline len = %d, want 10", len(got.Timeline))
	}
	want := strings.Repeat("x", 100) + "..."
	if got.Timeline[0].Prompt != want {
		t.Errorf("Timeline[0].Prompt len = %d, want truncated to 100 + ...", len(got.Timeline[0].Prompt))
	}
}
