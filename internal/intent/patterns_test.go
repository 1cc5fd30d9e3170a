package intent

import (
	"testing"
)

func findPair(t *testing.T, name string) OppositePair {
	t.Helper()
	for _, p := range OppositePairs {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("pair %q not found", name)
	return OppositePair{}
}

func TestOppositePairs_Count(t *testing.T) {
	if len(OppositePairs) != 6 {
		t.Fatalf("len(OppositePairs) = %d, want 6", len(OppositePairs))
	}
}

func TestOppositePairs_Matching(t *testing.T) {
	tests := []struct {
		pair       string
		prompt     string
		wantFirst  bool
		wantSecond bool
	}{
		{"add/remove", "Add authentication to the API", true, false},
		{"add/remove", "Removed the legacy handler", false, true},
		{"add/remove", "Fix padding on the sidebar", false, false},
		{"enable/disable", "Turn on caching", true, false},
		{"enable/disable", "turning off the feature flag", false, true},
		{"increase/decrease", "Reduce the pool size", false, true},
		{"public/private", "Expose the config struct", true, false},
		{"public/private", "Make the helper private", false, true},
		{"synchronous/asynchronous", "Make the loader async", false, true},
		{"synchronous/asynchronous", "Keep the call sync", true, false},
		{"mutable/immutable", "Mark fields readonly", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.pair+"/"+tt.prompt, func(t *testing.T) {
			p := findPair(t, tt.pair)
			if got := p.First.MatchString(tt.prompt); got != tt.wantFirst {
				t.Errorf("First.MatchString() = %v, want %v", got, tt.wantFirst)
			}
			if got := p.Second.MatchString(tt.prompt); got != tt.wantSecond {
				t.Errorf("Second.MatchString() = %v, want %v", got, tt.wantSecond)
			}
		})
	}
}

func TestThemes_Table(t *testing.T) {
	if len(Themes) != 10 {
		t.Fatalf("len(Themes) = %d, want 10", len(Themes))
	}

	tests := []struct {
		prompt string
		theme  string
	}{
		{"fix bug in parser", ThemeBugFixes},
		{"add test for login", ThemeTesting},
		{"Implement new feature", ThemeFeatures},
		{"Refactored the module", ThemeRefactoring},
		{"Update README", ThemeDocumentation},
		{"Tighten auth checks", ThemeSecurity},
		{"Optimize the hot loop", ThemePerformance},
		{"Polish UI spacing", ThemeUI},
		{"New endpoint for users", ThemeAPI},
		{"Add migration for orders", ThemeDatabase},
	}
	byName := make(map[string]Theme, len(Themes))
	for _, th := range Themes {
		byName[th.Name] = th
	}
	for _, tt := range tests {
		th, ok := byName[tt.theme]
		if !ok {
			t.Fatalf("theme %q missing", tt.theme)
		}
		if !th.Pattern.MatchString(tt.prompt) {
			t.Errorf("theme %q did not match %q", tt.theme, tt.prompt)
		}
	}

	if byName[ThemeUI].Pattern.MatchString("build the queue") {
		t.Error("UI/UX theme should not match inside words")
	}
}
