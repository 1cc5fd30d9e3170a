package intent

import (
	"regexp"
	"strings"
)

// OppositePair is a pair of action vocabularies that contradict each other.
// A prompt matching First conflicts with one matching Second and vice versa.
type OppositePair struct {
	Name   string
	First  *regexp.Regexp
	Second *regexp.Regexp
}

// Theme is a named topic recognized in intent prompts.
type Theme struct {
	Name    string
	Pattern *regexp.Regexp
}

// Theme names referenced by the history analyzer.
const (
	ThemeBugFixes      = "Bug Fixes"
	ThemeFeatures      = "Feature Development"
	ThemeRefactoring   = "Refactoring"
	ThemeTesting       = "Testing"
	ThemeDocumentation = "Documentation"
	ThemeSecurity      = "Security"
	ThemePerformance   = "Performance"
	ThemeUI            = "UI/UX"
	ThemeAPI           = "API Development"
	ThemeDatabase      = "Database"
)

// words compiles a case-insensitive alternation anchored on word boundaries.
// Entries may be regex fragments (e.g. `turn(?:s|ed|ing)? on`).
func words(forms ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(forms, "|") + `)\b`)
}

// prefixes compiles a case-insensitive alternation anchored at word start only,
// so inflected forms ("fixes", "documented") match.
func prefixes(stems ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(stems, "|") + `)`)
}

// OppositePairs is the opposite-action table used by conflict detection.
var OppositePairs = []OppositePair{
	{
		Name: "add/remove",
		First: words(
			"add", "adds", "added", "adding",
			"create", "creates", "created", "creating",
			"implement", "implements", "implemented", "implementing",
			"include", "includes", "included", "including",
		),
		Second: words(
			"remove", "removes", "removed", "removing",
			"delete", "deletes", "deleted", "deleting",
			"exclude", "excludes", "excluded", "excluding",
			"drop", "drops", "dropped", "dropping",
		),
	},
	{
		Name: "enable/disable",
		First: words(
			"enable", "enables", "enabled", "enabling",
			"activate", "activates", "activated", "activating",
			`turn(?:s|ed|ing)? on`,
		),
		Second: words(
			"disable", "disables", "disabled", "disabling",
			"deactivate", "deactivates", "deactivated", "deactivating",
			`turn(?:s|ed|ing)? off`,
		),
	},
	{
		Name: "increase/decrease",
		First: words(
			"increase", "increases", "increased", "increasing",
			"expand", "expands", "expanded", "expanding",
			"grow", "grows", "grew", "grown", "growing",
		),
		Second: words(
			"decrease", "decreases", "decreased", "decreasing",
			"reduce", "reduces", "reduced", "reducing",
			"shrink", "shrinks", "shrank", "shrunk", "shrinking",
		),
	},
	{
		Name: "public/private",
		First: words(
			"public",
			"expose", "exposes", "exposed", "exposing",
			"open", "opens", "opened", "opening",
		),
		Second: words(
			"private",
			"hide", "hides", "hid", "hidden", "hiding",
			"restrict", "restricts", "restricted", "restricting",
		),
	},
	{
		Name:   "synchronous/asynchronous",
		First:  words("synchronous", "synchronously", "sync"),
		Second: words("asynchronous", "asynchronously", "async", "promise", "promises", "await"),
	},
	{
		Name:   "mutable/immutable",
		First:  words("mutable", "var", "let"),
		Second: words("immutable", "const", "readonly"),
	},
}

// StopWords are discarded before keyword-overlap comparison.
var StopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "from": true,
}

// MinKeywordLength is the shortest token kept for keyword overlap.
const MinKeywordLength = 4

// Themes is the topic table used by history analysis, in tie-break order.
var Themes = []Theme{
	{Name: ThemeBugFixes, Pattern: prefixes(`bug\s*fix`, "fix", "repair", "patch")},
	{Name: ThemeFeatures, Pattern: prefixes("feature", "implement", "add", "create")},
	{Name: ThemeRefactoring, Pattern: prefixes("refactor", "reorgani[sz]", "restructur")},
	{Name: ThemeTesting, Pattern: prefixes("test", "spec")},
	{Name: ThemeDocumentation, Pattern: prefixes("document", "docs", "readme")},
	{Name: ThemeSecurity, Pattern: prefixes("security", "auth", "permission")},
	{Name: ThemePerformance, Pattern: prefixes("performance", "optimi[sz]", "speed")},
	{Name: ThemeUI, Pattern: regexp.MustCompile(`(?i)\b(?:ui|ux)\b|\b(?:interface|style)`)},
	{Name: ThemeAPI, Pattern: prefixes("api", "endpoint", "route")},
	{Name: ThemeDatabase, Pattern: prefixes("database", "quer(?:y|ies)", "migration")},
}
