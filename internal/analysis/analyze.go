// Package analysis summarizes how a file evolved from its intent history.
package analysis

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bickolasliu/intention-mcp/internal/intent"
)

const (
	maxThemes        = 5
	summaryThemes    = 3
	timelineLength   = 10
	timelinePrompt   = 100
	activityWindow   = 30 * 24 * time.Hour
	highActivity     = 10
	docsAfterChanges = 5
	manyContributors = 3
	dateLayout       = "2006-01-02"
)

// Recommendation texts.
const (
	RecHighActivity   = "This file has high recent activity. Consider reviewing for stability before major changes."
	RecNoTesting      = "No testing-related intents found. Consider adding tests for this file."
	RecNoDocs         = "Multiple changes without documentation updates. Consider updating relevant docs."
	RecManyContribute = "Multiple contributors have worked on this file. Ensure consistent coding style."
)

// TimelineEntry is one recent change.
type TimelineEntry struct {
	Date   string `json:"date"`
	Prompt string `json:"prompt"`
	User   string `json:"user"`
}

// Contributor aggregates one user's changes.
type Contributor struct {
	User              string `json:"user"`
	ContributionCount int    `json:"contribution_count"`
	LastContribution  string `json:"last_contribution"`
}

// Analysis describes a file's intent history.
type Analysis struct {
	Summary         string          `json:"summary"`
	Themes          []string        `json:"themes"`
	Timeline        []TimelineEntry `json:"timeline"`
	Contributors    []Contributor   `json:"contributors"`
	Recommendations []string        `json:"recommendations"`
}

// Analyze aggregates intents into themes, a timeline, contributors, a summary
// sentence and recommendations. The input slice is not modified.
func Analyze(intents []intent.Intent, now time.Time) Analysis {
	if len(intents) == 0 {
		return Analysis{
			Summary:         "No intents found for analysis.",
			Themes:          []string{},
			Timeline:        []TimelineEntry{},
			Contributors:    []Contributor{},
			Recommendations: []string{},
		}
	}

	counts := themeCounts(intents)
	themes := topThemes(counts)
	contributors := contributorsOf(intents)

	return Analysis{
		Summary:         summary(intents, themes, contributors),
		Themes:          themes,
		Timeline:        timeline(intents),
		Contributors:    contributors,
		Recommendations: recommendations(intents, themes, len(contributors), now),
	}
}

// themeCounts counts, per theme, the intents whose prompt matches it.
func themeCounts(intents []intent.Intent) map[string]int {
	counts := make(map[string]int)
	for _, it := range intents {
		for _, theme := range intent.Themes {
			if theme.Pattern.MatchString(it.Prompt) {
				counts[theme.Name]++
			}
		}
	}
	return counts
}

// topThemes orders matched themes by count, ties in table order.
func topThemes(counts map[string]int) []string {
	themes := make([]string, 0, len(counts))
	for _, theme := range intent.Themes {
		if counts[theme.Name] > 0 {
			themes = append(themes, theme.Name)
		}
	}
	slices.SortStableFunc(themes, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

func newestFirst(intents []intent.Intent) []intent.Intent {
	sorted := slices.Clone(intents)
	slices.SortStableFunc(sorted, func(a, b intent.Intent) int {
		switch {
		case intent.NewestFirst(a, b):
			return -1
		case intent.NewestFirst(b, a):
			return 1
		}
		return 0
	})
	return sorted
}

func timeline(intents []intent.Intent) []TimelineEntry {
	sorted := newestFirst(intents)
	if len(sorted) > timelineLength {
		sorted = sorted[:timelineLength]
	}
	entries := make([]TimelineEntry, 0, len(sorted))
	for _, it := range sorted {
		entries = append(entries, TimelineEntry{
			Date:   dateOf(it),
			Prompt: intent.Truncate(it.Prompt, timelinePrompt),
			User:   it.User,
		})
	}
	return entries
}

func dateOf(it intent.Intent) string {
	t, ok := it.Time()
	if !ok {
		return "unknown"
	}
	return t.UTC().Format(dateLayout)
}

// contributorsOf counts changes per user, most active first. Equal counts
// keep first-seen order.
func contributorsOf(intents []intent.Intent) []Contributor {
	type agg struct {
		count int
		last  time.Time
	}
	var order []string
	byUser := make(map[string]*agg)
	for _, it := range intents {
		a, ok := byUser[it.User]
		if !ok {
			a = &agg{}
			byUser[it.User] = a
			order = append(order, it.User)
		}
		a.count++
		if t, ok := it.Time(); ok && t.After(a.last) {
			a.last = t
		}
	}

	contributors := make([]Contributor, 0, len(order))
	for _, user := range order {
		a := byUser[user]
		last := "unknown"
		if !a.last.IsZero() {
			last = a.last.UTC().Format(dateLayout)
		}
		contributors = append(contributors, Contributor{
			User:              user,
			ContributionCount: a.count,
			LastContribution:  last,
		})
	}
	slices.SortStableFunc(contributors, func(a, b Contributor) int {
		return b.ContributionCount - a.ContributionCount
	})
	return contributors
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func summary(intents []intent.Intent, themes []string, contributors []Contributor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This file has undergone %s", plural(len(intents), "tracked change"))

	var first, last time.Time
	for _, it := range intents {
		t, ok := it.Time()
		if !ok {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if last.IsZero() || t.After(last) {
			last = t
		}
	}
	if !first.IsZero() {
		fmt.Fprintf(&b, " from %s to %s", first.UTC().Format(dateLayout), last.UTC().Format(dateLayout))
	}

	if len(themes) > 0 {
		top := themes
		if len(top) > summaryThemes {
			top = top[:summaryThemes]
		}
		fmt.Fprintf(&b, ". The primary focus areas have been: %s", strings.Join(top, ", "))
	}

	if len(contributors) > 0 {
		c := contributors[0]
		fmt.Fprintf(&b, ". The main contributor is %s with %s", c.User, plural(c.ContributionCount, "change"))
	}

	b.WriteString(".")
	return b.String()
}

// recommendations checks themes as ranked, so a theme matched too rarely to
// make the top list counts as missing.
func recommendations(intents []intent.Intent, themes []string, contributors int, now time.Time) []string {
	recs := []string{}

	recent := 0
	for _, it := range intents {
		if it.Age(now) < activityWindow {
			recent++
		}
	}
	if recent > highActivity {
		recs = append(recs, RecHighActivity)
	}
	if !slices.Contains(themes, intent.ThemeTesting) {
		recs = append(recs, RecNoTesting)
	}
	if !slices.Contains(themes, intent.ThemeDocumentation) && len(intents) > docsAfterChanges {
		recs = append(recs, RecNoDocs)
	}
	if contributors > manyContributors {
		recs = append(recs, RecManyContribute)
	}
	return recs
}
