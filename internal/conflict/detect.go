// Package conflict estimates whether a new change intent clashes with the
// intents recently recorded for the same file.
//
// Detection is heuristic: fixed opposite-action vocabularies and keyword
// overlap. Every function here is pure; the current time is an input.
package conflict

import (
	"fmt"
	"time"

	"github.com/bickolasliu/intention-mcp/internal/intent"
)

// DefaultWindowDays is the lookback window used when Options leaves it unset.
const DefaultWindowDays = 7

// VeryRecent marks intents young enough to raise severity.
const VeryRecent = 24 * time.Hour

// minKeywordOverlap is the number of shared keywords that flags two prompts
// as touching the same area.
const minKeywordOverlap = 2

// Type classifies a detection result.
type Type string

const (
	TypeNone     Type = "none"
	TypeRecent   Type = "recent"
	TypeSemantic Type = "semantic"
)

// Severity grades a detection result.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities from none (0) to high (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Info is the result of Detect.
type Info struct {
	HasConflicts       bool            `json:"has_conflicts"`
	ConflictingIntents []intent.Intent `json:"conflicting_intents"`
	ConflictType       Type            `json:"conflict_type"`
	Severity           Severity        `json:"severity"`
	Recommendation     string          `json:"recommendation"`
}

// ConflictingIDs returns the ids of the conflicting intents in order.
func (i Info) ConflictingIDs() []string {
	ids := make([]string, 0, len(i.ConflictingIntents))
	for _, it := range i.ConflictingIntents {
		ids = append(ids, it.ID)
	}
	return ids
}

// Options tunes detection. Zero values select the defaults.
type Options struct {
	// WindowDays bounds how far back intents are considered. Zero or less
	// selects the 7-day default, so an empty window cannot be requested;
	// callers that take a window from users reject negative values.
	WindowDays int

	// Now is the reference instant. Default time.Now().
	Now time.Time
}

func (o Options) withDefaults() Options {
	if o.WindowDays <= 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Window is the lookback duration.
func (o Options) Window() time.Duration {
	return time.Duration(o.withDefaults().WindowDays) * 24 * time.Hour
}

// Windowed returns the intents younger than the window, in input order.
// Intents with malformed timestamps are never windowed.
func Windowed(existing []intent.Intent, opts Options) []intent.Intent {
	opts = opts.withDefaults()
	window := opts.Window()
	recent := make([]intent.Intent, 0, len(existing))
	for _, it := range existing {
		if _, ok := it.Time(); !ok {
			continue
		}
		if it.Age(opts.Now) < window {
			recent = append(recent, it)
		}
	}
	return recent
}

// Detect compares newPrompt against the windowed intents.
func Detect(newPrompt string, existing []intent.Intent, opts Options) Info {
	opts = opts.withDefaults()

	if len(existing) == 0 {
		return noConflict("No previous intents found. Safe to proceed.")
	}

	recent := Windowed(existing, opts)
	if len(recent) == 0 {
		return noConflict("No recent intents. Safe to proceed.")
	}

	if conflicts := semanticConflicts(newPrompt, recent); len(conflicts) > 0 {
		sev := severity(conflicts, opts.Now)
		return Info{
			HasConflicts:       true,
			ConflictingIntents: conflicts,
			ConflictType:       TypeSemantic,
			Severity:           sev,
			Recommendation:     Recommendation(sev, len(conflicts)),
		}
	}

	return Info{
		HasConflicts:       true,
		ConflictingIntents: recent,
		ConflictType:       TypeRecent,
		Severity:           SeverityLow,
		Recommendation:     "Recent changes detected. Review before proceeding.",
	}
}

func noConflict(rec string) Info {
	return Info{
		ConflictingIntents: []intent.Intent{},
		ConflictType:       TypeNone,
		Severity:           SeverityNone,
		Recommendation:     rec,
	}
}

// semanticConflicts lists each windowed intent that contradicts newPrompt or
// shares enough keywords with it. An intent appears at most once.
func semanticConflicts(newPrompt string, recent []intent.Intent) []intent.Intent {
	newKeywords := intent.Keywords(newPrompt)
	var conflicts []intent.Intent
	for _, it := range recent {
		if Opposed(newPrompt, it.Prompt) || intent.Overlap(newKeywords, intent.Keywords(it.Prompt)) >= minKeywordOverlap {
			conflicts = append(conflicts, it)
		}
	}
	return conflicts
}

// Opposed reports whether a and b fall on opposite sides of any opposite pair.
func Opposed(a, b string) bool {
	_, ok := OpposingPair(a, b)
	return ok
}

// OpposingPair returns the first opposite pair a and b contradict on.
func OpposingPair(a, b string) (intent.OppositePair, bool) {
	for _, pair := range intent.OppositePairs {
		aFirst, aSecond := pair.First.MatchString(a), pair.Second.MatchString(a)
		bFirst, bSecond := pair.First.MatchString(b), pair.Second.MatchString(b)
		if (aFirst && bSecond) || (aSecond && bFirst) {
			return pair, true
		}
	}
	return intent.OppositePair{}, false
}

func severity(conflicts []intent.Intent, now time.Time) Severity {
	if len(conflicts) > 2 {
		return SeverityHigh
	}
	users := make(map[string]bool)
	for _, it := range conflicts {
		if it.Age(now) < VeryRecent {
			return SeverityHigh
		}
		users[it.User] = true
	}
	if len(users) > 1 {
		return SeverityMedium
	}
	return SeverityLow
}

// Recommendation returns the guidance text for a severity.
func Recommendation(sev Severity, conflicts int) string {
	switch sev {
	case SeverityHigh:
		return fmt.Sprintf("HIGH CONFLICT: Found %d conflicting intent(s). Strongly recommend reviewing with team before proceeding.", conflicts)
	case SeverityMedium:
		return "MEDIUM CONFLICT: Multiple contributors have conflicting intents. Please review and consider coordinating changes."
	case SeverityLow:
		return "LOW CONFLICT: Potential overlap with previous changes. Review intent history before proceeding."
	default:
		return "No significant conflicts detected."
	}
}
