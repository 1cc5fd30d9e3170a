package intent

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// UnknownModel is stored when no model identifier was supplied.
const UnknownModel = "unknown"

// UnknownUser is stored when no identity could be resolved.
const UnknownUser = "unknown"

// TimestampLayout is the ISO-8601 form written to intent files
// (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Intent is one recorded change rationale for a source file.
type Intent struct {
	// ID is a ULID assigned by the store at append time
	ID string `json:"id"`

	// Timestamp is the creation instant as an ISO-8601 string
	Timestamp string `json:"timestamp"`

	// User identifies the actor (human or resolved system identity)
	User string `json:"user"`

	// Prompt describes the requested change; every heuristic operates on it
	Prompt string `json:"prompt"`

	// Model identifies the AI agent involved, UnknownModel if none
	Model string `json:"model"`

	// Overrides lists ids from the same file's history this intent supersedes
	Overrides []string `json:"overrides"`
}

// File is the on-disk document holding one source file's intents.
type File struct {
	Intents []Intent `json:"intents"`
}

// Time parses Timestamp. The boolean is false for malformed timestamps.
func (i Intent) Time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, i.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Age returns how long before now the intent was recorded.
// Malformed timestamps are treated as infinitely old.
func (i Intent) Age(now time.Time) time.Duration {
	t, ok := i.Time()
	if !ok {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(t)
}

// RelativeTime describes the intent's age relative to now ("3 hours ago").
func (i Intent) RelativeTime(now time.Time) string {
	t, ok := i.Time()
	if !ok {
		return "at an unknown time"
	}
	if d := now.Sub(t); d >= 0 && d < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatTimestamp renders t in the stored timestamp form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Normalized fills defaults that older files may omit.
func (i Intent) Normalized() Intent {
	if strings.TrimSpace(i.Model) == "" {
		i.Model = UnknownModel
	}
	if i.Overrides == nil {
		i.Overrides = []string{}
	}
	return i
}

// ValidID reports whether id looks like an intent identifier.
// New intents use ULIDs; files written by earlier tooling carry UUIDs.
func ValidID(id string) bool {
	if _, err := ulid.ParseStrict(id); err == nil {
		return true
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// NewestFirst reports whether a sorts before b when ordering newest first.
// Malformed timestamps sort last.
func NewestFirst(a, b Intent) bool {
	ta, okA := a.Time()
	tb, okB := b.Time()
	if okA != okB {
		return okA
	}
	return ta.After(tb)
}
