package conflict

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bickolasliu/intention-mcp/internal/intent"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

var seq int

// mk builds an intent recorded ago before testNow.
func mk(prompt, user string, ago time.Duration) intent.Intent {
	seq++
	return intent.Intent{
		ID:        fmt.Sprintf("intent-%d", seq),
		Timestamp: intent.FormatTimestamp(testNow.Add(-ago)),
		User:      user,
		Prompt:    prompt,
		Model:     intent.UnknownModel,
		Overrides: []string{},
	}
}

const day = 24 * time.Hour

func TestDetect_EmptyHistory(t *testing.T) {
	info := Detect("Add caching layer", nil, Options{Now: testNow})

	if info.HasConflicts {
		t.Error("HasConflicts = true, want false")
	}
	if info.ConflictType != TypeNone || info.Severity != SeverityNone {
		t.Errorf("type/severity = %s/%s, want none/none", info.ConflictType, info.Severity)
	}
	if info.Recommendation != "No previous intents found. Safe to proceed." {
		t.Errorf("Recommendation = %q", info.Recommendation)
	}
	if info.ConflictingIntents == nil || len(info.ConflictingIntents) != 0 {
		t.Errorf("ConflictingIntents = %#v, want empty slice", info.ConflictingIntents)
	}
}

func TestDetect_WindowExclusion(t *testing.T) {
	existing := []intent.Intent{mk("Remove authentication entirely", "bob", 10*day)}

	info := Detect("Add authentication to the API", existing, Options{Now: testNow})
	if info.HasConflicts || info.ConflictType != TypeNone {
		t.Errorf("Detect() = %+v, want no conflict outside window", info)
	}
	if info.Recommendation != "No recent intents. Safe to proceed." {
		t.Errorf("Recommendation = %q", info.Recommendation)
	}

	// A wider window brings it back in
	info = Detect("Add authentication to the API", existing, Options{Now: testNow, WindowDays: 30})
	if info.ConflictType != TypeSemantic {
		t.Errorf("ConflictType = %s, want semantic with 30-day window", info.ConflictType)
	}
}

func TestDetect_OppositeActions(t *testing.T) {
	existing := []intent.Intent{mk("Add authentication to the API endpoint", "alice", 2*time.Hour)}

	info := Detect("Remove authentication from the API", existing, Options{Now: testNow})
	if !info.HasConflicts {
		t.Fatal("HasConflicts = false, want true")
	}
	if info.ConflictType != TypeSemantic {
		t.Errorf("ConflictType = %s, want semantic", info.ConflictType)
	}
	if info.Severity != SeverityHigh {
		t.Errorf("Severity = %s, want high", info.Severity)
	}
	if len(info.ConflictingIntents) != 1 {
		t.Errorf("ConflictingIntents len = %d, want 1", len(info.ConflictingIntents))
	}
	if !strings.HasPrefix(info.Recommendation, "HIGH CONFLICT: Found 1 conflicting intent(s).") {
		t.Errorf("Recommendation = %q", info.Recommendation)
	}
}

func TestDetect_KeywordOverlap(t *testing.T) {
	existing := []intent.Intent{mk("Implement user authentication with JWT tokens", "alice", 3*day)}

	info := Detect("Refactor user authentication to use OAuth", existing, Options{Now: testNow})
	if info.ConflictType != TypeSemantic {
		t.Fatalf("ConflictType = %s, want semantic", info.ConflictType)
	}
	// Single older conflict from one user
	if info.Severity != SeverityLow {
		t.Errorf("Severity = %s, want low", info.Severity)
	}
}

func TestDetect_MediumAcrossUsers(t *testing.T) {
	existing := []intent.Intent{
		mk("Implement user authentication with JWT tokens", "alice", 3*day),
		mk("Harden user authentication session handling", "bob", 2*day),
	}

	info := Detect("Refactor user authentication to use OAuth", existing, Options{Now: testNow})
	if info.Severity != SeverityMedium {
		t.Errorf("Severity = %s, want medium", info.Severity)
	}
	if info.Recommendation != Recommendation(SeverityMedium, 2) {
		t.Errorf("Recommendation = %q", info.Recommendation)
	}
}

func TestDetect_HighByCount(t *testing.T) {
	existing := []intent.Intent{
		mk("Add rate limiting", "alice", 3*day),
		mk("Add request logging", "alice", 3*day),
		mk("Add metrics export", "alice", 4*day),
	}

	info := Detect("Remove middleware stack", existing, Options{Now: testNow})
	if info.Severity != SeverityHigh {
		t.Errorf("Severity = %s, want high", info.Severity)
	}
	if len(info.ConflictingIntents) != 3 {
		t.Errorf("ConflictingIntents len = %d, want 3", len(info.ConflictingIntents))
	}
}

func TestDetect_RecentWithoutSemantic(t *testing.T) {
	existing := []intent.Intent{mk("Update README formatting", "carol", 2*day)}

	info := Detect("Add retry logic to client", existing, Options{Now: testNow})
	if !info.HasConflicts {
		t.Error("HasConflicts = false, want true")
	}
	if info.ConflictType != TypeRecent || info.Severity != SeverityLow {
		t.Errorf("type/severity = %s/%s, want recent/low", info.ConflictType, info.Severity)
	}
	if len(info.ConflictingIntents) != 1 || info.ConflictingIntents[0].ID != existing[0].ID {
		t.Errorf("ConflictingIntents = %+v, want the windowed intent", info.ConflictingIntents)
	}
	if info.Recommendation != "Recent changes detected. Review before proceeding." {
		t.Errorf("Recommendation = %q", info.Recommendation)
	}
}

func TestDetect_ListsIntentOnce(t *testing.T) {
	// Matches both the opposite-pair and keyword-overlap checks
	existing := []intent.Intent{mk("Add user session module", "alice", 3*day)}

	info := Detect("Remove user session module", existing, Options{Now: testNow})
	if len(info.ConflictingIntents) != 1 {
		t.Errorf("ConflictingIntents len = %d, want 1", len(info.ConflictingIntents))
	}
}

func TestDetect_MalformedTimestampIgnored(t *testing.T) {
	bad := mk("Remove authentication", "alice", time.Hour)
	bad.Timestamp = "not a timestamp"

	info := Detect("Add authentication", []intent.Intent{bad}, Options{Now: testNow})
	if info.HasConflicts {
		t.Errorf("Detect() = %+v, want malformed intent outside window", info)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	existing := []intent.Intent{
		mk("Enable verbose logging", "alice", 5*time.Hour),
		mk("Tune cache size", "bob", 2*day),
	}
	opts := Options{Now: testNow}

	first := Detect("Disable verbose logging", existing, opts)
	second := Detect("Disable verbose logging", existing, opts)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Detect() not deterministic (-first +second):\n%s", diff)
	}
}

func TestOpposed(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Enable caching", "Turn off caching", true},
		{"Turning on dark mode", "Deactivate dark mode", true},
		{"Increase pool size", "Reduce pool size", true},
		{"Make the field public", "Hide the field", true},
		{"Switch to asynchronous IO", "Keep it sync", true},
		{"Make config immutable", "Make config mutable", true},
		{"Dropping legacy flag", "Created legacy flag", true},
		{"Add tests", "Address review comments", false},
		{"Add tests", "Add more tests", false},
		{"Readme update", "Refactor parser", false},
	}
	for _, tt := range tests {
		if got := Opposed(tt.a, tt.b); got != tt.want {
			t.Errorf("Opposed(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOpposingPair_Name(t *testing.T) {
	pair, ok := OpposingPair("Increase timeout", "Decrease timeout")
	if !ok || pair.Name != "increase/decrease" {
		t.Errorf("OpposingPair() = %q, %v", pair.Name, ok)
	}
}

func TestSeverity_Rank(t *testing.T) {
	if !(SeverityNone.Rank() < SeverityLow.Rank() && SeverityLow.Rank() < SeverityMedium.Rank() && SeverityMedium.Rank() < SeverityHigh.Rank()) {
		t.Error("severity ranks out of order")
	}
}
