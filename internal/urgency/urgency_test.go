package urgency

import (
	"math"
	"testing"
	"time"

	"github.com/joeaguilar/itr/internal/store"
)

// almostEqual absorbs the sliver of age that accrues between building a
// "fresh" timestamp and scoring it.
func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

// ago renders a timestamp n days in the past in the stored format.
func ago(days float64) string {
	return time.Now().UTC().Add(-time.Duration(days * 86400 * float64(time.Second))).Format("2006-01-02T15:04:05Z")
}

func componentMap(b store.UrgencyBreakdown) map[string]float64 {
	m := make(map[string]float64, len(b.Components))
	for _, c := range b.Components {
		m[c.Name] = c.Value
	}
	return m
}

func TestScore_FreshMediumTask(t *testing.T) {
	iss := store.Issue{
		Priority:  store.PriorityMedium,
		Kind:      store.KindTask,
		Status:    store.StatusOpen,
		CreatedAt: ago(0),
	}
	score, breakdown := Score(iss, Facts{}, Defaults())

	// priority.medium only; kind.task and age are zero.
	if !almostEqual(score, 3.0) {
		t.Errorf("score = %v, want 3.0", score)
	}
	names := make([]string, len(breakdown.Components))
	for i, c := range breakdown.Components {
		names[i] = c.Name
	}
	want := []string{"priority.medium", "kind.task", "age"}
	if len(names) != len(want) {
		t.Fatalf("components %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("components %v, want %v", names, want)
		}
	}
}

func TestScore_AllComponentsFire(t *testing.T) {
	iss := store.Issue{
		Priority:   store.PriorityCritical,
		Kind:       store.KindBug,
		Status:     store.StatusInProgress,
		Acceptance: "it works",
		CreatedAt:  ago(20),
	}
	facts := Facts{Blocking: true, Blocked: true, Notes: 12}
	score, breakdown := Score(iss, facts, Defaults())

	// 10 + 2 + 8 - 10 + 2 (age saturated) + 4 + 1 + 0.5 (notes saturated)
	if !almostEqual(score, 17.5) {
		t.Errorf("score = %v, want 17.5", score)
	}

	m := componentMap(breakdown)
	for name, val := range map[string]float64{
		"priority.critical": 10,
		"kind.bug":          2,
		"blocking":          8,
		"blocked":           -10,
		"age":               2,
		"in_progress":       4,
		"has_acceptance":    1,
		"notes":             0.5,
	} {
		if got, ok := m[name]; !ok || !almostEqual(got, val) {
			t.Errorf("component %s = %v (present=%v), want %v", name, got, ok, val)
		}
	}
}

func TestScore_AgeRamp(t *testing.T) {
	base := store.Issue{Priority: store.PriorityLow, Kind: store.KindTask, Status: store.StatusOpen}
	cfg := Defaults()

	base.CreatedAt = ago(5)
	score, _ := Score(base, Facts{}, cfg)
	if !almostEqual(math.Round((score-1.0)*100)/100, 1.0) {
		t.Errorf("age at 5 days should contribute ~1.0, total %v", score)
	}

	base.CreatedAt = ago(100)
	score, _ = Score(base, Facts{}, cfg)
	if !almostEqual(score, 3.0) {
		t.Errorf("age must saturate at weight 2.0, total %v", score)
	}
}

func TestScore_NotesOnlyWhenPositive(t *testing.T) {
	iss := store.Issue{Priority: store.PriorityLow, Kind: store.KindTask, Status: store.StatusOpen, CreatedAt: ago(0)}

	_, breakdown := Score(iss, Facts{Notes: 0}, Defaults())
	if _, ok := componentMap(breakdown)["notes"]; ok {
		t.Error("notes component must not appear at zero")
	}

	score, breakdown := Score(iss, Facts{Notes: 3}, Defaults())
	m := componentMap(breakdown)
	if !almostEqual(m["notes"], 0.25) {
		t.Errorf("notes at 3 = %v, want 0.25", m["notes"])
	}
	if !almostEqual(score, 1.25) {
		t.Errorf("score = %v, want 1.25", score)
	}
}

func TestDaysSince_Malformed(t *testing.T) {
	if d := DaysSince("not-a-date"); d != 0 {
		t.Errorf("malformed timestamp should score 0 days, got %v", d)
	}
}

type fakeSource map[string]string

func (f fakeSource) ConfigGet(key string) (string, bool, error) {
	v, ok := f[key]
	return v, ok, nil
}

func TestLoad_AppliesOverrides(t *testing.T) {
	cfg := Load(fakeSource{
		"urgency.blocking":          "12",
		"urgency.priority.critical": "20",
		"urgency.age":               "garbage",
	})

	if cfg.Blocking != 12 {
		t.Errorf("Blocking = %v, want 12", cfg.Blocking)
	}
	if cfg.PriorityCritical != 20 {
		t.Errorf("PriorityCritical = %v, want 20", cfg.PriorityCritical)
	}
	// Unparseable values keep the default.
	if cfg.Age != 2 {
		t.Errorf("Age = %v, want default 2", cfg.Age)
	}
	// Untouched weights stay at defaults.
	if cfg.Blocked != -10 {
		t.Errorf("Blocked = %v, want -10", cfg.Blocked)
	}
}

func TestDefaultsMapAndIsKey(t *testing.T) {
	entries := DefaultsMap()
	if len(entries) != 14 {
		t.Fatalf("expected 14 weights, got %d", len(entries))
	}
	if entries[0].Key != "urgency.priority.critical" || entries[0].Value != 10 {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	for _, e := range entries {
		if !IsKey(e.Key) {
			t.Errorf("IsKey(%q) = false", e.Key)
		}
	}
	if IsKey("db.path") {
		t.Error("IsKey must reject non-urgency keys")
	}
}
