// Package urgency scores issues so agents can rank work without
// reading every one. Weights come from built-in defaults overridden by
// the config table, so a project can tune what "urgent" means.
package urgency

import (
	"strconv"
	"time"

	"github.com/joeaguilar/itr/internal/store"
)

// Config holds the weight of each scoring component.
type Config struct {
	PriorityCritical float64
	PriorityHigh     float64
	PriorityMedium   float64
	PriorityLow      float64
	Blocking         float64
	Blocked          float64
	Age              float64
	HasAcceptance    float64
	KindBug          float64
	KindFeature      float64
	KindTask         float64
	KindEpic         float64
	InProgress       float64
	NotesCount       float64
}

// Defaults returns the built-in weights.
func Defaults() Config {
	return Config{
		PriorityCritical: 10.0,
		PriorityHigh:     6.0,
		PriorityMedium:   3.0,
		PriorityLow:      1.0,
		Blocking:         8.0,
		Blocked:          -10.0,
		Age:              2.0,
		HasAcceptance:    1.0,
		KindBug:          2.0,
		KindFeature:      0.0,
		KindTask:         0.0,
		KindEpic:         -2.0,
		InProgress:       4.0,
		NotesCount:       0.5,
	}
}

// Source supplies stored weight overrides, typically the store's config
// table.
type Source interface {
	ConfigGet(key string) (string, bool, error)
}

// Load returns the defaults with any stored overrides applied. A value
// that fails to parse as a float keeps the default silently; scoring
// must never fail because someone fat-fingered a config value.
func Load(src Source) Config {
	cfg := Defaults()
	for _, b := range bindings(&cfg) {
		val, ok, err := src.ConfigGet(b.key)
		if err != nil || !ok {
			continue
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*b.target = f
		}
	}
	return cfg
}

// Entry is one named weight, used by the config command for listing.
type Entry struct {
	Key   string
	Value float64
}

// DefaultsMap returns the default weights keyed by config name, in the
// canonical listing order.
func DefaultsMap() []Entry {
	d := Defaults()
	bs := bindings(&d)
	entries := make([]Entry, len(bs))
	for i, b := range bs {
		entries[i] = Entry{Key: b.key, Value: *b.target}
	}
	return entries
}

// IsKey reports whether key names one of the urgency weights.
func IsKey(key string) bool {
	var c Config
	for _, b := range bindings(&c) {
		if b.key == key {
			return true
		}
	}
	return false
}

type binding struct {
	key    string
	target *float64
}

// bindings ties config keys to struct fields. The slice order is the
// canonical order for listing and loading.
func bindings(c *Config) []binding {
	return []binding{
		{"urgency.priority.critical", &c.PriorityCritical},
		{"urgency.priority.high", &c.PriorityHigh},
		{"urgency.priority.medium", &c.PriorityMedium},
		{"urgency.priority.low", &c.PriorityLow},
		{"urgency.blocking", &c.Blocking},
		{"urgency.blocked", &c.Blocked},
		{"urgency.age", &c.Age},
		{"urgency.has_acceptance", &c.HasAcceptance},
		{"urgency.kind.bug", &c.KindBug},
		{"urgency.kind.feature", &c.KindFeature},
		{"urgency.kind.task", &c.KindTask},
		{"urgency.kind.epic", &c.KindEpic},
		{"urgency.in_progress", &c.InProgress},
		{"urgency.notes_count", &c.NotesCount},
	}
}

// Facts carries the score inputs that live outside the issue row: its
// place in the dependency graph and its note count.
type Facts struct {
	Blocking bool
	Blocked  bool
	Notes    int64
}

// Score computes the urgency of an issue and the per-component
// breakdown. Priority, kind and age always appear in the breakdown,
// even at zero weight; conditional components appear only when they
// fire, and notes only when the value is positive.
func Score(iss store.Issue, facts Facts, cfg Config) (float64, store.UrgencyBreakdown) {
	var score float64
	components := []store.UrgencyComponent{}
	push := func(name string, value float64) {
		components = append(components, store.UrgencyComponent{Name: name, Value: value})
	}

	var priorityVal float64
	switch iss.Priority {
	case store.PriorityCritical:
		priorityVal = cfg.PriorityCritical
	case store.PriorityHigh:
		priorityVal = cfg.PriorityHigh
	case store.PriorityMedium:
		priorityVal = cfg.PriorityMedium
	case store.PriorityLow:
		priorityVal = cfg.PriorityLow
	}
	score += priorityVal
	push("priority."+string(iss.Priority), priorityVal)

	var kindVal float64
	switch iss.Kind {
	case store.KindBug:
		kindVal = cfg.KindBug
	case store.KindFeature:
		kindVal = cfg.KindFeature
	case store.KindTask:
		kindVal = cfg.KindTask
	case store.KindEpic:
		kindVal = cfg.KindEpic
	}
	score += kindVal
	push("kind."+string(iss.Kind), kindVal)

	if facts.Blocking {
		score += cfg.Blocking
		push("blocking", cfg.Blocking)
	}
	if facts.Blocked {
		score += cfg.Blocked
		push("blocked", cfg.Blocked)
	}

	// Age ramps linearly over the first ten days, then saturates.
	ageFactor := DaysSince(iss.CreatedAt) / 10.0
	if ageFactor > 1.0 {
		ageFactor = 1.0
	}
	if ageFactor < 0.0 {
		ageFactor = 0.0
	}
	ageVal := cfg.Age * ageFactor
	score += ageVal
	push("age", ageVal)

	if iss.Status == store.StatusInProgress {
		score += cfg.InProgress
		push("in_progress", cfg.InProgress)
	}
	if iss.Acceptance != "" {
		score += cfg.HasAcceptance
		push("has_acceptance", cfg.HasAcceptance)
	}

	notesFactor := float64(facts.Notes) / 6.0
	if notesFactor > 1.0 {
		notesFactor = 1.0
	}
	notesVal := cfg.NotesCount * notesFactor
	score += notesVal
	if notesVal > 0.0 {
		push("notes", notesVal)
	}

	return score, store.UrgencyBreakdown{Components: components}
}

// DaysSince returns fractional days elapsed since a stored timestamp.
// Malformed timestamps count as zero days old rather than erroring.
func DaysSince(isoDate string) float64 {
	t, err := time.Parse("2006-01-02T15:04:05Z", isoDate)
	if err != nil {
		return 0
	}
	return time.Since(t).Seconds() / 86400.0
}

// WholeDaysSince is DaysSince truncated to whole days, for the stats
// oldest-open readout.
func WholeDaysSince(isoDate string) int64 {
	return int64(DaysSince(isoDate))
}
