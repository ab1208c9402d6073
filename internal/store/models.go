package store

import "encoding/json"

// Status is the lifecycle state of an issue. done and wontfix are terminal:
// a terminal issue never blocks anything, no matter what edges survive.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusWontfix    Status = "wontfix"
)

// Terminal reports whether the status ends the issue's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusWontfix
}

// Priority is the caller-assigned importance tier.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Kind classifies what sort of work an issue represents.
type Kind string

const (
	KindBug     Kind = "bug"
	KindFeature Kind = "feature"
	KindTask    Kind = "task"
	KindEpic    Kind = "epic"
)

// ValidateStatus rejects status values outside the known set before any
// mutation is attempted.
func ValidateStatus(s string) error {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusDone, StatusWontfix:
		return nil
	}
	return InvalidValue("status", s, "open, in-progress, done, wontfix")
}

// ValidatePriority rejects priority values outside the known set.
func ValidatePriority(p string) error {
	switch Priority(p) {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	}
	return InvalidValue("priority", p, "critical, high, medium, low")
}

// ValidateKind rejects kind values outside the known set.
func ValidateKind(k string) error {
	switch Kind(k) {
	case KindBug, KindFeature, KindTask, KindEpic:
		return nil
	}
	return InvalidValue("kind", k, "bug, feature, task, epic")
}

// Issue is the unit of work. Timestamps stay in their stored text form
// (2006-01-02T15:04:05Z, UTC); export and import round-trip them verbatim
// and a malformed value degrades to age zero instead of failing.
type Issue struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Kind        Kind     `json:"kind"`
	Context     string   `json:"context"`
	Files       []string `json:"files"`
	Tags        []string `json:"tags"`
	Acceptance  string   `json:"acceptance"`
	ParentID    *int64   `json:"parent_id"`
	CloseReason string   `json:"close_reason"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// Note is an append-only annotation on one issue.
type Note struct {
	ID        int64  `json:"id"`
	IssueID   int64  `json:"issue_id"`
	Content   string `json:"content"`
	Agent     string `json:"agent"`
	CreatedAt string `json:"created_at"`
}

// Dependency is one directed edge: the blocker must reach a terminal
// status before the blocked issue is considered unblocked.
type Dependency struct {
	BlockerID int64
	BlockedID int64
}

// UrgencyComponent is one named contribution to an urgency score.
// It marshals as a [name, value] pair.
type UrgencyComponent struct {
	Name  string
	Value float64
}

// MarshalJSON emits the component as a two-element array.
func (c UrgencyComponent) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Name, c.Value})
}

// UnmarshalJSON accepts the [name, value] pair form.
func (c *UrgencyComponent) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &c.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &c.Value)
}

// UrgencyBreakdown is the per-component decomposition of a score.
type UrgencyBreakdown struct {
	Components []UrgencyComponent `json:"components"`
}

// IssueDetail is the full caller-facing view of one issue: the issue
// itself plus its score and graph-derived facts.
type IssueDetail struct {
	Issue
	Urgency          float64           `json:"urgency"`
	BlockedBy        []int64           `json:"blocked_by"`
	Blocks           []int64           `json:"blocks"`
	IsBlocked        bool              `json:"is_blocked"`
	Notes            []Note            `json:"notes"`
	UrgencyBreakdown *UrgencyBreakdown `json:"urgency_breakdown,omitempty"`
	Children         []IssueSummary    `json:"children,omitempty"`
}

// IssueSummary is the list-row view: enough to rank and pick work
// without the notes or the score breakdown.
type IssueSummary struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Status     Status   `json:"status"`
	Priority   Priority `json:"priority"`
	Kind       Kind     `json:"kind"`
	Urgency    float64  `json:"urgency"`
	IsBlocked  bool     `json:"is_blocked"`
	BlockedBy  []int64  `json:"blocked_by"`
	Tags       []string `json:"tags"`
	Files      []string `json:"files"`
	Acceptance string   `json:"acceptance"`
}

// UnblockedIssue names an issue that just transitioned from blocked to
// ready because its last live blocker reached a terminal status.
type UnblockedIssue struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// BatchInput is one entry of a bulk-create request. blocked_by entries
// may be plain issue IDs or "@N" references to other entries in the
// same batch, including entries that appear later.
type BatchInput struct {
	Title      string   `json:"title"`
	Priority   string   `json:"priority"`
	Kind       string   `json:"kind"`
	Context    string   `json:"context"`
	Files      []string `json:"files"`
	Tags       []string `json:"tags"`
	Acceptance string   `json:"acceptance"`
	ParentID   *int64   `json:"parent_id"`
	BlockedBy  []any    `json:"blocked_by"`
}

// GraphNode is one issue in the rendered dependency graph.
type GraphNode struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Status    Status  `json:"status"`
	Urgency   float64 `json:"urgency"`
	IsBlocked bool    `json:"is_blocked"`
}

// GraphEdge is one rendered dependency edge, blocker to blocked.
type GraphEdge struct {
	From int64  `json:"from"`
	To   int64  `json:"to"`
	Type string `json:"type"`
}

// GraphOutput is the full graph view handed to the formatting layer.
type GraphOutput struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Stats is the project health summary.
type Stats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	ByKind     map[string]int64 `json:"by_kind"`
	Blocked    int64            `json:"blocked"`
	Ready      int64            `json:"ready"`
	AvgUrgency float64          `json:"avg_urgency"`
	OldestOpen *OldestOpen      `json:"oldest_open"`
}

// OldestOpen identifies the open issue that has waited longest.
type OldestOpen struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	DaysOld int64  `json:"days_old"`
}

// ExportRecord is one issue with everything it owns, as written to an
// export stream and read back by import.
type ExportRecord struct {
	Issue     Issue   `json:"issue"`
	Notes     []Note  `json:"notes"`
	BlockedBy []int64 `json:"blocked_by"`
}
