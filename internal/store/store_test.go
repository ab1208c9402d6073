package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreate is a shorthand for tests that just need issues to exist.
func mustCreate(t *testing.T, s *Store, in NewIssue) *Issue {
	t.Helper()
	iss, err := s.CreateIssue(in)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	return iss
}

func TestNew_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file not created")
	}
}

func TestNew_IdempotentOnExisting(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s1, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustCreate(t, s1, NewIssue{Title: "persisted"})
	s1.Close()

	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	iss, err := s2.GetIssue(1)
	if err != nil {
		t.Fatalf("GetIssue after reopen: %v", err)
	}
	if iss.Title != "persisted" {
		t.Errorf("expected title 'persisted', got %q", iss.Title)
	}
}

func TestNew_AppliesPragmas(t *testing.T) {
	s := testStore(t)

	var mode string
	if err := s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected journal_mode wal, got %s", mode)
	}
	var sync int64
	if err := s.db.QueryRow(`PRAGMA synchronous`).Scan(&sync); err != nil {
		t.Fatalf("synchronous: %v", err)
	}
	if sync != 1 {
		t.Errorf("expected synchronous NORMAL (1), got %d", sync)
	}
	var fk int64
	if err := s.db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys on, got %d", fk)
	}
}

// The schema command writes Schema verbatim; the text has to carry its
// own trailing newline.
func TestSchemaEndsWithNewline(t *testing.T) {
	if !strings.HasSuffix(Schema, "\n") {
		t.Fatal("Schema must end with a newline")
	}
}

func TestCreateIssue(t *testing.T) {
	s := testStore(t)

	parent := mustCreate(t, s, NewIssue{Title: "Epic", Kind: KindEpic})
	iss, err := s.CreateIssue(NewIssue{
		Title:      "Fix the flaky test",
		Priority:   PriorityHigh,
		Kind:       KindBug,
		Context:    "fails one run in ten",
		Files:      []string{"store.go"},
		Tags:       []string{"ci", "flaky"},
		Acceptance: "green ten times in a row",
		ParentID:   &parent.ID,
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if iss.ID != 2 {
		t.Errorf("expected ID 2, got %d", iss.ID)
	}
	if iss.Status != StatusOpen {
		t.Errorf("expected status open, got %s", iss.Status)
	}
	if iss.Priority != PriorityHigh {
		t.Errorf("expected priority high, got %s", iss.Priority)
	}
	if len(iss.Tags) != 2 || iss.Tags[0] != "ci" {
		t.Errorf("unexpected tags %v", iss.Tags)
	}
	if iss.ParentID == nil || *iss.ParentID != parent.ID {
		t.Errorf("expected parent %d, got %v", parent.ID, iss.ParentID)
	}
	if iss.CreatedAt == "" || iss.UpdatedAt == "" {
		t.Error("expected timestamps to be set")
	}
}

func TestCreateIssue_Defaults(t *testing.T) {
	s := testStore(t)

	iss := mustCreate(t, s, NewIssue{Title: "bare"})
	if iss.Priority != PriorityMedium {
		t.Errorf("expected default priority medium, got %s", iss.Priority)
	}
	if iss.Kind != KindTask {
		t.Errorf("expected default kind task, got %s", iss.Kind)
	}
	if iss.Files == nil || iss.Tags == nil {
		t.Error("expected empty slices, not nil")
	}
}

func TestCreateIssue_RejectsEmptyTitle(t *testing.T) {
	s := testStore(t)

	_, err := s.CreateIssue(NewIssue{})
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if serr.Code != CodeInvalidValue {
		t.Errorf("expected INVALID_VALUE, got %s", serr.Code)
	}
	if serr.Message != "Invalid value for title: ''. Valid: non-empty string" {
		t.Errorf("unexpected message %q", serr.Message)
	}
	issues, err := s.AllIssues()
	if err != nil {
		t.Fatalf("AllIssues: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %d", len(issues))
	}
}

func TestGetIssue_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetIssue(42)
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if serr.Code != CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", serr.Code)
	}
	if serr.Message != "Issue 42 not found" {
		t.Errorf("unexpected message %q", serr.Message)
	}
}

func TestSetStatus_RefreshesUpdatedAt(t *testing.T) {
	s := testStore(t)
	iss := mustCreate(t, s, NewIssue{Title: "x"})

	if err := s.SetStatus(iss.ID, StatusInProgress); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := s.GetIssue(iss.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("expected in-progress, got %s", got.Status)
	}
}

func TestCloseIssue_SetsStatusAndReason(t *testing.T) {
	s := testStore(t)
	iss := mustCreate(t, s, NewIssue{Title: "leaky goroutine"})

	if err := s.CloseIssue(iss.ID, StatusDone, "fixed upstream"); err != nil {
		t.Fatalf("CloseIssue: %v", err)
	}
	got, err := s.GetIssue(iss.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if got.Status != StatusDone {
		t.Errorf("expected done, got %s", got.Status)
	}
	if got.CloseReason != "fixed upstream" {
		t.Errorf("expected close reason, got %q", got.CloseReason)
	}

	if err := s.ReopenIssue(iss.ID); err != nil {
		t.Fatalf("ReopenIssue: %v", err)
	}
	got, err = s.GetIssue(iss.ID)
	if err != nil {
		t.Fatalf("GetIssue after reopen: %v", err)
	}
	if got.Status != StatusOpen {
		t.Errorf("expected open, got %s", got.Status)
	}
	if got.CloseReason != "" {
		t.Errorf("expected cleared close reason, got %q", got.CloseReason)
	}
}

func TestCloseIssue_MissingIssue(t *testing.T) {
	s := testStore(t)
	err := s.CloseIssue(99, StatusDone, "")
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSetField_MissingIssue(t *testing.T) {
	s := testStore(t)
	err := s.SetTitle(99, "nope")
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := ValidateStatus("in-progress"); err != nil {
		t.Errorf("in-progress should be valid: %v", err)
	}
	err := ValidateStatus("in_progress")
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeInvalidValue {
		t.Fatalf("expected INVALID_VALUE, got %v", err)
	}
	want := "Invalid value for status: 'in_progress'. Valid: open, in-progress, done, wontfix"
	if serr.Message != want {
		t.Errorf("message %q, want %q", serr.Message, want)
	}

	if err := ValidatePriority("urgent"); err == nil {
		t.Error("expected priority 'urgent' to be rejected")
	}
	if err := ValidateKind("chore"); err == nil {
		t.Error("expected kind 'chore' to be rejected")
	}
}

func TestListIssues_DefaultExcludesTerminalAndBlocked(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "open"})
	b := mustCreate(t, s, NewIssue{Title: "blocked"})
	c := mustCreate(t, s, NewIssue{Title: "done"})

	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := s.SetStatus(c.ID, StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	issues, err := s.ListIssues(ListFilter{})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != a.ID {
		t.Fatalf("expected only issue %d, got %v", a.ID, issues)
	}
}

func TestListIssues_IncludeBlocked(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "blocker"})
	b := mustCreate(t, s, NewIssue{Title: "blocked"})
	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	issues, err := s.ListIssues(ListFilter{IncludeBlocked: true})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}

	issues, err = s.ListIssues(ListFilter{BlockedOnly: true})
	if err != nil {
		t.Fatalf("ListIssues blocked: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != b.ID {
		t.Fatalf("expected only blocked issue %d, got %v", b.ID, issues)
	}
}

func TestListIssues_TagsAreANDed(t *testing.T) {
	s := testStore(t)
	mustCreate(t, s, NewIssue{Title: "one", Tags: []string{"api"}})
	both := mustCreate(t, s, NewIssue{Title: "two", Tags: []string{"api", "db"}})

	issues, err := s.ListIssues(ListFilter{Tags: []string{"api", "db"}})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != both.ID {
		t.Fatalf("expected only issue %d, got %v", both.ID, issues)
	}
}

func TestListIssues_StatusAndParentFilters(t *testing.T) {
	s := testStore(t)
	epic := mustCreate(t, s, NewIssue{Title: "epic", Kind: KindEpic})
	child := mustCreate(t, s, NewIssue{Title: "child", ParentID: &epic.ID})
	done := mustCreate(t, s, NewIssue{Title: "done child", ParentID: &epic.ID})
	if err := s.SetStatus(done.ID, StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	issues, err := s.ListIssues(ListFilter{ParentID: &epic.ID, All: true})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 children, got %d", len(issues))
	}

	issues, err = s.ListIssues(ListFilter{Statuses: []string{"done"}})
	if err != nil {
		t.Fatalf("ListIssues by status: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != done.ID {
		t.Fatalf("expected done child only, got %v", issues)
	}
	_ = child
}

func TestModifyTags(t *testing.T) {
	s := testStore(t)
	iss := mustCreate(t, s, NewIssue{Title: "x", Tags: []string{"a", "b"}})

	if err := s.ModifyTags(iss.ID, []string{"b", "c"}, []string{"a"}); err != nil {
		t.Fatalf("ModifyTags: %v", err)
	}
	got, _ := s.GetIssue(iss.ID)
	if len(got.Tags) != 2 || got.Tags[0] != "b" || got.Tags[1] != "c" {
		t.Errorf("expected [b c], got %v", got.Tags)
	}
}

func TestNotes(t *testing.T) {
	s := testStore(t)
	iss := mustCreate(t, s, NewIssue{Title: "x"})

	n, err := s.AddNote(iss.ID, "first finding", "agent-1")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if n.ID == 0 || n.IssueID != iss.ID || n.Agent != "agent-1" {
		t.Errorf("unexpected note %+v", n)
	}
	if _, err := s.AddNote(iss.ID, "second", ""); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	notes, err := s.Notes(iss.ID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(notes) != 2 || notes[0].Content != "first finding" {
		t.Errorf("unexpected notes %v", notes)
	}

	count, err := s.CountNotes(iss.ID)
	if err != nil || count != 2 {
		t.Errorf("expected 2 notes, got %d (%v)", count, err)
	}

	_, err = s.AddNote(99, "ghost", "")
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeNotFound {
		t.Errorf("expected NOT_FOUND for missing issue, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := testStore(t)

	_, ok, err := s.ConfigGet("urgency.blocking")
	if err != nil {
		t.Fatalf("ConfigGet: %v", err)
	}
	if ok {
		t.Fatal("expected no stored value on a fresh database")
	}

	if err := s.ConfigSet("urgency.blocking", "12"); err != nil {
		t.Fatalf("ConfigSet: %v", err)
	}
	v, ok, err := s.ConfigGet("urgency.blocking")
	if err != nil || !ok || v != "12" {
		t.Fatalf("expected stored 12, got %q ok=%v err=%v", v, ok, err)
	}

	entries, err := s.ConfigList()
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %v (%v)", entries, err)
	}

	if err := s.ConfigReset(); err != nil {
		t.Fatalf("ConfigReset: %v", err)
	}
	if _, ok, _ := s.ConfigGet("urgency.blocking"); ok {
		t.Error("expected reset to drop the override")
	}
}
