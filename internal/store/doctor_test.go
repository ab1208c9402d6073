package store

import (
	"strings"
	"testing"
)

func problemKinds(r *DoctorReport) []string {
	kinds := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		kinds[i] = p.Kind
	}
	return kinds
}

func TestRunDoctor_CleanDatabase(t *testing.T) {
	s := testStore(t)
	mustCreate(t, s, NewIssue{Title: "healthy"})

	report, err := s.RunDoctor(false)
	if err != nil {
		t.Fatalf("RunDoctor: %v", err)
	}
	if !report.Clean || len(report.Problems) != 0 {
		t.Errorf("expected clean report, got %+v", report)
	}
}

func TestRunDoctor_OrphanedDependency(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})
	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	// Orphan the edge behind the store's back.
	if _, err := s.db.Exec(`PRAGMA foreign_keys=OFF`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`UPDATE dependencies SET blocker_id = 77`); err != nil {
		t.Fatal(err)
	}

	report, err := s.RunDoctor(false)
	if err != nil {
		t.Fatalf("RunDoctor: %v", err)
	}
	if report.Clean {
		t.Fatal("expected a problem")
	}
	p := report.Problems[0]
	if p.Kind != "orphaned_dependency" || !p.Fixable {
		t.Errorf("unexpected problem %+v", p)
	}

	report, err = s.RunDoctor(true)
	if err != nil {
		t.Fatalf("RunDoctor fix: %v", err)
	}
	if len(report.Fixed) != 1 || !strings.Contains(report.Fixed[0], "orphaned") {
		t.Errorf("expected orphan fix entry, got %v", report.Fixed)
	}

	report, _ = s.RunDoctor(false)
	if !report.Clean {
		t.Errorf("expected clean after fix, got %+v", report.Problems)
	}
}

func TestRunDoctor_CircularDependency(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})
	c := mustCreate(t, s, NewIssue{Title: "c"})
	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddDependency(b.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	// AddDependency refuses cycles, so plant one directly.
	if _, err := s.db.Exec(
		`INSERT INTO dependencies (blocker_id, blocked_id) VALUES (?, ?)`, c.ID, a.ID,
	); err != nil {
		t.Fatal(err)
	}

	report, err := s.RunDoctor(false)
	if err != nil {
		t.Fatalf("RunDoctor: %v", err)
	}

	// One cycle, one finding, no matter how many edges close it.
	var cycles []Problem
	for _, p := range report.Problems {
		if p.Kind == "circular_dependency" {
			cycles = append(cycles, p)
		}
	}
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle finding, got %d: %v", len(cycles), cycles)
	}
	if cycles[0].Fixable {
		t.Error("cycles must not be auto-fixable")
	}
	if want := "Cycle: 1 -> 2 -> 3 -> 1"; cycles[0].Message != want {
		t.Errorf("message %q, want %q", cycles[0].Message, want)
	}

	// Fix mode leaves the cycle alone.
	if _, err := s.RunDoctor(true); err != nil {
		t.Fatalf("RunDoctor fix: %v", err)
	}
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM dependencies`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected all 3 edges to survive, got %d", n)
	}
}

func TestRunDoctor_StaleInProgress(t *testing.T) {
	s := testStore(t)
	iss := mustCreate(t, s, NewIssue{Title: "stuck"})
	if err := s.SetStatus(iss.ID, StatusInProgress); err != nil {
		t.Fatal(err)
	}
	// Backdate past the threshold. The updated_at trigger would undo
	// the backdate, so drop it first.
	if _, err := s.db.Exec(`DROP TRIGGER trg_issues_updated_at`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(
		`UPDATE issues SET updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now', '-10 days') WHERE id = ?`,
		iss.ID,
	); err != nil {
		t.Fatal(err)
	}

	report, err := s.RunDoctor(false)
	if err != nil {
		t.Fatalf("RunDoctor: %v", err)
	}
	kinds := problemKinds(report)
	if len(kinds) != 1 || kinds[0] != "stale_in_progress" {
		t.Fatalf("expected stale_in_progress, got %v", kinds)
	}
	if !strings.Contains(report.Problems[0].Message, `"stuck"`) {
		t.Errorf("message should quote the title: %q", report.Problems[0].Message)
	}
}

func TestRunDoctor_RecentInProgressIsFine(t *testing.T) {
	s := testStore(t)
	iss := mustCreate(t, s, NewIssue{Title: "fresh"})
	if err := s.SetStatus(iss.ID, StatusInProgress); err != nil {
		t.Fatal(err)
	}

	report, err := s.RunDoctor(false)
	if err != nil {
		t.Fatalf("RunDoctor: %v", err)
	}
	if !report.Clean {
		t.Errorf("fresh in-progress must not be flagged: %+v", report.Problems)
	}
}

func TestRunDoctor_EmptyEpic(t *testing.T) {
	s := testStore(t)
	epic := mustCreate(t, s, NewIssue{Title: "lonely", Kind: KindEpic})

	report, err := s.RunDoctor(false)
	if err != nil {
		t.Fatalf("RunDoctor: %v", err)
	}
	kinds := problemKinds(report)
	if len(kinds) != 1 || kinds[0] != "empty_epic" {
		t.Fatalf("expected empty_epic, got %v", kinds)
	}

	// A child clears the finding.
	mustCreate(t, s, NewIssue{Title: "child", ParentID: &epic.ID})
	report, _ = s.RunDoctor(false)
	if !report.Clean {
		t.Errorf("epic with children must not be flagged: %+v", report.Problems)
	}
}

func TestRunDoctor_DoneEpicNotFlagged(t *testing.T) {
	s := testStore(t)
	epic := mustCreate(t, s, NewIssue{Title: "shipped", Kind: KindEpic})
	if err := s.SetStatus(epic.ID, StatusDone); err != nil {
		t.Fatal(err)
	}

	report, _ := s.RunDoctor(false)
	if !report.Clean {
		t.Errorf("terminal epics are exempt: %+v", report.Problems)
	}
}

func TestRunDoctor_DoneBlocker(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})
	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(a.ID, StatusDone); err != nil {
		t.Fatal(err)
	}

	report, err := s.RunDoctor(false)
	if err != nil {
		t.Fatalf("RunDoctor: %v", err)
	}
	kinds := problemKinds(report)
	if len(kinds) != 1 || kinds[0] != "done_blocker" {
		t.Fatalf("expected done_blocker, got %v", kinds)
	}
	if !report.Problems[0].Fixable {
		t.Error("done_blocker should be fixable")
	}

	report, err = s.RunDoctor(true)
	if err != nil {
		t.Fatalf("RunDoctor fix: %v", err)
	}
	if len(report.Fixed) != 1 {
		t.Fatalf("expected one fix entry, got %v", report.Fixed)
	}

	report, _ = s.RunDoctor(false)
	if !report.Clean {
		t.Errorf("expected clean after fix, got %+v", report.Problems)
	}
}
