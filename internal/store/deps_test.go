package store

import (
	"errors"
	"testing"
)

func TestAddDependency(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})

	created, err := s.AddDependency(a.ID, b.ID)
	if err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if !created {
		t.Error("expected edge to be created")
	}

	blocked, err := s.IsBlocked(b.ID)
	if err != nil || !blocked {
		t.Errorf("expected %d blocked, got %v (%v)", b.ID, blocked, err)
	}
	blockers, err := s.Blockers(b.ID)
	if err != nil || len(blockers) != 1 || blockers[0] != a.ID {
		t.Errorf("expected blockers [%d], got %v (%v)", a.ID, blockers, err)
	}
	blocking, err := s.Blocking(a.ID)
	if err != nil || len(blocking) != 1 || blocking[0] != b.ID {
		t.Errorf("expected blocking [%d], got %v (%v)", b.ID, blocking, err)
	}
}

func TestAddDependency_DuplicateIsNoop(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})

	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	created, err := s.AddDependency(a.ID, b.ID)
	if err != nil {
		t.Fatalf("duplicate AddDependency: %v", err)
	}
	if created {
		t.Error("expected duplicate edge to report created=false")
	}
}

func TestAddDependency_MissingIssue(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})

	_, err := s.AddDependency(a.ID, 99)
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAddDependency_RejectsCycle(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})
	c := mustCreate(t, s, NewIssue{Title: "c"})

	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("a->b: %v", err)
	}
	if _, err := s.AddDependency(b.ID, c.ID); err != nil {
		t.Fatalf("b->c: %v", err)
	}

	_, err := s.AddDependency(c.ID, a.ID)
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeCycleDetected {
		t.Fatalf("expected CYCLE_DETECTED, got %v", err)
	}
	want := "Cycle detected: 1 -> 2 -> 3"
	if serr.Message != want {
		t.Errorf("message %q, want %q", serr.Message, want)
	}

	// Nothing was written.
	if blocked, _ := s.IsBlocked(a.ID); blocked {
		t.Error("rejected edge must not persist")
	}
}

func TestAddDependency_RejectsSelfLoop(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})

	_, err := s.AddDependency(a.ID, a.ID)
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeCycleDetected {
		t.Fatalf("expected CYCLE_DETECTED for self loop, got %v", err)
	}
}

func TestIsBlocked_IgnoresTerminalBlockers(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})

	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := s.SetStatus(a.ID, StatusWontfix); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	blocked, err := s.IsBlocked(b.ID)
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if blocked {
		t.Error("a wontfix blocker must not block")
	}
}

func TestBlocksActive(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})

	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if active, _ := s.BlocksActive(a.ID); !active {
		t.Error("expected a to block a live issue")
	}

	if err := s.SetStatus(b.ID, StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if active, _ := s.BlocksActive(a.ID); active {
		t.Error("blocking only terminal issues must not count")
	}
}

func TestRemoveDependency(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})

	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := s.RemoveDependency(a.ID, b.ID); err != nil {
		t.Fatalf("RemoveDependency: %v", err)
	}
	if blocked, _ := s.IsBlocked(b.ID); blocked {
		t.Error("expected edge removed")
	}

	// Removing again is fine; removing with a missing endpoint is not.
	if err := s.RemoveDependency(a.ID, b.ID); err != nil {
		t.Errorf("removing absent edge should be a noop, got %v", err)
	}
	err := s.RemoveDependency(a.ID, 99)
	var serr *Error
	if !errors.As(err, &serr) || serr.Code != CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestNewlyUnblocked(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})
	c := mustCreate(t, s, NewIssue{Title: "c"})
	d := mustCreate(t, s, NewIssue{Title: "d"})

	// c is blocked by a only; d is blocked by both a and b.
	if _, err := s.AddDependency(a.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddDependency(a.ID, d.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddDependency(b.ID, d.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.SetStatus(a.ID, StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	unblocked, err := s.NewlyUnblocked(a.ID)
	if err != nil {
		t.Fatalf("NewlyUnblocked: %v", err)
	}
	if len(unblocked) != 1 || unblocked[0].ID != c.ID {
		t.Fatalf("expected only %d unblocked, got %v", c.ID, unblocked)
	}

	// Closing b frees d as well.
	if err := s.SetStatus(b.ID, StatusDone); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	unblocked, err = s.NewlyUnblocked(b.ID)
	if err != nil {
		t.Fatalf("NewlyUnblocked: %v", err)
	}
	if len(unblocked) != 1 || unblocked[0].ID != d.ID {
		t.Fatalf("expected %d unblocked, got %v", d.ID, unblocked)
	}
}

func TestNewlyUnblocked_SkipsTerminalIssues(t *testing.T) {
	s := testStore(t)
	a := mustCreate(t, s, NewIssue{Title: "a"})
	b := mustCreate(t, s, NewIssue{Title: "b"})
	if _, err := s.AddDependency(a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(b.ID, StatusWontfix); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(a.ID, StatusDone); err != nil {
		t.Fatal(err)
	}

	unblocked, err := s.NewlyUnblocked(a.ID)
	if err != nil {
		t.Fatalf("NewlyUnblocked: %v", err)
	}
	if len(unblocked) != 0 {
		t.Errorf("terminal issues never unblock, got %v", unblocked)
	}
}
