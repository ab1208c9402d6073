package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joeaguilar/itr/internal/graph"
)

// AddDependency records that blocker must close before blocked is
// workable. Returns false without error when the edge already exists.
// An edge that would close a loop, including a self-loop, is rejected
// with a cycle error before anything is written.
func (s *Store) AddDependency(blockerID, blockedID int64) (bool, error) {
	return addDependency(s.db, blockerID, blockedID)
}

// addDependency also runs inside batch transactions, where the cycle
// check has to see the edges the transaction itself added.
func addDependency(q dbtx, blockerID, blockedID int64) (bool, error) {
	for _, id := range []int64{blockerID, blockedID} {
		ok, err := issueExists(q, id)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, NotFound(id)
		}
	}

	var n int64
	err := q.QueryRow(
		`SELECT COUNT(*) FROM dependencies WHERE blocker_id = ? AND blocked_id = ?`,
		blockerID, blockedID,
	).Scan(&n)
	if err != nil {
		return false, DBError(fmt.Errorf("check dependency: %w", err))
	}
	if n > 0 {
		return false, nil
	}

	edges, err := allDependencies(q)
	if err != nil {
		return false, err
	}
	if path := graphFromDeps(edges).CyclePath(blockerID, blockedID); path != nil {
		return false, CycleDetected(formatPath(path))
	}

	if _, err := q.Exec(
		`INSERT INTO dependencies (blocker_id, blocked_id) VALUES (?, ?)`,
		blockerID, blockedID,
	); err != nil {
		return false, DBError(fmt.Errorf("insert dependency: %w", err))
	}
	return true, nil
}

// RemoveDependency deletes the edge if present. Removing an edge that
// does not exist is not an error; missing issues are.
func (s *Store) RemoveDependency(blockerID, blockedID int64) error {
	for _, id := range []int64{blockerID, blockedID} {
		ok, err := issueExists(s.db, id)
		if err != nil {
			return err
		}
		if !ok {
			return NotFound(id)
		}
	}
	if _, err := s.db.Exec(
		`DELETE FROM dependencies WHERE blocker_id = ? AND blocked_id = ?`,
		blockerID, blockedID,
	); err != nil {
		return DBError(fmt.Errorf("delete dependency: %w", err))
	}
	return nil
}

// Blockers returns the IDs of issues that block the given issue,
// regardless of their status.
func (s *Store) Blockers(issueID int64) ([]int64, error) {
	return s.queryIDs(`SELECT blocker_id FROM dependencies WHERE blocked_id = ?`, issueID)
}

// Blocking returns the IDs of issues the given issue blocks.
func (s *Store) Blocking(issueID int64) ([]int64, error) {
	return s.queryIDs(`SELECT blocked_id FROM dependencies WHERE blocker_id = ?`, issueID)
}

// IsBlocked reports whether any non-terminal blocker edge points at the
// issue. Edges from done or wontfix issues do not count.
func (s *Store) IsBlocked(issueID int64) (bool, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM dependencies d
		 JOIN issues i ON d.blocker_id = i.id
		 WHERE d.blocked_id = ?
		 AND i.status NOT IN ('done', 'wontfix')`,
		issueID,
	).Scan(&n)
	if err != nil {
		return false, DBError(fmt.Errorf("check blocked: %w", err))
	}
	return n > 0, nil
}

// BlocksActive reports whether the issue blocks at least one issue that
// is still live.
func (s *Store) BlocksActive(issueID int64) (bool, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM dependencies d
		 JOIN issues i ON d.blocked_id = i.id
		 WHERE d.blocker_id = ?
		 AND i.status NOT IN ('done', 'wontfix')`,
		issueID,
	).Scan(&n)
	if err != nil {
		return false, DBError(fmt.Errorf("check blocking: %w", err))
	}
	return n > 0, nil
}

// NewlyUnblocked returns the live issues whose last live blocker was
// closedID. Called right after a close to tell the agent what opened up.
func (s *Store) NewlyUnblocked(closedID int64) ([]UnblockedIssue, error) {
	rows, err := s.db.Query(
		`SELECT i.id, i.title FROM issues i
		 JOIN dependencies d ON d.blocked_id = i.id
		 WHERE d.blocker_id = ?
		 AND i.status NOT IN ('done', 'wontfix')
		 AND NOT EXISTS (
		     SELECT 1 FROM dependencies d2
		     JOIN issues i2 ON d2.blocker_id = i2.id
		     WHERE d2.blocked_id = i.id
		     AND d2.blocker_id != ?
		     AND i2.status NOT IN ('done', 'wontfix')
		 )`,
		closedID, closedID,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("query newly unblocked: %w", err))
	}
	defer rows.Close()

	unblocked := []UnblockedIssue{}
	for rows.Next() {
		var u UnblockedIssue
		if err := rows.Scan(&u.ID, &u.Title); err != nil {
			return nil, DBError(fmt.Errorf("scan unblocked: %w", err))
		}
		unblocked = append(unblocked, u)
	}
	if err := rows.Err(); err != nil {
		return nil, DBError(err)
	}
	return unblocked, nil
}

// AllDependencies returns every edge in the graph.
func (s *Store) AllDependencies() ([]Dependency, error) {
	return allDependencies(s.db)
}

func allDependencies(q dbtx) ([]Dependency, error) {
	rows, err := q.Query(`SELECT blocker_id, blocked_id FROM dependencies`)
	if err != nil {
		return nil, DBError(fmt.Errorf("query dependencies: %w", err))
	}
	defer rows.Close()

	var deps []Dependency
	for rows.Next() {
		var d Dependency
		if err := rows.Scan(&d.BlockerID, &d.BlockedID); err != nil {
			return nil, DBError(fmt.Errorf("scan dependency: %w", err))
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, DBError(err)
	}
	return deps, nil
}

func (s *Store) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, DBError(fmt.Errorf("query ids: %w", err))
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, DBError(fmt.Errorf("scan id: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, DBError(err)
	}
	return ids, nil
}

// graphFromDeps builds the reachability view used for cycle checks.
func graphFromDeps(deps []Dependency) *graph.Graph {
	edges := make([]graph.Edge, len(deps))
	for i, d := range deps {
		edges[i] = graph.Edge{From: d.BlockerID, To: d.BlockedID}
	}
	return graph.New(edges)
}

// formatPath renders a node chain the way cycle errors and doctor
// findings report it: "2 -> 5 -> 1".
func formatPath(path []int64) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, " -> ")
}
