package store

import (
	"fmt"
	"slices"

	"github.com/joeaguilar/itr/internal/worker"
)

// Problem is one integrity finding.
type Problem struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Fixable bool   `json:"fixable"`
}

// DoctorReport is the outcome of one audit pass over the database.
type DoctorReport struct {
	Problems []Problem `json:"problems"`
	Fixed    []string  `json:"fixed"`
	Clean    bool      `json:"clean"`
}

// staleDays is how long an issue may sit in-progress before the audit
// flags it.
const staleDays = 3

// RunDoctor audits the database and, with fix set, repairs what can be
// repaired mechanically. Problems describe the state found at scan
// time, so a repaired finding still appears alongside its Fixed entry.
// Cycles are reported but never auto-fixed; deciding which edge to cut
// needs a human.
func (s *Store) RunDoctor(fix bool) (*DoctorReport, error) {
	report := &DoctorReport{Problems: []Problem{}, Fixed: []string{}}

	orphans, err := s.orphanedDeps()
	if err != nil {
		return nil, err
	}
	for _, d := range orphans {
		report.add("orphaned_dependency", true,
			"Dependency %d->%d references missing issue", d.BlockerID, d.BlockedID)
	}
	if fix && len(orphans) > 0 {
		if err := s.fixOrphanedDeps(); err != nil {
			return nil, err
		}
		report.Fixed = append(report.Fixed,
			fmt.Sprintf("Removed %d orphaned dependencies", len(orphans)))
	}

	cycles, err := s.findCycles()
	if err != nil {
		return nil, err
	}
	for _, c := range cycles {
		report.add("circular_dependency", false, "Cycle: %s", c)
	}

	stale, err := s.staleInProgress(staleDays)
	if err != nil {
		return nil, err
	}
	for _, st := range stale {
		report.add("stale_in_progress", false,
			"Issue %d \"%s\" in-progress for %d days", st.id, st.title, st.days)
	}

	emptyEpics, err := s.emptyEpics()
	if err != nil {
		return nil, err
	}
	for _, e := range emptyEpics {
		report.add("empty_epic", false, "Epic %d \"%s\" has no children", e.id, e.title)
	}

	doneBlockers, err := s.doneBlockers()
	if err != nil {
		return nil, err
	}
	for _, d := range doneBlockers {
		report.add("done_blocker", true,
			"Done/wontfix issue %d still blocks issue %d", d.BlockerID, d.BlockedID)
	}
	if fix && len(doneBlockers) > 0 {
		if err := s.fixDoneBlockers(); err != nil {
			return nil, err
		}
		report.Fixed = append(report.Fixed,
			fmt.Sprintf("Removed %d stale blocker relationships", len(doneBlockers)))
	}

	report.Clean = len(report.Problems) == 0
	return report, nil
}

func (r *DoctorReport) add(kind string, fixable bool, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Fixable: fixable,
	})
}

// orphanedDeps finds edges whose endpoints no longer exist. Foreign
// keys normally prevent these, but databases written with enforcement
// off or edited by hand can carry them.
func (s *Store) orphanedDeps() ([]Dependency, error) {
	rows, err := s.db.Query(
		`SELECT d.blocker_id, d.blocked_id FROM dependencies d
		 WHERE NOT EXISTS (SELECT 1 FROM issues WHERE id = d.blocker_id)
		 OR NOT EXISTS (SELECT 1 FROM issues WHERE id = d.blocked_id)`,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("scan orphaned deps: %w", err))
	}
	defer rows.Close()

	var deps []Dependency
	for rows.Next() {
		var d Dependency
		if err := rows.Scan(&d.BlockerID, &d.BlockedID); err != nil {
			return nil, DBError(err)
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (s *Store) fixOrphanedDeps() error {
	_, err := s.db.Exec(
		`DELETE FROM dependencies WHERE
		 NOT EXISTS (SELECT 1 FROM issues WHERE id = dependencies.blocker_id)
		 OR NOT EXISTS (SELECT 1 FROM issues WHERE id = dependencies.blocked_id)`,
	)
	if err != nil {
		return DBError(fmt.Errorf("fix orphaned deps: %w", err))
	}
	return nil
}

// cycleScanWorkers bounds the parallel per-edge reachability searches.
const cycleScanWorkers = 4

// findCycles reports each edge that closes a loop, deduplicated by the
// rendered path hint. The per-edge searches are independent reads of
// one immutable graph snapshot, so they run through the worker pool.
func (s *Store) findCycles() ([]string, error) {
	deps, err := s.AllDependencies()
	if err != nil {
		return nil, err
	}
	g := graphFromDeps(deps)

	hints := make([]string, len(deps))
	worker.Pool{Workers: cycleScanWorkers}.Run(len(deps), func(i int) {
		if path := g.Path(deps[i].BlockedID, deps[i].BlockerID); path != nil {
			hints[i] = cycleSignature(path)
		}
	})

	var cycles []string
	for _, hint := range hints {
		if hint != "" && !slices.Contains(cycles, hint) {
			cycles = append(cycles, hint)
		}
	}
	return cycles, nil
}

// cycleSignature renders a loop starting from its smallest node, so the
// same cycle found through different edges dedupes to one finding.
func cycleSignature(loop []int64) string {
	start := 0
	for i, id := range loop {
		if id < loop[start] {
			start = i
		}
	}
	rotated := make([]int64, 0, len(loop)+1)
	rotated = append(rotated, loop[start:]...)
	rotated = append(rotated, loop[:start]...)
	rotated = append(rotated, loop[start])
	return formatPath(rotated)
}

type staleIssue struct {
	id    int64
	title string
	days  int64
}

func (s *Store) staleInProgress(maxDays int64) ([]staleIssue, error) {
	rows, err := s.db.Query(
		`SELECT id, title, CAST((julianday('now') - julianday(updated_at)) AS INTEGER) as days
		 FROM issues
		 WHERE status = 'in-progress'
		 AND CAST((julianday('now') - julianday(updated_at)) AS INTEGER) > ?`,
		maxDays,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("scan stale in-progress: %w", err))
	}
	defer rows.Close()

	var stale []staleIssue
	for rows.Next() {
		var st staleIssue
		if err := rows.Scan(&st.id, &st.title, &st.days); err != nil {
			return nil, DBError(err)
		}
		stale = append(stale, st)
	}
	return stale, rows.Err()
}

type flaggedIssue struct {
	id    int64
	title string
}

func (s *Store) emptyEpics() ([]flaggedIssue, error) {
	rows, err := s.db.Query(
		`SELECT i.id, i.title FROM issues i
		 WHERE i.kind = 'epic'
		 AND i.status NOT IN ('done', 'wontfix')
		 AND NOT EXISTS (SELECT 1 FROM issues c WHERE c.parent_id = i.id)`,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("scan empty epics: %w", err))
	}
	defer rows.Close()

	var epics []flaggedIssue
	for rows.Next() {
		var e flaggedIssue
		if err := rows.Scan(&e.id, &e.title); err != nil {
			return nil, DBError(err)
		}
		epics = append(epics, e)
	}
	return epics, rows.Err()
}

func (s *Store) doneBlockers() ([]Dependency, error) {
	rows, err := s.db.Query(
		`SELECT d.blocker_id, d.blocked_id FROM dependencies d
		 JOIN issues i ON d.blocker_id = i.id
		 WHERE i.status IN ('done', 'wontfix')`,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("scan done blockers: %w", err))
	}
	defer rows.Close()

	var deps []Dependency
	for rows.Next() {
		var d Dependency
		if err := rows.Scan(&d.BlockerID, &d.BlockedID); err != nil {
			return nil, DBError(err)
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (s *Store) fixDoneBlockers() error {
	_, err := s.db.Exec(
		`DELETE FROM dependencies WHERE blocker_id IN
		 (SELECT id FROM issues WHERE status IN ('done', 'wontfix'))`,
	)
	if err != nil {
		return DBError(fmt.Errorf("fix done blockers: %w", err))
	}
	return nil
}
