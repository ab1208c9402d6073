package store

import "fmt"

// ExportRecords assembles every issue with its notes and blockers, in
// ID order, for the export stream.
func (s *Store) ExportRecords() ([]ExportRecord, error) {
	issues, err := s.AllIssues()
	if err != nil {
		return nil, err
	}

	records := make([]ExportRecord, 0, len(issues))
	for _, iss := range issues {
		notes, err := s.Notes(iss.ID)
		if err != nil {
			return nil, err
		}
		blockedBy, err := s.Blockers(iss.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, ExportRecord{Issue: iss, Notes: notes, BlockedBy: blockedBy})
	}
	return records, nil
}

// Import writes records into the database in one transaction. Records
// replace existing rows by ID unless merge is set, in which case
// records whose issue ID already exists are skipped whole. Issues and
// notes keep their exported IDs and timestamps. Dependency inserts are
// best effort: an edge whose blocker never arrives is dropped silently
// and left for the doctor to notice.
func (s *Store) Import(records []ExportRecord, merge bool) (imported, skipped int64, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, DBError(fmt.Errorf("begin import: %w", err))
	}
	defer tx.Rollback()

	for _, rec := range records {
		if merge {
			exists, err := issueExists(tx, rec.Issue.ID)
			if err == nil && exists {
				skipped++
				continue
			}
		}

		iss := rec.Issue
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO issues (id, title, status, priority, kind, context, files, tags, acceptance, parent_id, close_reason, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			iss.ID, iss.Title, string(iss.Status), string(iss.Priority), string(iss.Kind),
			iss.Context, encodeJSONArray(iss.Files), encodeJSONArray(iss.Tags), iss.Acceptance,
			iss.ParentID, iss.CloseReason, iss.CreatedAt, iss.UpdatedAt,
		); err != nil {
			return 0, 0, DBError(fmt.Errorf("import issue %d: %w", iss.ID, err))
		}

		for _, n := range rec.Notes {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO notes (id, issue_id, content, agent, created_at)
				 VALUES (?, ?, ?, ?, ?)`,
				n.ID, n.IssueID, n.Content, n.Agent, n.CreatedAt,
			); err != nil {
				return 0, 0, DBError(fmt.Errorf("import note %d: %w", n.ID, err))
			}
		}

		for _, blockerID := range rec.BlockedBy {
			tx.Exec(
				`INSERT OR IGNORE INTO dependencies (blocker_id, blocked_id) VALUES (?, ?)`,
				blockerID, iss.ID,
			)
		}

		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, DBError(fmt.Errorf("commit import: %w", err))
	}
	return imported, skipped, nil
}
