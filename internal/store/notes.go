package store

import "fmt"

// AddNote appends a note to an issue and returns it with the generated
// ID and timestamp.
func (s *Store) AddNote(issueID int64, content, agent string) (*Note, error) {
	ok, err := issueExists(s.db, issueID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NotFound(issueID)
	}

	res, err := s.db.Exec(
		`INSERT INTO notes (issue_id, content, agent) VALUES (?, ?, ?)`,
		issueID, content, agent,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("insert note: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, DBError(err)
	}

	var n Note
	err = s.db.QueryRow(
		`SELECT id, issue_id, content, agent, created_at FROM notes WHERE id = ?`, id,
	).Scan(&n.ID, &n.IssueID, &n.Content, &n.Agent, &n.CreatedAt)
	if err != nil {
		return nil, DBError(fmt.Errorf("read note: %w", err))
	}
	return &n, nil
}

// Notes returns all notes on an issue, oldest first.
func (s *Store) Notes(issueID int64) ([]Note, error) {
	rows, err := s.db.Query(
		`SELECT id, issue_id, content, agent, created_at FROM notes
		 WHERE issue_id = ? ORDER BY created_at ASC, id ASC`,
		issueID,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("query notes: %w", err))
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.IssueID, &n.Content, &n.Agent, &n.CreatedAt); err != nil {
			return nil, DBError(fmt.Errorf("scan note: %w", err))
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, DBError(err)
	}
	return notes, nil
}

// CountNotes returns how many notes an issue carries. The urgency
// engine weighs this as an activity signal.
func (s *Store) CountNotes(issueID int64) (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE issue_id = ?`, issueID).Scan(&n); err != nil {
		return 0, DBError(fmt.Errorf("count notes: %w", err))
	}
	return n, nil
}
