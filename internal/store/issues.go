package store

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

// NewIssue carries the caller-supplied fields for issue creation. Title
// must be non-empty; zero values for Priority and Kind fall back to
// medium and task, matching the column defaults.
type NewIssue struct {
	Title      string
	Priority   Priority
	Kind       Kind
	Context    string
	Files      []string
	Tags       []string
	Acceptance string
	ParentID   *int64
}

// CreateIssue inserts a new issue and returns it with the generated ID
// and database-assigned timestamps.
func (s *Store) CreateIssue(in NewIssue) (*Issue, error) {
	return createIssue(s.db, in)
}

// createIssue is the shared insert used directly and inside batch
// transactions.
func createIssue(q dbtx, in NewIssue) (*Issue, error) {
	if in.Title == "" {
		return nil, InvalidValue("title", "", "non-empty string")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Kind == "" {
		in.Kind = KindTask
	}

	res, err := q.Exec(
		`INSERT INTO issues (title, priority, kind, context, files, tags, acceptance, parent_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, string(in.Priority), string(in.Kind), in.Context,
		encodeJSONArray(in.Files), encodeJSONArray(in.Tags), in.Acceptance, in.ParentID,
	)
	if err != nil {
		return nil, DBError(fmt.Errorf("insert issue: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, DBError(err)
	}
	return getIssue(q, id)
}

// GetIssue returns a single issue by ID.
func (s *Store) GetIssue(id int64) (*Issue, error) {
	return getIssue(s.db, id)
}

func getIssue(q dbtx, id int64) (*Issue, error) {
	row := q.QueryRow(`SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	iss, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, DBError(fmt.Errorf("get issue: %w", err))
	}
	return iss, nil
}

// IssueExists reports whether an issue with the given ID exists.
func (s *Store) IssueExists(id int64) (bool, error) {
	return issueExists(s.db, id)
}

func issueExists(q dbtx, id int64) (bool, error) {
	var n int64
	if err := q.QueryRow(`SELECT COUNT(*) FROM issues WHERE id = ?`, id).Scan(&n); err != nil {
		return false, DBError(fmt.Errorf("issue exists: %w", err))
	}
	return n > 0, nil
}

// ListFilter narrows ListIssues. The zero value means: open and
// in-progress issues that are not blocked.
type ListFilter struct {
	Statuses       []string
	Priorities     []string
	Kinds          []string
	Tags           []string
	BlockedOnly    bool
	IncludeBlocked bool
	ParentID       *int64
	All            bool
}

// ListIssues returns issues matching the filter. Status, priority, kind
// and parent narrow the SQL query; tags (AND semantics) and the blocked
// predicates are applied on the loaded rows since both need the
// dependency graph.
func (s *Store) ListIssues(f ListFilter) ([]Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE 1=1`
	var args []any

	if !f.All {
		if len(f.Statuses) > 0 {
			query += ` AND status IN (` + placeholders(len(f.Statuses)) + `)`
			for _, v := range f.Statuses {
				args = append(args, v)
			}
		} else {
			query += ` AND status IN (?, ?)`
			args = append(args, string(StatusOpen), string(StatusInProgress))
		}
	}
	if len(f.Priorities) > 0 {
		query += ` AND priority IN (` + placeholders(len(f.Priorities)) + `)`
		for _, v := range f.Priorities {
			args = append(args, v)
		}
	}
	if len(f.Kinds) > 0 {
		query += ` AND kind IN (` + placeholders(len(f.Kinds)) + `)`
		for _, v := range f.Kinds {
			args = append(args, v)
		}
	}
	if f.ParentID != nil {
		query += ` AND parent_id = ?`
		args = append(args, *f.ParentID)
	}

	issues, err := s.queryIssues(query, args...)
	if err != nil {
		return nil, err
	}

	if len(f.Tags) > 0 {
		kept := issues[:0]
		for _, iss := range issues {
			if containsAll(iss.Tags, f.Tags) {
				kept = append(kept, iss)
			}
		}
		issues = kept
	}

	if f.BlockedOnly {
		kept := issues[:0]
		for _, iss := range issues {
			blocked, err := s.IsBlocked(iss.ID)
			if err != nil {
				return nil, err
			}
			if blocked {
				kept = append(kept, iss)
			}
		}
		issues = kept
	} else if !f.IncludeBlocked && !f.All {
		kept := issues[:0]
		for _, iss := range issues {
			blocked, err := s.IsBlocked(iss.ID)
			if err != nil {
				return nil, err
			}
			if !blocked {
				kept = append(kept, iss)
			}
		}
		issues = kept
	}

	return issues, nil
}

// AllIssues returns every issue ordered by ID, for export, stats and the
// graph view.
func (s *Store) AllIssues() ([]Issue, error) {
	return s.queryIssues(`SELECT ` + issueColumns + ` FROM issues ORDER BY id`)
}

// queryIssues is a shared helper for running issue-list queries.
func (s *Store) queryIssues(query string, args ...any) ([]Issue, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, DBError(fmt.Errorf("query issues: %w", err))
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		iss, err := scanIssue(rows)
		if err != nil {
			return nil, DBError(fmt.Errorf("scan issue: %w", err))
		}
		issues = append(issues, *iss)
	}
	if err := rows.Err(); err != nil {
		return nil, DBError(err)
	}
	return issues, nil
}

// SetStatus updates the lifecycle state of an issue.
func (s *Store) SetStatus(id int64, status Status) error {
	return s.setField(id, "status", string(status))
}

// SetPriority updates the priority tier of an issue.
func (s *Store) SetPriority(id int64, p Priority) error {
	return s.setField(id, "priority", string(p))
}

// SetKind updates the kind of an issue.
func (s *Store) SetKind(id int64, k Kind) error {
	return s.setField(id, "kind", string(k))
}

// SetTitle updates the title of an issue.
func (s *Store) SetTitle(id int64, title string) error {
	return s.setField(id, "title", title)
}

// SetContext replaces the context text of an issue.
func (s *Store) SetContext(id int64, context string) error {
	return s.setField(id, "context", context)
}

// SetAcceptance replaces the acceptance criteria of an issue.
func (s *Store) SetAcceptance(id int64, acceptance string) error {
	return s.setField(id, "acceptance", acceptance)
}

// SetCloseReason records why an issue was closed.
func (s *Store) SetCloseReason(id int64, reason string) error {
	return s.setField(id, "close_reason", reason)
}

// CloseIssue moves an issue to a terminal status and records the close
// reason in one statement, so a crash cannot leave one without the other.
func (s *Store) CloseIssue(id int64, status Status, reason string) error {
	ok, err := issueExists(s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound(id)
	}
	if _, err := s.db.Exec(
		`UPDATE issues SET status = ?, close_reason = ? WHERE id = ?`,
		string(status), reason, id,
	); err != nil {
		return DBError(fmt.Errorf("close issue: %w", err))
	}
	return nil
}

// ReopenIssue returns a closed issue to open and clears the close reason.
func (s *Store) ReopenIssue(id int64) error {
	ok, err := issueExists(s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound(id)
	}
	if _, err := s.db.Exec(
		`UPDATE issues SET status = ?, close_reason = '' WHERE id = ?`,
		string(StatusOpen), id,
	); err != nil {
		return DBError(fmt.Errorf("reopen issue: %w", err))
	}
	return nil
}

// ReplaceFiles overwrites the file list of an issue.
func (s *Store) ReplaceFiles(id int64, files []string) error {
	return s.setField(id, "files", encodeJSONArray(files))
}

// ReplaceTags overwrites the tag list of an issue.
func (s *Store) ReplaceTags(id int64, tags []string) error {
	return s.setField(id, "tags", encodeJSONArray(tags))
}

// ModifyFiles appends the add entries that are not already present,
// then drops the remove entries. An entry named in both ends up removed.
func (s *Store) ModifyFiles(id int64, add, remove []string) error {
	iss, err := s.GetIssue(id)
	if err != nil {
		return err
	}
	return s.ReplaceFiles(id, mergeList(iss.Files, add, remove))
}

// ModifyTags is ModifyFiles for the tag list.
func (s *Store) ModifyTags(id int64, add, remove []string) error {
	iss, err := s.GetIssue(id)
	if err != nil {
		return err
	}
	return s.ReplaceTags(id, mergeList(iss.Tags, add, remove))
}

// SetParent re-parents an issue. A nil parentID clears the link.
func (s *Store) SetParent(id int64, parentID *int64) error {
	ok, err := issueExists(s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound(id)
	}
	if _, err := s.db.Exec(`UPDATE issues SET parent_id = ? WHERE id = ?`, parentID, id); err != nil {
		return DBError(fmt.Errorf("update parent: %w", err))
	}
	return nil
}

// setField writes one column. updated_at refreshes via the table
// trigger, not here.
func (s *Store) setField(id int64, column, value string) error {
	ok, err := issueExists(s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound(id)
	}
	if _, err := s.db.Exec(`UPDATE issues SET `+column+` = ? WHERE id = ?`, value, id); err != nil {
		return DBError(fmt.Errorf("update %s: %w", column, err))
	}
	return nil
}

func mergeList(current, add, remove []string) []string {
	merged := append([]string{}, current...)
	for _, v := range add {
		if !slices.Contains(merged, v) {
			merged = append(merged, v)
		}
	}
	kept := merged[:0]
	for _, v := range merged {
		if !slices.Contains(remove, v) {
			kept = append(kept, v)
		}
	}
	return kept
}

func containsAll(list, want []string) bool {
	for _, w := range want {
		if !slices.Contains(list, w) {
			return false
		}
	}
	return true
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
