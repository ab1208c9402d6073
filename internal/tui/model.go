// Package tui is the interactive board: issue columns with urgency
// scores, a detail panel with the score breakdown, and create/close
// popups so a human can groom the tracker without leaving the keyboard.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

// screen is which full view the TUI shows.
type screen int

const (
	screenBoard  screen = iota // column board (main)
	screenDetail               // single issue detail
)

// popup is the active overlay dialog, if any.
type popup int

const (
	popupNone popup = iota
	popupCreate
	popupClose
)

// Column indices for navigation. Blocked is derived from the
// dependency graph, not a stored status: a blocked issue leaves its
// status column and shows here.
const (
	colOpen = iota
	colInProgress
	colBlocked
	colDone
	numColumns
)

var columnLabels = [numColumns]string{
	"OPEN",
	"IN PROGRESS",
	"BLOCKED",
	"DONE",
}

// Model is the top-level bubbletea model.
type Model struct {
	store  *store.Store
	width  int
	height int

	screen screen
	popup  popup

	// Board state.
	columns   [numColumns][]store.IssueSummary
	cursorCol int
	cursorRow int

	// Selected issue for the detail screen.
	detail *store.IssueDetail

	// Inputs for the create and close popups.
	titleInput     textinput.Model
	contextInput   textinput.Model
	reasonInput    textinput.Model
	inputFocused   int // 0=title, 1=context in create mode
	createPriority string
	closeIssueID   int64

	statusMsg string
	quitting  bool
}

// New creates a board model over an open store.
func New(s *store.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Issue title..."
	ti.CharLimit = 120
	ti.Width = 50

	ci := textinput.New()
	ci.Placeholder = "Context (optional)..."
	ci.CharLimit = 500
	ci.Width = 50

	ri := textinput.New()
	ri.Placeholder = "Close reason..."
	ri.CharLimit = 500
	ri.Width = 50

	return Model{
		store:          s,
		screen:         screenBoard,
		titleInput:     ti,
		contextInput:   ci,
		reasonInput:    ri,
		createPriority: "medium",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadIssues()
}

type issuesLoadedMsg struct {
	columns [numColumns][]store.IssueSummary
	err     error
}

type detailLoadedMsg struct {
	detail *store.IssueDetail
	err    error
}

type statusNoteMsg string

// loadIssues reads every issue, scores it, and buckets it into the
// board columns sorted by urgency.
func (m Model) loadIssues() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		issues, err := s.AllIssues()
		if err != nil {
			return issuesLoadedMsg{err: err}
		}
		cfg := urgency.Load(s)

		var columns [numColumns][]store.IssueSummary
		for _, iss := range issues {
			sum, blocked, err := summarize(s, iss, cfg)
			if err != nil {
				return issuesLoadedMsg{err: err}
			}
			col := colOpen
			switch {
			case iss.Status.Terminal():
				col = colDone
			case blocked:
				col = colBlocked
			case iss.Status == store.StatusInProgress:
				col = colInProgress
			}
			columns[col] = append(columns[col], sum)
		}
		for i := range columns {
			sortByUrgency(columns[i])
		}
		return issuesLoadedMsg{columns: columns}
	}
}

// loadDetail assembles the full view of one issue for the detail
// screen.
func (m Model) loadDetail(id int64) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		iss, err := s.GetIssue(id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		cfg := urgency.Load(s)

		blocked, err := s.IsBlocked(id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		blocking, err := s.BlocksActive(id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		noteCount, err := s.CountNotes(id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		score, breakdown := urgency.Score(*iss, urgency.Facts{
			Blocking: blocking,
			Blocked:  blocked,
			Notes:    noteCount,
		}, cfg)

		blockedBy, err := s.Blockers(id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		blocks, err := s.Blocking(id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		notes, err := s.Notes(id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}

		return detailLoadedMsg{detail: &store.IssueDetail{
			Issue:            *iss,
			Urgency:          score,
			BlockedBy:        blockedBy,
			Blocks:           blocks,
			IsBlocked:        blocked,
			Notes:            notes,
			UrgencyBreakdown: &breakdown,
		}}
	}
}

func summarize(s *store.Store, iss store.Issue, cfg urgency.Config) (store.IssueSummary, bool, error) {
	blocked, err := s.IsBlocked(iss.ID)
	if err != nil {
		return store.IssueSummary{}, false, err
	}
	blocking, err := s.BlocksActive(iss.ID)
	if err != nil {
		return store.IssueSummary{}, false, err
	}
	noteCount, err := s.CountNotes(iss.ID)
	if err != nil {
		return store.IssueSummary{}, false, err
	}
	score, _ := urgency.Score(iss, urgency.Facts{
		Blocking: blocking,
		Blocked:  blocked,
		Notes:    noteCount,
	}, cfg)
	blockedBy, err := s.Blockers(iss.ID)
	if err != nil {
		return store.IssueSummary{}, false, err
	}
	return store.IssueSummary{
		ID:         iss.ID,
		Title:      iss.Title,
		Status:     iss.Status,
		Priority:   iss.Priority,
		Kind:       iss.Kind,
		Urgency:    score,
		IsBlocked:  blocked,
		BlockedBy:  blockedBy,
		Tags:       iss.Tags,
		Files:      iss.Files,
		Acceptance: iss.Acceptance,
	}, blocked, nil
}

func sortByUrgency(sums []store.IssueSummary) {
	for i := 1; i < len(sums); i++ {
		for j := i; j > 0 && sums[j].Urgency > sums[j-1].Urgency; j-- {
			sums[j], sums[j-1] = sums[j-1], sums[j]
		}
	}
}

func (m *Model) clampCursor() {
	if m.cursorCol < 0 {
		m.cursorCol = 0
	}
	if m.cursorCol >= numColumns {
		m.cursorCol = numColumns - 1
	}
	col := m.columns[m.cursorCol]
	if m.cursorRow >= len(col) {
		m.cursorRow = len(col) - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

func (m *Model) selectedIssue() *store.IssueSummary {
	col := m.columns[m.cursorCol]
	if m.cursorRow < len(col) {
		sum := col[m.cursorRow]
		return &sum
	}
	return nil
}
