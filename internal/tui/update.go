package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeaguilar/itr/internal/store"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Popups grab the keyboard while open.
		if m.popup != popupNone {
			return m.handlePopupKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case issuesLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "Failed to load issues: " + msg.err.Error()
			return m, nil
		}
		m.columns = msg.columns
		m.clampCursor()
		return m, nil

	case detailLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "Failed to load issue: " + msg.err.Error()
			return m, nil
		}
		m.detail = msg.detail
		m.screen = screenDetail
		return m, nil

	case statusNoteMsg:
		m.statusMsg = string(msg)
		return m, m.loadIssues()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.screen == screenBoard {
			m.quitting = true
			return m, tea.Quit
		}
		return m.goBack()

	case "esc", "backspace":
		return m.goBack()
	}

	switch m.screen {
	case screenBoard:
		return m.handleBoardKey(msg)
	case screenDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	if m.screen == screenDetail {
		m.screen = screenBoard
		m.detail = nil
		return m, m.loadIssues()
	}
	return m, nil
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursorRow++
		m.clampCursor()
	case "k", "up":
		m.cursorRow--
		m.clampCursor()
	case "h", "left":
		m.cursorCol--
		m.clampCursor()
	case "l", "right":
		m.cursorCol++
		m.clampCursor()

	case "enter", " ":
		if sel := m.selectedIssue(); sel != nil {
			return m, m.loadDetail(sel.ID)
		}

	// Claim: selected issue goes in-progress.
	case "s":
		if sel := m.selectedIssue(); sel != nil && !sel.Status.Terminal() {
			id := sel.ID
			s := m.store
			return m, func() tea.Msg {
				if err := s.SetStatus(id, store.StatusInProgress); err != nil {
					return statusNoteMsg("Error: " + err.Error())
				}
				return statusNoteMsg("Claimed #" + strconv.FormatInt(id, 10))
			}
		}

	case "c":
		if sel := m.selectedIssue(); sel != nil && !sel.Status.Terminal() {
			m.closeIssueID = sel.ID
			m.popup = popupClose
			m.reasonInput.Reset()
			m.reasonInput.Focus()
			return m, textinput.Blink
		}

	case "n":
		m.popup = popupCreate
		m.titleInput.Reset()
		m.titleInput.Focus()
		m.contextInput.Reset()
		m.contextInput.Blur()
		m.inputFocused = 0
		m.createPriority = "medium"
		return m, textinput.Blink

	case "R":
		return m, m.loadIssues()
	}

	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.screen = screenBoard
		return m, nil
	}

	switch msg.String() {
	case "c":
		if !m.detail.Status.Terminal() {
			m.closeIssueID = m.detail.ID
			m.popup = popupClose
			m.reasonInput.Reset()
			m.reasonInput.Focus()
			return m, textinput.Blink
		}

	case "s":
		id := m.detail.ID
		s := m.store
		return m, tea.Sequence(
			func() tea.Msg {
				if err := s.SetStatus(id, store.StatusInProgress); err != nil {
					return statusNoteMsg("Error: " + err.Error())
				}
				return statusNoteMsg("Claimed #" + strconv.FormatInt(id, 10))
			},
			m.loadDetail(id),
		)
	}

	return m, nil
}

// --- Popup keys ---

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.popup {
	case popupCreate:
		return m.handleCreatePopup(msg)
	case popupClose:
		return m.handleClosePopup(msg)
	}
	return m, nil
}

func (m Model) handleCreatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		return m, nil
	case "tab":
		if m.inputFocused == 0 {
			m.titleInput.Blur()
			m.contextInput.Focus()
			m.inputFocused = 1
		} else {
			m.contextInput.Blur()
			m.titleInput.Focus()
			m.inputFocused = 0
		}
		return m, textinput.Blink
	case "ctrl+p":
		switch m.createPriority {
		case "critical":
			m.createPriority = "high"
		case "high":
			m.createPriority = "medium"
		case "medium":
			m.createPriority = "low"
		case "low":
			m.createPriority = "critical"
		}
		return m, nil
	case "enter":
		title := m.titleInput.Value()
		if title == "" {
			m.statusMsg = "Title cannot be empty"
			return m, nil
		}
		in := store.NewIssue{
			Title:    title,
			Priority: store.Priority(m.createPriority),
			Context:  m.contextInput.Value(),
		}
		s := m.store
		m.popup = popupNone
		return m, func() tea.Msg {
			iss, err := s.CreateIssue(in)
			if err != nil {
				return statusNoteMsg("Error: " + err.Error())
			}
			return statusNoteMsg("Created #" + strconv.FormatInt(iss.ID, 10) + ": " + iss.Title)
		}
	}

	var cmd tea.Cmd
	if m.inputFocused == 0 {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.contextInput, cmd = m.contextInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleClosePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		return m, nil
	case "enter":
		reason := m.reasonInput.Value()
		id := m.closeIssueID
		s := m.store
		m.popup = popupNone
		if m.screen == screenDetail {
			m.screen = screenBoard
			m.detail = nil
		}
		return m, func() tea.Msg {
			if err := s.CloseIssue(id, store.StatusDone, reason); err != nil {
				return statusNoteMsg("Error: " + err.Error())
			}
			unblocked, _ := s.NewlyUnblocked(id)
			note := "Closed #" + strconv.FormatInt(id, 10)
			if len(unblocked) > 0 {
				note += ", unblocked " + strconv.Itoa(len(unblocked))
			}
			return statusNoteMsg(note)
		}
	}

	var cmd tea.Cmd
	m.reasonInput, cmd = m.reasonInput.Update(msg)
	return m, cmd
}
