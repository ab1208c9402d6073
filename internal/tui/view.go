package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joeaguilar/itr/internal/store"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrCyan      = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
	subtleStyle = lipgloss.NewStyle().Foreground(clrSubtle)

	columnHeaderStyle = lipgloss.NewStyle().Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1)

	cardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrHighlight).
				Padding(0, 1).
				Bold(true)

	cardBlockedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrRed).
				Padding(0, 1)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(clrRed).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case screenBoard:
		content = m.viewBoard()
	case screenDetail:
		content = m.viewDetail()
	}

	if m.popup != popupNone {
		content = m.overlayPopup(content)
	}
	return content
}

// --- Board screen ---

func (m Model) viewBoard() string {
	var b strings.Builder

	total := 0
	for i := range m.columns {
		total += len(m.columns[i])
	}

	header := titleStyle.Render("itr board")
	header += dimStyle.Render(fmt.Sprintf(" — %d issues", total))

	rightHelp := footerKeyStyle.Render("n") + footerDescStyle.Render(" new  ") +
		footerKeyStyle.Render("q") + footerDescStyle.Render(" quit")

	headerLine := header
	if m.width > 0 {
		pad := m.width - lipgloss.Width(header) - lipgloss.Width(rightHelp)
		if pad > 0 {
			headerLine = header + strings.Repeat(" ", pad) + rightHelp
		}
	}
	b.WriteString(headerLine + "\n\n")

	if total == 0 {
		b.WriteString(dimStyle.Render("  No issues yet. Press ") +
			footerKeyStyle.Render("n") +
			dimStyle.Render(" to create one.\n"))
		b.WriteString("\n" + m.boardFooter())
		return b.String()
	}

	colWidth := 30
	if m.width > 0 {
		colWidth = (m.width - numColumns - 1) / numColumns
		if colWidth < 22 {
			colWidth = 22
		}
		if colWidth > 44 {
			colWidth = 44
		}
	}

	var rendered [numColumns]string
	for i := 0; i < numColumns; i++ {
		rendered[i] = m.renderColumn(i, colWidth)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered[:]...))

	if m.statusMsg != "" {
		b.WriteString("\n")
		if strings.HasPrefix(strings.ToLower(m.statusMsg), "failed") ||
			strings.HasPrefix(strings.ToLower(m.statusMsg), "error") {
			b.WriteString(errorStyle.Render("  " + m.statusMsg))
		} else {
			b.WriteString(statusStyle.Render("  " + m.statusMsg))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.boardFooter())
	return b.String()
}

func (m Model) renderColumn(col, width int) string {
	var b strings.Builder

	label := columnHeaderStyle.Foreground(columnColor(col)).
		Render(fmt.Sprintf(" %s (%d)", columnLabels[col], len(m.columns[col])))
	b.WriteString(label + "\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", width)) + "\n")

	for row, card := range m.columns[col] {
		b.WriteString(m.renderCard(&card, col == m.cursorCol && row == m.cursorRow, width))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width + 1).Render(b.String())
}

func (m Model) renderCard(card *store.IssueSummary, selected bool, width int) string {
	var content strings.Builder

	prefix := ""
	if card.Kind == store.KindEpic {
		prefix = "E"
	}
	idStr := lipgloss.NewStyle().Foreground(clrCyan).Render(fmt.Sprintf("%s#%d", prefix, card.ID))
	urg := dimStyle.Render(fmt.Sprintf("urg %.1f", card.Urgency))
	content.WriteString(idStr + "  " + urg + "\n")

	content.WriteString(truncate(card.Title, width-6) + "\n")

	pri := lipgloss.NewStyle().Foreground(priorityClr(card.Priority)).Render(string(card.Priority))
	meta := pri + dimStyle.Render(" · "+string(card.Kind))
	content.WriteString(meta)

	if card.IsBlocked && len(card.BlockedBy) > 0 {
		ids := make([]string, len(card.BlockedBy))
		for i, id := range card.BlockedBy {
			ids[i] = fmt.Sprintf("%d", id)
		}
		content.WriteString("\n" + lipgloss.NewStyle().Foreground(clrRed).
			Render("⚠ by "+truncate(strings.Join(ids, ","), width-10)))
	}

	style := cardStyle.Width(width - 2)
	if selected {
		style = cardSelectedStyle.Width(width - 2)
	} else if card.IsBlocked {
		style = cardBlockedStyle.Width(width - 2)
	}
	return style.Render(content.String())
}

func (m Model) boardFooter() string {
	keys := []struct{ key, desc string }{
		{"↑↓←→", "navigate"},
		{"enter", "detail"},
		{"n", "new"},
		{"s", "claim"},
		{"c", "close"},
		{"R", "refresh"},
		{"q", "quit"},
	}
	return renderFooter(keys)
}

// --- Detail screen ---

func (m Model) viewDetail() string {
	if m.detail == nil {
		return "No issue selected"
	}

	var b strings.Builder
	d := m.detail

	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", d.ID, d.Title)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("esc back"))
	b.WriteString("\n\n")

	pri := lipgloss.NewStyle().Foreground(priorityClr(d.Priority)).Render(string(d.Priority))
	b.WriteString(fmt.Sprintf("  %s  %s  %s  urgency %.1f\n",
		statusLabel(d.Status, d.IsBlocked), pri, dimStyle.Render(string(d.Kind)), d.Urgency))

	if len(d.Tags) > 0 {
		b.WriteString("  " + dimStyle.Render("tags: "+strings.Join(d.Tags, ", ")) + "\n")
	}
	if len(d.Files) > 0 {
		b.WriteString("  " + dimStyle.Render("files: "+strings.Join(d.Files, ", ")) + "\n")
	}
	if d.Context != "" {
		b.WriteString("\n  " + d.Context + "\n")
	}
	if d.Acceptance != "" {
		b.WriteString("  " + subtleStyle.Render("accept: "+d.Acceptance) + "\n")
	}
	if d.CloseReason != "" {
		b.WriteString("  " + subtleStyle.Render("closed: "+d.CloseReason) + "\n")
	}

	if len(d.BlockedBy) > 0 || len(d.Blocks) > 0 {
		b.WriteString("\n")
		if len(d.BlockedBy) > 0 {
			b.WriteString("  " + lipgloss.NewStyle().Foreground(clrRed).
				Render("blocked by "+joinInt64(d.BlockedBy)) + "\n")
		}
		if len(d.Blocks) > 0 {
			b.WriteString("  " + lipgloss.NewStyle().Foreground(clrYellow).
				Render("blocks "+joinInt64(d.Blocks)) + "\n")
		}
	}

	// Score breakdown, nonzero components only.
	if d.UrgencyBreakdown != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("  Urgency:") + "\n")
		for _, c := range d.UrgencyBreakdown.Components {
			if c.Value == 0 {
				continue
			}
			bar := lipgloss.NewStyle().Foreground(clrBlue)
			if c.Value < 0 {
				bar = lipgloss.NewStyle().Foreground(clrRed)
			}
			b.WriteString(fmt.Sprintf("    %-22s %s\n", c.Name, bar.Render(fmt.Sprintf("%+.1f", c.Value))))
		}
	}

	if len(d.Notes) > 0 {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("  Notes:") + "\n")
		for _, n := range d.Notes {
			ts := dimStyle.Render(n.CreatedAt)
			agent := ""
			if n.Agent != "" {
				agent = lipgloss.NewStyle().Foreground(clrCyan).Render(n.Agent) + " "
			}
			b.WriteString(fmt.Sprintf("    %s %s%s\n", ts, agent, truncate(n.Content, 70)))
		}
	}

	b.WriteString("\n")
	keys := []struct{ key, desc string }{
		{"s", "claim"},
		{"c", "close"},
		{"esc", "back"},
	}
	b.WriteString(renderFooter(keys))
	return b.String()
}

// --- Popups ---

func (m Model) overlayPopup(bg string) string {
	var popup string
	switch m.popup {
	case popupCreate:
		popup = m.viewCreatePopup()
	case popupClose:
		popup = m.viewClosePopup()
	default:
		return bg
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			popup,
			lipgloss.WithWhitespaceChars(" "),
		)
	}
	return popup
}

func (m Model) viewCreatePopup() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(clrHighlight).Render("New Issue") + "\n\n")

	b.WriteString("Title:\n")
	b.WriteString(m.titleInput.View() + "\n\n")

	b.WriteString("Context:\n")
	b.WriteString(m.contextInput.View() + "\n\n")

	pri := lipgloss.NewStyle().Bold(true).Foreground(priorityClr(store.Priority(m.createPriority)))
	b.WriteString(fmt.Sprintf("Priority: %s\n\n", pri.Render(m.createPriority)))

	b.WriteString(footerDescStyle.Render("enter create • tab switch • ctrl+p priority • esc cancel"))
	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewClosePopup() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(clrGreen).
		Render(fmt.Sprintf("Close #%d", m.closeIssueID)) + "\n\n")

	b.WriteString("Reason (optional):\n")
	b.WriteString(m.reasonInput.View() + "\n\n")
	b.WriteString(footerDescStyle.Render("enter close • esc cancel"))
	return m.popupBoxStyle().Render(b.String())
}

func (m Model) popupBoxStyle() lipgloss.Style {
	w := 60
	if m.width > 0 {
		w = m.width - 12
		if w < 42 {
			w = 42
		}
		if w > 84 {
			w = 84
		}
	}
	return popupStyle.Width(w)
}

// --- Shared helpers ---

func renderFooter(keys []struct{ key, desc string }) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k.key)+" "+footerDescStyle.Render(k.desc))
	}
	return "  " + strings.Join(parts, "  ")
}

func joinInt64(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}

func columnColor(col int) lipgloss.AdaptiveColor {
	switch col {
	case colInProgress:
		return clrBlue
	case colBlocked:
		return clrRed
	case colDone:
		return clrGreen
	}
	return clrSubtle
}

func priorityClr(p store.Priority) lipgloss.AdaptiveColor {
	switch p {
	case store.PriorityCritical:
		return clrRed
	case store.PriorityHigh:
		return clrYellow
	case store.PriorityLow:
		return clrDim
	}
	return clrSubtle
}

func statusLabel(s store.Status, blocked bool) string {
	if blocked && !s.Terminal() {
		return lipgloss.NewStyle().Foreground(clrRed).Render("blocked")
	}
	switch s {
	case store.StatusInProgress:
		return lipgloss.NewStyle().Foreground(clrBlue).Render(string(s))
	case store.StatusDone:
		return lipgloss.NewStyle().Foreground(clrGreen).Render(string(s))
	case store.StatusWontfix:
		return dimStyle.Render(string(s))
	}
	return lipgloss.NewStyle().Foreground(clrCyan).Render(string(s))
}

func truncate(s string, maxLen int) string {
	if maxLen < 1 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
