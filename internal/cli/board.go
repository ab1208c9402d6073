package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the issue board",
	RunE:  runBoard,
}

// boardColumn buckets the board. Blocked is derived, not a status:
// a blocked issue leaves its status column and lands here.
type boardColumn int

const (
	colOpen boardColumn = iota
	colInProgress
	colBlocked
	colDone
)

func runBoard(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	issues, err := s.AllIssues()
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Printf("%sBoard is empty.%s Create an issue: %sitr add \"title\"%s\n",
			colorDim, colorReset, colorCyan, colorReset)
		return nil
	}

	cfg := urgency.Load(s)
	columns := map[boardColumn][]store.IssueSummary{}
	for _, iss := range issues {
		facts, err := issueFacts(s, iss.ID)
		if err != nil {
			return err
		}
		score, _ := urgency.Score(iss, facts, cfg)
		blockedBy, err := s.Blockers(iss.ID)
		if err != nil {
			return err
		}
		sum := store.IssueSummary{
			ID:        iss.ID,
			Title:     iss.Title,
			Status:    iss.Status,
			Priority:  iss.Priority,
			Kind:      iss.Kind,
			Urgency:   score,
			IsBlocked: facts.Blocked,
			BlockedBy: blockedBy,
		}
		col := colOpen
		switch {
		case iss.Status.Terminal():
			col = colDone
		case facts.Blocked:
			col = colBlocked
		case iss.Status == store.StatusInProgress:
			col = colInProgress
		}
		columns[col] = append(columns[col], sum)
	}
	for _, col := range columns {
		sortSummaries(col, "urgency")
	}

	type colDef struct {
		col   boardColumn
		label string
		color string
	}
	order := []colDef{
		{colOpen, "OPEN", colorWhite},
		{colInProgress, "IN PROGRESS", colorBlue},
		{colBlocked, "BLOCKED", colorRed},
		{colDone, "DONE", colorGreen},
	}

	// Print header.
	colWidth := 28
	headerLine := ""
	sepLine := ""
	for _, c := range order {
		count := len(columns[c.col])
		header := fmt.Sprintf(" %s%s%s (%d)", c.color+colorBold, c.label, colorReset, count)
		// Padding needs visible length, not byte length (ANSI codes add bytes).
		visibleLen := len(fmt.Sprintf(" %s (%d)", c.label, count))
		padding := colWidth - visibleLen
		if padding < 0 {
			padding = 0
		}
		headerLine += header + strings.Repeat(" ", padding)
		sepLine += strings.Repeat("─", colWidth)
	}
	fmt.Println(headerLine)
	fmt.Println(colorDim + sepLine + colorReset)

	maxRows := 0
	for _, c := range order {
		if len(columns[c.col]) > maxRows {
			maxRows = len(columns[c.col])
		}
	}

	// Print cards: title line, then urgency/blockers line.
	for i := 0; i < maxRows; i++ {
		line := ""
		for _, c := range order {
			cards := columns[c.col]
			if i < len(cards) {
				card := cards[i]
				priColor := priorityColor(card.Priority)
				prefix := ""
				if card.Kind == store.KindEpic {
					prefix = "E"
				}
				idStr := fmt.Sprintf("%s#%d", prefix, card.ID)
				titleStr := truncateTitle(card.Title, colWidth-len(idStr)-3)
				rendered := fmt.Sprintf(" %s%s%s %s", priColor, idStr, colorReset, titleStr)
				visibleLen := len(fmt.Sprintf(" %s %s", idStr, titleStr))
				padding := colWidth - visibleLen
				if padding < 0 {
					padding = 0
				}
				line += rendered + strings.Repeat(" ", padding)
			} else {
				line += strings.Repeat(" ", colWidth)
			}
		}
		fmt.Println(line)

		detailLine := ""
		for _, c := range order {
			cards := columns[c.col]
			if i < len(cards) {
				card := cards[i]
				detail := fmt.Sprintf("    %surg %.1f%s", colorDim, card.Urgency, colorReset)
				visibleDetail := fmt.Sprintf("    urg %.1f", card.Urgency)
				if card.IsBlocked && len(card.BlockedBy) > 0 {
					by := truncateTitle(joinIDs(card.BlockedBy, ","), colWidth-9)
					detail = fmt.Sprintf("    %s⚠ by %s%s", colorRed, by, colorReset)
					visibleDetail = fmt.Sprintf("    ⚠ by %s", by)
				}
				padding := colWidth - len(visibleDetail)
				if padding < 0 {
					padding = 0
				}
				detailLine += detail + strings.Repeat(" ", padding)
			} else {
				detailLine += strings.Repeat(" ", colWidth)
			}
		}
		fmt.Println(detailLine)
		fmt.Println()
	}

	// Blocked summary with the command that unsticks each issue.
	blocked := columns[colBlocked]
	if len(blocked) > 0 {
		fmt.Printf("%s%s⚠  Blocked issues%s\n", colorBold, colorRed, colorReset)
		for _, card := range blocked {
			fmt.Printf("  %s#%d%s: %s (blocked by %s)\n",
				colorYellow, card.ID, colorReset, card.Title, joinIDs(card.BlockedBy, ", "))
			if len(card.BlockedBy) > 0 {
				fmt.Printf("       → %sitr close %d \"reason\"%s\n", colorCyan, card.BlockedBy[0], colorReset)
			}
		}
		fmt.Println()
	}

	// Summary line.
	doneCount := len(columns[colDone])
	inProgress := len(columns[colInProgress])
	blockedCount := len(blocked)

	fmt.Printf("%s%d issues%s", colorBold, len(issues), colorReset)
	if doneCount > 0 {
		fmt.Printf("  %s✓ %d done%s", colorGreen, doneCount, colorReset)
	}
	if inProgress > 0 {
		fmt.Printf("  %s● %d in progress%s", colorBlue, inProgress, colorReset)
	}
	if blockedCount > 0 {
		fmt.Printf("  %s⚠ %d blocked%s", colorRed, blockedCount, colorReset)
	}
	fmt.Println()

	return nil
}

func priorityColor(priority store.Priority) string {
	switch priority {
	case store.PriorityCritical:
		return colorRed + colorBold
	case store.PriorityHigh:
		return colorRed
	case store.PriorityMedium:
		return colorYellow
	case store.PriorityLow:
		return colorDim
	default:
		return ""
	}
}
