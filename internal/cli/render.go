package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

// issueFacts loads the graph-derived score inputs for one issue.
func issueFacts(s *store.Store, id int64) (urgency.Facts, error) {
	blocked, err := s.IsBlocked(id)
	if err != nil {
		return urgency.Facts{}, err
	}
	blocking, err := s.BlocksActive(id)
	if err != nil {
		return urgency.Facts{}, err
	}
	notes, err := s.CountNotes(id)
	if err != nil {
		return urgency.Facts{}, err
	}
	return urgency.Facts{Blocking: blocking, Blocked: blocked, Notes: notes}, nil
}

// buildDetail assembles the full caller-facing view of one issue. Epics
// additionally carry their child summaries.
func buildDetail(s *store.Store, iss *store.Issue, cfg urgency.Config) (*store.IssueDetail, error) {
	facts, err := issueFacts(s, iss.ID)
	if err != nil {
		return nil, err
	}
	score, breakdown := urgency.Score(*iss, facts, cfg)

	blockedBy, err := s.Blockers(iss.ID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.Blocking(iss.ID)
	if err != nil {
		return nil, err
	}
	notes, err := s.Notes(iss.ID)
	if err != nil {
		return nil, err
	}

	detail := &store.IssueDetail{
		Issue:            *iss,
		Urgency:          score,
		BlockedBy:        blockedBy,
		Blocks:           blocks,
		IsBlocked:        facts.Blocked,
		Notes:            notes,
		UrgencyBreakdown: &breakdown,
	}

	if iss.Kind == store.KindEpic {
		children, err := s.ListIssues(store.ListFilter{ParentID: &iss.ID, All: true})
		if err != nil {
			return nil, err
		}
		if len(children) > 0 {
			summaries, err := buildSummaries(s, children, cfg)
			if err != nil {
				return nil, err
			}
			detail.Children = summaries
		}
	}
	return detail, nil
}

// buildSummaries scores a slice of issues into list rows, preserving
// input order.
func buildSummaries(s *store.Store, issues []store.Issue, cfg urgency.Config) ([]store.IssueSummary, error) {
	summaries := make([]store.IssueSummary, 0, len(issues))
	for _, iss := range issues {
		facts, err := issueFacts(s, iss.ID)
		if err != nil {
			return nil, err
		}
		score, _ := urgency.Score(iss, facts, cfg)
		blockedBy, err := s.Blockers(iss.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, store.IssueSummary{
			ID:         iss.ID,
			Title:      iss.Title,
			Status:     iss.Status,
			Priority:   iss.Priority,
			Kind:       iss.Kind,
			Urgency:    score,
			IsBlocked:  facts.Blocked,
			BlockedBy:  blockedBy,
			Tags:       iss.Tags,
			Files:      iss.Files,
			Acceptance: iss.Acceptance,
		})
	}
	return summaries, nil
}

// sortSummaries orders list rows. Urgency is the default and sorts
// descending; created and updated keep insertion order, which AllIssues
// and ListIssues already provide.
func sortSummaries(summaries []store.IssueSummary, key string) {
	switch key {
	case "priority":
		sort.SliceStable(summaries, func(i, j int) bool {
			return priorityRank(summaries[i].Priority) < priorityRank(summaries[j].Priority)
		})
	case "id":
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].ID < summaries[j].ID
		})
	case "created", "updated":
	default:
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Urgency > summaries[j].Urgency
		})
	}
}

func priorityRank(p store.Priority) int {
	switch p {
	case store.PriorityCritical:
		return 0
	case store.PriorityHigh:
		return 1
	case store.PriorityMedium:
		return 2
	case store.PriorityLow:
		return 3
	}
	return 4
}

func joinIDs(ids []int64, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, sep)
}

func truncateTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// printDetail renders one issue detail in the active output format.
func printDetail(d *store.IssueDetail) error {
	switch outFormat {
	case formatJSON:
		return printJSON(d)
	case formatPretty:
		fmt.Println(detailPretty(d))
	default:
		fmt.Println(detailCompact(d))
	}
	return nil
}

// detailCompact is the machine-first KEY:value rendering agents parse.
func detailCompact(d *store.IssueDetail) string {
	var lines []string

	first := fmt.Sprintf("ID:%d STATUS:%s PRIORITY:%s KIND:%s URGENCY:%.1f",
		d.ID, d.Status, d.Priority, d.Kind, d.Urgency)
	if len(d.BlockedBy) > 0 {
		first += " BLOCKED_BY:" + joinIDs(d.BlockedBy, ",")
	}
	if len(d.Blocks) > 0 {
		first += " BLOCKS:" + joinIDs(d.Blocks, ",")
	}
	lines = append(lines, first)

	if len(d.Tags) > 0 {
		lines = append(lines, "TAGS:"+strings.Join(d.Tags, ","))
	}
	if len(d.Files) > 0 {
		lines = append(lines, "FILES:"+strings.Join(d.Files, ","))
	}
	lines = append(lines, "TITLE: "+d.Title)
	if d.Context != "" {
		lines = append(lines, "CONTEXT: "+d.Context)
	}
	if d.Acceptance != "" {
		lines = append(lines, "ACCEPTANCE: "+d.Acceptance)
	}
	if d.ParentID != nil {
		lines = append(lines, fmt.Sprintf("PARENT: %d", *d.ParentID))
	}
	if d.CloseReason != "" {
		lines = append(lines, "CLOSE_REASON: "+d.CloseReason)
	}
	lines = append(lines, "CREATED: "+d.CreatedAt)
	lines = append(lines, "UPDATED: "+d.UpdatedAt)

	if d.UrgencyBreakdown != nil {
		lines = append(lines, "--- URGENCY BREAKDOWN ---")
		var parts []string
		for _, c := range d.UrgencyBreakdown.Components {
			if c.Value != 0 {
				parts = append(parts, fmt.Sprintf("%s=%.1f", c.Name, c.Value))
			}
		}
		lines = append(lines, strings.Join(parts, " "))
	}

	if len(d.Notes) > 0 {
		lines = append(lines, "--- NOTES ---")
		for _, n := range d.Notes {
			agent := ""
			if n.Agent != "" {
				agent = " (" + n.Agent + ")"
			}
			lines = append(lines, fmt.Sprintf("[%s]%s %s", n.CreatedAt, agent, n.Content))
		}
	}
	return strings.Join(lines, "\n")
}

func detailPretty(d *store.IssueDetail) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Issue #%d: %s", d.ID, d.Title))
	lines = append(lines, fmt.Sprintf("  Status: %s  Priority: %s  Kind: %s  Urgency: %.1f",
		d.Status, d.Priority, d.Kind, d.Urgency))
	if len(d.Tags) > 0 {
		lines = append(lines, "  Tags: "+strings.Join(d.Tags, ", "))
	}
	if len(d.Files) > 0 {
		lines = append(lines, "  Files: "+strings.Join(d.Files, ", "))
	}
	if d.Context != "" {
		lines = append(lines, "  Context: "+d.Context)
	}
	if d.Acceptance != "" {
		lines = append(lines, "  Acceptance: "+d.Acceptance)
	}
	if len(d.BlockedBy) > 0 {
		lines = append(lines, "  Blocked by: "+joinIDs(d.BlockedBy, ", "))
	}
	if len(d.Blocks) > 0 {
		lines = append(lines, "  Blocks: "+joinIDs(d.Blocks, ", "))
	}
	if len(d.Notes) > 0 {
		lines = append(lines, "  Notes:")
		for _, n := range d.Notes {
			lines = append(lines, fmt.Sprintf("    [%s] %s", n.CreatedAt, n.Content))
		}
	}
	return strings.Join(lines, "\n")
}

// printList renders issue summaries in the active output format.
func printList(summaries []store.IssueSummary) error {
	switch outFormat {
	case formatJSON:
		return printJSON(summaries)
	case formatPretty:
		fmt.Println(listPretty(summaries))
	default:
		fmt.Println(listCompact(summaries))
	}
	return nil
}

func listCompact(summaries []store.IssueSummary) string {
	blocks := make([]string, 0, len(summaries))
	for _, i := range summaries {
		first := fmt.Sprintf("ID:%d STATUS:%s PRIORITY:%s KIND:%s URGENCY:%.1f",
			i.ID, i.Status, i.Priority, i.Kind, i.Urgency)
		if len(i.BlockedBy) > 0 {
			first += " BLOCKED_BY:" + joinIDs(i.BlockedBy, ",")
		}
		lines := []string{first}
		if len(i.Tags) > 0 {
			lines = append(lines, "TAGS:"+strings.Join(i.Tags, ","))
		}
		if len(i.Files) > 0 {
			lines = append(lines, "FILES:"+strings.Join(i.Files, ","))
		}
		lines = append(lines, "TITLE: "+i.Title)
		if i.Acceptance != "" {
			lines = append(lines, "ACCEPTANCE: "+i.Acceptance)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func listPretty(summaries []store.IssueSummary) string {
	if len(summaries) == 0 {
		return ""
	}
	var lines []string
	lines = append(lines, fmt.Sprintf(" %3s | %5s | %-11s | %-8s | %-7s | %-40s | Blocked",
		"#", "Urg", "Status", "Pri", "Kind", "Title"))
	lines = append(lines, "-----|-------|-------------|----------|---------|------------------------------------------|--------")
	for _, i := range summaries {
		lines = append(lines, fmt.Sprintf(" %3d | %5.1f | %-11s | %-8s | %-7s | %-40s | %s",
			i.ID, i.Urgency, i.Status, i.Priority, i.Kind,
			truncateTitle(i.Title, 40), joinIDs(i.BlockedBy, ", ")))
	}
	return strings.Join(lines, "\n")
}

// printUnblocked announces issues freed by a close. Nothing prints when
// the list is empty.
func printUnblocked(unblocked []store.UnblockedIssue) error {
	if len(unblocked) == 0 {
		return nil
	}
	if outFormat == formatJSON {
		return printJSON(unblocked)
	}
	for _, u := range unblocked {
		fmt.Printf("UNBLOCKED:%d %q\n", u.ID, u.Title)
	}
	return nil
}

// detailWithUnblocked merges an issue detail and its unblocked list
// into one JSON object, the shape close and update emit in json mode.
func detailWithUnblocked(d *store.IssueDetail, unblocked []store.UnblockedIssue) (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, store.ParseError(err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, store.ParseError(err)
	}
	if unblocked == nil {
		unblocked = []store.UnblockedIssue{}
	}
	obj["unblocked"] = unblocked
	return obj, nil
}

// printGraph renders the dependency graph: DOT in pretty mode, edge
// lines in compact, nodes+edges in json.
func printGraph(g *store.GraphOutput) error {
	switch outFormat {
	case formatJSON:
		return printJSON(g)
	case formatPretty:
		fmt.Println(graphDOT(g))
	default:
		fmt.Println(graphCompact(g))
	}
	return nil
}

func graphCompact(g *store.GraphOutput) string {
	var lines []string
	for _, n := range g.Nodes {
		blocked := ""
		if n.IsBlocked {
			blocked = " [BLOCKED]"
		}
		lines = append(lines, fmt.Sprintf("NODE:%d STATUS:%s URGENCY:%.1f%s %q",
			n.ID, n.Status, n.Urgency, blocked, n.Title))
	}
	for _, e := range g.Edges {
		lines = append(lines, fmt.Sprintf("EDGE: %d -> %d (%s)", e.From, e.To, e.Type))
	}
	return strings.Join(lines, "\n")
}

// graphDOT renders Graphviz source: blocked nodes fill gray, long
// titles truncate at 30 characters.
func graphDOT(g *store.GraphOutput) string {
	var lines []string
	lines = append(lines, "digraph itr {")
	lines = append(lines, "  rankdir=LR;")
	for _, n := range g.Nodes {
		style := ""
		if n.IsBlocked {
			style = " style=filled fillcolor=gray"
		}
		lines = append(lines, fmt.Sprintf("  %d [label=\"%d: %s\" shape=box%s]",
			n.ID, n.ID, truncateTitle(n.Title, 30), style))
	}
	for _, e := range g.Edges {
		lines = append(lines, fmt.Sprintf("  %d -> %d", e.From, e.To))
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

// printStats renders the project health summary. Compact and pretty
// share one layout.
func printStats(st *store.Stats) error {
	if outFormat == formatJSON {
		return printJSON(st)
	}
	fmt.Printf("TOTAL:%d\n", st.Total)
	fmt.Printf("BY_STATUS: open=%d in-progress=%d done=%d wontfix=%d\n",
		st.ByStatus["open"], st.ByStatus["in-progress"], st.ByStatus["done"], st.ByStatus["wontfix"])
	fmt.Printf("BY_PRIORITY: critical=%d high=%d medium=%d low=%d\n",
		st.ByPriority["critical"], st.ByPriority["high"], st.ByPriority["medium"], st.ByPriority["low"])
	fmt.Printf("BY_KIND: bug=%d feature=%d task=%d epic=%d\n",
		st.ByKind["bug"], st.ByKind["feature"], st.ByKind["task"], st.ByKind["epic"])
	fmt.Printf("BLOCKED:%d READY:%d\n", st.Blocked, st.Ready)
	fmt.Printf("AVG_URGENCY:%.1f\n", st.AvgUrgency)
	if st.OldestOpen != nil {
		fmt.Printf("OLDEST_OPEN: ID:%d DAYS:%d %q\n",
			st.OldestOpen.ID, st.OldestOpen.DaysOld, st.OldestOpen.Title)
	}
	return nil
}
