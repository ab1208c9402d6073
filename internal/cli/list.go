package cli

import (
	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var (
	listAll            bool
	listStatuses       []string
	listPriorities     []string
	listKinds          []string
	listTags           []string
	listBlockedOnly    bool
	listIncludeBlocked bool
	listParent         int64
	listSort           string
	listLimit          int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues with filtering",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := store.ListFilter{
			Statuses:       listStatuses,
			Priorities:     listPriorities,
			Kinds:          listKinds,
			Tags:           listTags,
			BlockedOnly:    listBlockedOnly,
			IncludeBlocked: listIncludeBlocked,
			All:            listAll,
		}
		if cmd.Flags().Changed("parent") {
			p := listParent
			filter.ParentID = &p
		}
		return runList(filter, listSort, listLimit, "No matching issues found.")
	},
}

// blocked is list --blocked under its own name, since asking "what is
// stuck" is a first-class agent question.
var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List blocked issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(store.ListFilter{BlockedOnly: true}, "urgency", 0, "No blocked issues found.")
	},
}

// runList is the shared filter-score-sort-print pipeline behind list,
// blocked and ready.
func runList(filter store.ListFilter, sortKey string, limit int, emptyMsg string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	issues, err := s.ListIssues(filter)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return emptyExit(emptyMsg)
	}

	summaries, err := buildSummaries(s, issues, urgency.Load(s))
	if err != nil {
		return err
	}
	sortSummaries(summaries, sortKey)
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return printList(summaries)
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include all statuses")
	listCmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by status (repeatable)")
	listCmd.Flags().StringSliceVarP(&listPriorities, "priority", "p", nil, "Filter by priority (repeatable)")
	listCmd.Flags().StringSliceVarP(&listKinds, "kind", "k", nil, "Filter by kind (repeatable)")
	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "Filter by tag (repeatable, AND logic)")
	listCmd.Flags().BoolVar(&listBlockedOnly, "blocked", false, "Only show blocked issues")
	listCmd.Flags().BoolVar(&listIncludeBlocked, "include-blocked", false, "Include blocked issues in results")
	listCmd.Flags().Int64Var(&listParent, "parent", 0, "Show children of an epic")
	listCmd.Flags().StringVar(&listSort, "sort", "urgency", "Sort by: urgency|priority|created|updated|id")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Max results")
}
