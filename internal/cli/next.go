package cli

import (
	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var (
	nextClaim   bool
	readyLimit  int
	readyStatus string
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Get the highest-urgency unblocked issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		issues, err := s.ListIssues(store.ListFilter{Statuses: []string{string(store.StatusOpen)}})
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			return emptyExit("No eligible issues found.")
		}

		cfg := urgency.Load(s)
		best := issues[0]
		bestScore := -1e308
		for _, iss := range issues {
			facts, err := issueFacts(s, iss.ID)
			if err != nil {
				return err
			}
			score, _ := urgency.Score(iss, facts, cfg)
			if score > bestScore {
				bestScore = score
				best = iss
			}
		}

		if nextClaim {
			if err := s.SetStatus(best.ID, store.StatusInProgress); err != nil {
				return err
			}
		}

		iss, err := s.GetIssue(best.ID)
		if err != nil {
			return err
		}
		detail, err := buildDetail(s, iss, cfg)
		if err != nil {
			return err
		}
		return printDetail(detail)
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List all unblocked, non-terminal issues by urgency",
	RunE: func(cmd *cobra.Command, args []string) error {
		var statuses []string
		if readyStatus != "" {
			statuses = []string{readyStatus}
		}
		return runList(store.ListFilter{Statuses: statuses}, "urgency", readyLimit, "No ready issues found.")
	},
}

func init() {
	nextCmd.Flags().BoolVar(&nextClaim, "claim", false, "Also set the issue to in-progress")
	readyCmd.Flags().IntVarP(&readyLimit, "limit", "n", 0, "Max results")
	readyCmd.Flags().StringVar(&readyStatus, "status", "", "Filter by status within ready set")
}
