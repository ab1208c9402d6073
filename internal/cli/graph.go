package cli

import (
	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var graphAll bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Output the dependency graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var issues []store.Issue
		if graphAll {
			issues, err = s.AllIssues()
		} else {
			issues, err = s.ListIssues(store.ListFilter{IncludeBlocked: true})
		}
		if err != nil {
			return err
		}

		cfg := urgency.Load(s)
		deps, err := s.AllDependencies()
		if err != nil {
			return err
		}

		present := make(map[int64]bool, len(issues))
		nodes := make([]store.GraphNode, 0, len(issues))
		for _, iss := range issues {
			facts, err := issueFacts(s, iss.ID)
			if err != nil {
				return err
			}
			score, _ := urgency.Score(iss, facts, cfg)
			nodes = append(nodes, store.GraphNode{
				ID:        iss.ID,
				Title:     iss.Title,
				Status:    iss.Status,
				Urgency:   score,
				IsBlocked: facts.Blocked,
			})
			present[iss.ID] = true
		}

		// Edges whose endpoints fell out of the node set would dangle in
		// the rendering, so they drop with them.
		edges := make([]store.GraphEdge, 0, len(deps))
		for _, d := range deps {
			if present[d.BlockerID] && present[d.BlockedID] {
				edges = append(edges, store.GraphEdge{From: d.BlockerID, To: d.BlockedID, Type: "blocks"})
			}
		}

		return printGraph(&store.GraphOutput{Nodes: nodes, Edges: edges})
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphAll, "all", false, "Include resolved issues")
}
