package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
)

var (
	dependOn   int64
	undependOn int64
)

var dependCmd = &cobra.Command{
	Use:   "depend <id>",
	Short: "Add a dependency (issue becomes blocked by --on)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("on") {
			return store.InvalidValue("on", "", "issue ID")
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		created, err := s.AddDependency(dependOn, id)
		if err != nil {
			return err
		}

		if outFormat == formatJSON {
			return printJSON(map[string]any{
				"action":     "depend",
				"blocked_id": id,
				"blocker_id": dependOn,
				"created":    created,
			})
		}
		fmt.Printf("DEPEND: %d blocked by %d\n", id, dependOn)
		return nil
	},
}

var undependCmd = &cobra.Command{
	Use:   "undepend <id>",
	Short: "Remove a dependency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("on") {
			return store.InvalidValue("on", "", "issue ID")
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.RemoveDependency(undependOn, id); err != nil {
			return err
		}

		// Removing the edge may have freed the issue itself.
		var unblocked []store.UnblockedIssue
		blocked, err := s.IsBlocked(id)
		if err != nil {
			return err
		}
		if !blocked {
			iss, err := s.GetIssue(id)
			if err != nil {
				return err
			}
			if !iss.Status.Terminal() {
				unblocked = append(unblocked, store.UnblockedIssue{ID: iss.ID, Title: iss.Title})
			}
		}

		if outFormat == formatJSON {
			if err := printJSON(map[string]any{
				"action":     "undepend",
				"blocked_id": id,
				"blocker_id": undependOn,
			}); err != nil {
				return err
			}
		} else {
			fmt.Printf("UNDEPEND: %d no longer blocked by %d\n", id, undependOn)
		}
		return printUnblocked(unblocked)
	},
}

func init() {
	dependCmd.Flags().Int64Var(&dependOn, "on", 0, "Issue ID that blocks it")
	undependCmd.Flags().Int64Var(&undependOn, "on", 0, "Issue ID that was blocking it")
}
