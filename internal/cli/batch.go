package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Bulk operations",
}

var batchAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Bulk-create issues from JSON array on stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readStdin()
		if err != nil {
			return err
		}
		var items []store.BatchInput
		if err := json.Unmarshal(data, &items); err != nil {
			return store.ParseError(err)
		}

		// Validate everything before touching the database; the batch is
		// all-or-nothing.
		for _, item := range items {
			if item.Priority != "" {
				if err := store.ValidatePriority(item.Priority); err != nil {
					return err
				}
			}
			if item.Kind != "" {
				if err := store.ValidateKind(item.Kind); err != nil {
					return err
				}
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ids, err := s.BatchAdd(items)
		if err != nil {
			return err
		}

		cfg := urgency.Load(s)
		details := make([]*store.IssueDetail, 0, len(ids))
		for _, id := range ids {
			iss, err := s.GetIssue(id)
			if err != nil {
				return err
			}
			detail, err := buildDetail(s, iss, cfg)
			if err != nil {
				return err
			}
			details = append(details, detail)
		}

		if outFormat == formatJSON {
			return printJSON(details)
		}
		for _, detail := range details {
			if err := printDetail(detail); err != nil {
				return err
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	batchCmd.AddCommand(batchAddCmd)
}
