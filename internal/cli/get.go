package cli

import (
	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/urgency"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get full detail for a single issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		iss, err := s.GetIssue(id)
		if err != nil {
			return err
		}
		detail, err := buildDetail(s, iss, urgency.Load(s))
		if err != nil {
			return err
		}
		return printDetail(detail)
	},
}
