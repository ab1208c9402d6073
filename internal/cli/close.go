package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var closeWontfix bool

var closeCmd = &cobra.Command{
	Use:   "close <id> [reason]",
	Short: "Close an issue (shorthand for update --status done)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		// Reason comes from the argument, else from a pipe. An
		// interactive terminal means no reason, not a prompt.
		var reason string
		if len(args) > 1 {
			reason = args[1]
		} else if !stdinIsTerminal() {
			data, err := readStdin()
			if err != nil {
				return err
			}
			reason = strings.TrimSpace(string(data))
		}

		status := store.StatusDone
		if closeWontfix {
			status = store.StatusWontfix
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.CloseIssue(id, status, reason); err != nil {
			return err
		}

		iss, err := s.GetIssue(id)
		if err != nil {
			return err
		}
		detail, err := buildDetail(s, iss, urgency.Load(s))
		if err != nil {
			return err
		}
		unblocked, err := s.NewlyUnblocked(id)
		if err != nil {
			return err
		}

		if outFormat == formatJSON {
			obj, err := detailWithUnblocked(detail, unblocked)
			if err != nil {
				return err
			}
			return printJSON(obj)
		}
		if err := printDetail(detail); err != nil {
			return err
		}
		return printUnblocked(unblocked)
	},
}

// reopen undoes a close: status back to open, close reason cleared.
var reopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a closed issue",
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

		if err := s.ReopenIssue(id); err != nil {
			return err
		}

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

func init() {
	closeCmd.Flags().BoolVar(&closeWontfix, "wontfix", false, "Close as wontfix instead of done")
}
