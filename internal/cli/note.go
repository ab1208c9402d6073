package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
)

var noteAgent string

var noteCmd = &cobra.Command{
	Use:   "note <id> [text]",
	Short: "Append a note to an issue",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var content string
		if len(args) > 1 {
			content = args[1]
		} else {
			if stdinIsTerminal() {
				return store.InvalidValue("text", "", "non-empty string or pipe via stdin")
			}
			data, err := readStdin()
			if err != nil {
				return err
			}
			content = strings.TrimSpace(string(data))
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.AddNote(id, content, noteAgent)
		if err != nil {
			return err
		}

		if outFormat == formatJSON {
			return printJSON(n)
		}
		agent := ""
		if n.Agent != "" {
			agent = " (" + n.Agent + ")"
		}
		fmt.Printf("NOTE:%d ISSUE:%d%s %s\n", n.ID, n.IssueID, agent, n.Content)
		return nil
	},
}

func init() {
	noteCmd.Flags().StringVar(&noteAgent, "agent", "", "Agent/session identifier")
}
