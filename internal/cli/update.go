package cli

import (
	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var (
	updStatus      string
	updPriority    string
	updKind        string
	updTitle       string
	updContext     string
	updFiles       string
	updTags        string
	updAcceptance  string
	updParent      int64
	updAddTags     []string
	updRemoveTags  []string
	updAddFiles    []string
	updRemoveFiles []string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an issue",
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

		if _, err := s.GetIssue(id); err != nil {
			return err
		}

		changed := cmd.Flags().Changed
		if changed("status") {
			if err := store.ValidateStatus(updStatus); err != nil {
				return err
			}
			if err := s.SetStatus(id, store.Status(updStatus)); err != nil {
				return err
			}
		}
		if changed("priority") {
			if err := store.ValidatePriority(updPriority); err != nil {
				return err
			}
			if err := s.SetPriority(id, store.Priority(updPriority)); err != nil {
				return err
			}
		}
		if changed("kind") {
			if err := store.ValidateKind(updKind); err != nil {
				return err
			}
			if err := s.SetKind(id, store.Kind(updKind)); err != nil {
				return err
			}
		}
		if changed("title") {
			if err := s.SetTitle(id, updTitle); err != nil {
				return err
			}
		}
		if changed("context") {
			if err := s.SetContext(id, updContext); err != nil {
				return err
			}
		}
		if changed("acceptance") {
			if err := s.SetAcceptance(id, updAcceptance); err != nil {
				return err
			}
		}

		// --files and --tags replace the whole list; the add/remove
		// forms merge into it and lose to a replace in the same call.
		if changed("files") {
			if err := s.ReplaceFiles(id, splitCSV(updFiles)); err != nil {
				return err
			}
		} else if len(updAddFiles) > 0 || len(updRemoveFiles) > 0 {
			if err := s.ModifyFiles(id, updAddFiles, updRemoveFiles); err != nil {
				return err
			}
		}
		if changed("tags") {
			if err := s.ReplaceTags(id, splitCSV(updTags)); err != nil {
				return err
			}
		} else if len(updAddTags) > 0 || len(updRemoveTags) > 0 {
			if err := s.ModifyTags(id, updAddTags, updRemoveTags); err != nil {
				return err
			}
		}

		if changed("parent") {
			var p *int64
			if updParent != 0 {
				p = &updParent
			}
			if err := s.SetParent(id, p); err != nil {
				return err
			}
		}

		iss, err := s.GetIssue(id)
		if err != nil {
			return err
		}
		detail, err := buildDetail(s, iss, urgency.Load(s))
		if err != nil {
			return err
		}

		var unblocked []store.UnblockedIssue
		if changed("status") && store.Status(updStatus).Terminal() {
			unblocked, err = s.NewlyUnblocked(id)
			if err != nil {
				return err
			}
		}

		if outFormat == formatJSON && len(unblocked) > 0 {
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

func init() {
	updateCmd.Flags().StringVarP(&updStatus, "status", "s", "", "New status")
	updateCmd.Flags().StringVarP(&updPriority, "priority", "p", "", "New priority")
	updateCmd.Flags().StringVarP(&updKind, "kind", "k", "", "New kind")
	updateCmd.Flags().StringVar(&updTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updContext, "context", "c", "", "Replace context")
	updateCmd.Flags().StringVar(&updFiles, "files", "", "Replace files list (comma-separated)")
	updateCmd.Flags().StringVarP(&updTags, "tags", "t", "", "Replace tags list (comma-separated)")
	updateCmd.Flags().StringVarP(&updAcceptance, "acceptance", "a", "", "Replace acceptance criteria")
	updateCmd.Flags().Int64Var(&updParent, "parent", 0, "Set parent epic (0 clears)")
	updateCmd.Flags().StringArrayVar(&updAddTags, "add-tag", nil, "Append a tag (repeatable)")
	updateCmd.Flags().StringArrayVar(&updRemoveTags, "remove-tag", nil, "Remove a tag (repeatable)")
	updateCmd.Flags().StringArrayVar(&updAddFiles, "add-file", nil, "Append a file (repeatable)")
	updateCmd.Flags().StringArrayVar(&updRemoveFiles, "remove-file", nil, "Remove a file (repeatable)")
}
