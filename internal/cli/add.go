package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var (
	addPriority   string
	addKind       string
	addContext    string
	addFiles      string
	addTags       string
	addAcceptance string
	addBlockedBy  string
	addParent     int64
	addStdinJSON  bool
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a new issue",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, blockedBy, err := addInput(cmd, args)
		if err != nil {
			return err
		}
		// Omitted fields stay empty and pick up the store defaults.
		if in.Priority != "" {
			if err := store.ValidatePriority(string(in.Priority)); err != nil {
				return err
			}
		}
		if in.Kind != "" {
			if err := store.ValidateKind(string(in.Kind)); err != nil {
				return err
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		iss, err := s.CreateIssue(in)
		if err != nil {
			return err
		}
		for _, blockerID := range blockedBy {
			if _, err := s.AddDependency(blockerID, iss.ID); err != nil {
				return err
			}
		}

		detail, err := buildDetail(s, iss, urgency.Load(s))
		if err != nil {
			return err
		}
		return printDetail(detail)
	},
}

// addInput assembles the new issue from flags, or from a JSON object on
// stdin when --stdin-json is set. Flag-form blocked_by is a CSV of
// issue IDs; entries that fail to parse are dropped.
func addInput(cmd *cobra.Command, args []string) (store.NewIssue, []int64, error) {
	if addStdinJSON {
		data, err := readStdin()
		if err != nil {
			return store.NewIssue{}, nil, err
		}
		var item store.BatchInput
		if err := json.Unmarshal(data, &item); err != nil {
			return store.NewIssue{}, nil, store.ParseError(err)
		}
		var blockedBy []int64
		for _, dep := range item.BlockedBy {
			if f, ok := dep.(float64); ok && f == float64(int64(f)) {
				blockedBy = append(blockedBy, int64(f))
			}
		}
		return store.NewIssue{
			Title:      item.Title,
			Priority:   store.Priority(item.Priority),
			Kind:       store.Kind(item.Kind),
			Context:    item.Context,
			Files:      item.Files,
			Tags:       item.Tags,
			Acceptance: item.Acceptance,
			ParentID:   item.ParentID,
		}, blockedBy, nil
	}

	if len(args) == 0 || args[0] == "" {
		return store.NewIssue{}, nil, store.InvalidValue("title", "", "non-empty string")
	}

	var blockedBy []int64
	if addBlockedBy != "" {
		for _, part := range splitCSV(addBlockedBy) {
			if id, err := strconv.ParseInt(part, 10, 64); err == nil {
				blockedBy = append(blockedBy, id)
			}
		}
	}

	var parentID *int64
	if cmd.Flags().Changed("parent") {
		p := addParent
		parentID = &p
	}

	return store.NewIssue{
		Title:      args[0],
		Priority:   store.Priority(addPriority),
		Kind:       store.Kind(addKind),
		Context:    addContext,
		Files:      splitCSV(addFiles),
		Tags:       splitCSV(addTags),
		Acceptance: addAcceptance,
		ParentID:   parentID,
	}, blockedBy, nil
}

func init() {
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "Priority: critical|high|medium|low")
	addCmd.Flags().StringVarP(&addKind, "kind", "k", "task", "Kind: bug|feature|task|epic")
	addCmd.Flags().StringVarP(&addContext, "context", "c", "", "Freeform context/description")
	addCmd.Flags().StringVar(&addFiles, "files", "", "Comma-separated file paths")
	addCmd.Flags().StringVarP(&addTags, "tags", "t", "", "Comma-separated tags")
	addCmd.Flags().StringVarP(&addAcceptance, "acceptance", "a", "", "Acceptance criteria")
	addCmd.Flags().StringVarP(&addBlockedBy, "blocked-by", "b", "", "Comma-separated issue IDs this depends on")
	addCmd.Flags().Int64Var(&addParent, "parent", 0, "Parent epic ID")
	addCmd.Flags().BoolVar(&addStdinJSON, "stdin-json", false, "Read a JSON issue object from stdin")
}
