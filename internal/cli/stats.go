package cli

import (
	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Project health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := computeStats(s)
		if err != nil {
			return err
		}
		return printStats(st)
	},
}

// computeStats walks every issue once. Blocked, ready, average urgency
// and oldest-open only consider live issues; the count maps cover
// everything.
func computeStats(s *store.Store) (*store.Stats, error) {
	issues, err := s.AllIssues()
	if err != nil {
		return nil, err
	}
	cfg := urgency.Load(s)

	st := &store.Stats{
		Total:      int64(len(issues)),
		ByStatus:   map[string]int64{"open": 0, "in-progress": 0, "done": 0, "wontfix": 0},
		ByPriority: map[string]int64{"critical": 0, "high": 0, "medium": 0, "low": 0},
		ByKind:     map[string]int64{"bug": 0, "feature": 0, "task": 0, "epic": 0},
	}

	var urgencySum float64
	var activeCount int64
	for _, iss := range issues {
		st.ByStatus[string(iss.Status)]++
		st.ByPriority[string(iss.Priority)]++
		st.ByKind[string(iss.Kind)]++

		if iss.Status.Terminal() {
			continue
		}

		facts, err := issueFacts(s, iss.ID)
		if err != nil {
			return nil, err
		}
		if facts.Blocked {
			st.Blocked++
		} else {
			st.Ready++
		}

		score, _ := urgency.Score(iss, facts, cfg)
		urgencySum += score
		activeCount++

		if iss.Status == store.StatusOpen {
			days := urgency.WholeDaysSince(iss.CreatedAt)
			if st.OldestOpen == nil || days > st.OldestOpen.DaysOld {
				st.OldestOpen = &store.OldestOpen{ID: iss.ID, Title: iss.Title, DaysOld: days}
			}
		}
	}

	if activeCount > 0 {
		st.AvgUrgency = urgencySum / float64(activeCount)
	}
	return st, nil
}
