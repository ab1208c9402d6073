package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BatchAdd creates every issue in one transaction, then wires the
// dependency edges. blocked_by entries are issue IDs or "@N" references
// to the Nth entry of the same batch, forward references included. Any
// failure rolls the whole batch back.
func (s *Store) BatchAdd(items []BatchInput) ([]int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, DBError(fmt.Errorf("begin batch: %w", err))
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		iss, err := createIssue(tx, NewIssue{
			Title:      item.Title,
			Priority:   Priority(item.Priority),
			Kind:       Kind(item.Kind),
			Context:    item.Context,
			Files:      item.Files,
			Tags:       item.Tags,
			Acceptance: item.Acceptance,
			ParentID:   item.ParentID,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, iss.ID)
	}

	for idx, item := range items {
		blockedID := ids[idx]
		for _, dep := range item.BlockedBy {
			blockerID, err := resolveBatchRef(dep, ids)
			if err != nil {
				return nil, err
			}
			if _, err := addDependency(tx, blockerID, blockedID); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, DBError(fmt.Errorf("commit batch: %w", err))
	}
	return ids, nil
}

// resolveBatchRef turns one blocked_by entry into a concrete issue ID.
// Strings are "@N" batch references or decimal IDs; numbers must be
// integral. ids holds the created IDs in batch input order.
func resolveBatchRef(dep any, ids []int64) (int64, error) {
	switch v := dep.(type) {
	case string:
		if after, ok := strings.CutPrefix(v, "@"); ok {
			idx, err := strconv.ParseUint(after, 10, 63)
			if err != nil {
				return 0, InvalidValue("blocked_by", v, "@N where N is a batch index")
			}
			if int(idx) >= len(ids) {
				return 0, InvalidValue("blocked_by", v, fmt.Sprintf("@0 to @%d", len(ids)-1))
			}
			return ids[idx], nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, InvalidValue("blocked_by", v, "integer ID or @N batch reference")
		}
		return n, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, InvalidValue("blocked_by", v.String(), "integer ID or @N batch reference")
		}
		return n, nil
	case float64:
		// Plain json.Unmarshal hands numbers over as float64.
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return 0, InvalidValue("blocked_by", strconv.FormatFloat(v, 'f', -1, 64), "integer ID or @N batch reference")
	default:
		raw, _ := json.Marshal(dep)
		return 0, InvalidValue("blocked_by", string(raw), "integer ID or @N batch reference")
	}
}
