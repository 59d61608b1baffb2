package models

import "strings"

// Snapshot is the unit a store loads and saves: every bill in collection
// order plus the active bill ID (empty when nothing is selected).
type Snapshot struct {
	Bills        []Bill `json:"bills"`
	ActiveBillID string `json:"activeBillId,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{ActiveBillID: s.ActiveBillID}
	if s.Bills != nil {
		out.Bills = make([]Bill, len(s.Bills))
		for i, b := range s.Bills {
			out.Bills[i] = b.Clone()
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
