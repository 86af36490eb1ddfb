package table

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change is one row-level edit that turns an old view into a new one.
type Change struct {
	Op    string   `json:"op"`
	Key   string   `json:"key"`
	Index int      `json:"index"`
	Cells []string `json:"cells,omitempty"`
}

// Diff lists the row changes between two renders of the same table.
// Deletes come first (indexes in old), then inserts and updates (indexes in next).
func Diff(old, next View) []Change {
	oldIdx := make(map[string]int, len(old.Rows))
	for i, r := range old.Rows {
		oldIdx[r.Key] = i
	}
	nextKeys := make(map[string]struct{}, len(next.Rows))
	for _, r := range next.Rows {
		nextKeys[r.Key] = struct{}{}
	}

	var changes []Change
	for i, r := range old.Rows {
		if _, ok := nextKeys[r.Key]; !ok {
			changes = append(changes, Change{Op: OpDelete, Key: r.Key, Index: i})
		}
	}

	for i, r := range next.Rows {
		j, ok := oldIdx[r.Key]
		if !ok {
			changes = append(changes, Change{Op: OpInsert, Key: r.Key, Index: i, Cells: r.Cells})
			continue
		}
		if !equalCells(old.Rows[j].Cells, r.Cells) {
			changes = append(changes, Change{Op: OpUpdate, Key: r.Key, Index: i, Cells: r.Cells})
		}
	}
	return changes
}

func equalCells(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
