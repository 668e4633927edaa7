package store

import (
	"sort"
	"strconv"
)

// Merge returns a new map holding `c` overwritten by `update`.
func (c Cursors) Merge(update Cursors) Cursors {
	out := make(Cursors, len(c)+len(update))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range update {
		out[k] = v
	}
	return out
}

// Get returns the cursor of given dialog, 0 if there is no prior progress.
func (c Cursors) Get(dialogID int64) int64 {
	return c[dialogID]
}

// Copy returns a shallow copy, nil for nil.
func (c Cursors) Copy() Cursors {
	if c == nil {
		return nil
	}
	out := make(Cursors, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// DialogIDs returns keys in ascending order.
func (c Cursors) DialogIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for k := range c {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func formatID(id int64) []byte {
	return []byte(strconv.FormatInt(id, 10))
}

func parseID(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), 10, 64)
}
