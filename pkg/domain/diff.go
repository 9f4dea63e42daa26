package domain

import (
	"reflect"
)

// ListDiff represents the changes between two block lists.
// It is designed to be serialized to JSON for partial updates on the client.
type ListDiff struct {
	// Added holds blocks present only in the new list.
	Added []Block `json:"added,omitempty"`

	// Removed holds the IDs of blocks present only in the old list.
	Removed []string `json:"removed,omitempty"`

	// Changed holds blocks whose content, style or visibility changed.
	Changed []Block `json:"changed,omitempty"`

	// Order is the full new ID sequence, set only when the relative order changed.
	Order []string `json:"order,omitempty"`
}

// IsEmpty reports whether the diff carries no change.
func (d *ListDiff) IsEmpty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 && len(d.Order) == 0)
}

// Diff calculates the difference between oldList and newList.
// If oldList is nil, every block of newList is reported as added.
func Diff(oldList, newList []Block) *ListDiff {
	diff := &ListDiff{}

	before := make(map[string]Block, len(oldList))
	for _, b := range oldList {
		before[b.ID] = b
	}
	after := make(map[string]bool, len(newList))

	for _, b := range newList {
		after[b.ID] = true
		prev, ok := before[b.ID]
		if !ok {
			diff.Added = append(diff.Added, b)
			continue
		}
		if prev.Visible != b.Visible ||
			!reflect.DeepEqual(prev.Content, b.Content) ||
			!reflect.DeepEqual(prev.Style, b.Style) {
			diff.Changed = append(diff.Changed, b)
		}
	}

	for _, b := range oldList {
		if !after[b.ID] {
			diff.Removed = append(diff.Removed, b.ID)
		}
	}

	// Relative order of the survivors; additions at the tail and removals do not
	// count as a reorder on their own.
	var oldSeq, newSeq []string
	for _, b := range oldList {
		if after[b.ID] {
			oldSeq = append(oldSeq, b.ID)
		}
	}
	for _, b := range newList {
		if _, ok := before[b.ID]; ok {
			newSeq = append(newSeq, b.ID)
		}
	}
	if !reflect.DeepEqual(oldSeq, newSeq) {
		diff.Order = make([]string, len(newList))
		for i, b := range newList {
			diff.Order[i] = b.ID
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}
