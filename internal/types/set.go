package types

import (
	"slices"
	"strings"
)

// Set is an immutable sorted set of TypeIDs. The zero value is empty.
type Set struct {
	ids []TypeID
}

// NewSet builds a set from ids, dropping NoTypeID and duplicates.
func NewSet(ids ...TypeID) Set {
	out := make([]TypeID, 0, len(ids))
	for _, id := range ids {
		if id.IsValid() {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return Set{ids: slices.Compact(out)}
}

func (s Set) Len() int { return len(s.ids) }

func (s Set) Empty() bool { return len(s.ids) == 0 }

// Contains reports membership by identity.
func (s Set) Contains(id TypeID) bool {
	_, ok := slices.BinarySearch(s.ids, id)
	return ok
}

// IDs returns a copy of the members in ascending order.
func (s Set) IDs() []TypeID {
	return slices.Clone(s.ids)
}

// Union returns s ∪ other.
func (s Set) Union(other Set) Set {
	if other.Empty() {
		return s
	}
	if s.Empty() {
		return other
	}
	merged := make([]TypeID, 0, len(s.ids)+len(other.ids))
	merged = append(merged, s.ids...)
	merged = append(merged, other.ids...)
	return NewSet(merged...)
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s.ids, other.ids)
}

// SupersetOf reports whether every member of other is in s.
func (s Set) SupersetOf(other Set) bool {
	for _, id := range other.ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// Format renders the set with names from in, sorted by name.
func (s Set) Format(in *Interner) string {
	names := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		names = append(names, in.String(id))
	}
	slices.Sort(names)
	return "{" + strings.Join(names, ", ") + "}"
}
