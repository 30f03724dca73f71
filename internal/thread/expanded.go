package thread

import "sort"

// Expanded records which comments currently show their replies.
// It lives outside the tree so a reload does not collapse open branches.
// The zero value is an empty set.
type Expanded struct {
	ids map[string]struct{}
}

// NewExpanded returns a set holding the given ids
func NewExpanded(ids ...string) Expanded {
	e := Expanded{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		e.ids[id] = struct{}{}
	}
	return e
}

// Has reports whether id is expanded
func (e Expanded) Has(id string) bool {
	_, ok := e.ids[id]
	return ok
}

// Len returns the number of expanded ids
func (e Expanded) Len() int {
	return len(e.ids)
}

// Toggle returns a copy with id's membership flipped
func (e Expanded) Toggle(id string) Expanded {
	out := e.copy()
	if _, ok := out.ids[id]; ok {
		delete(out.ids, id)
	} else {
		out.ids[id] = struct{}{}
	}
	return out
}

// With returns a copy that contains id
func (e Expanded) With(id string) Expanded {
	if e.Has(id) {
		return e
	}
	out := e.copy()
	out.ids[id] = struct{}{}
	return out
}

// IDs returns the expanded ids in sorted order
func (e Expanded) IDs() []string {
	out := make([]string, 0, len(e.ids))
	for id := range e.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same ids
func (e Expanded) Equal(other Expanded) bool {
	if len(e.ids) != len(other.ids) {
		return false
	}
	for id := range e.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

func (e Expanded) copy() Expanded {
	out := Expanded{ids: make(map[string]struct{}, len(e.ids)+1)}
	for id := range e.ids {
		out.ids[id] = struct{}{}
	}
	return out
}
