package thread

import (
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Tree is an immutable comment thread
type Tree struct {
	nodes    map[string]Comment
	children map[string][]string
	roots    []string
}

// New returns an empty tree
func New() *Tree {
	return &Tree{
		nodes:    map[string]Comment{},
		children: map[string][]string{},
	}
}

// FromNested mirrors a server snapshot, keeping its order.
// A repeated id is ignored after its first occurrence.
func FromNested(roots []Nested) *Tree {
	t := New()
	var walk func(parentID string, list []Nested)
	walk = func(parentID string, list []Nested) {
		for _, n := range list {
			if n.ID == "" {
				continue
			}
			if _, dup := t.nodes[n.ID]; dup {
				continue
			}
			c := n.Comment
			c.ParentID = parentID
			t.nodes[c.ID] = c
			if parentID == "" {
				t.roots = append(t.roots, c.ID)
			} else {
				t.children[parentID] = append(t.children[parentID], c.ID)
			}
			walk(c.ID, n.ReplyList)
		}
	}
	walk("", roots)
	t.recount()
	return t
}

// FromFlat assembles a thread from rows linked by ParentID.
// Replies are ordered oldest first, roots newest first. A reply whose parent
// is not among the rows is promoted to a root.
func FromFlat(rows []Comment) *Tree {
	sorted := make([]Comment, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	t := New()
	for _, c := range sorted {
		if _, dup := t.nodes[c.ID]; dup {
			continue
		}
		t.nodes[c.ID] = c
	}

	placed := make(map[string]bool, len(t.nodes))
	for _, c := range sorted {
		if placed[c.ID] {
			continue
		}
		placed[c.ID] = true
		_, parentKnown := t.nodes[c.ParentID]
		if c.ParentID != "" && c.ParentID != c.ID && parentKnown {
			t.children[c.ParentID] = append(t.children[c.ParentID], c.ID)
			continue
		}
		if c.ParentID != "" {
			c.ParentID = ""
			t.nodes[c.ID] = c
		}
		t.roots = append(t.roots, c.ID)
	}

	sort.SliceStable(t.roots, func(i, j int) bool {
		return t.nodes[t.roots[i]].Timestamp.After(t.nodes[t.roots[j]].Timestamp)
	})
	t.recount()
	return t
}

// recount sets every node's Replies to its number of direct children
func (t *Tree) recount() {
	for id, c := range t.nodes {
		c.Replies = len(t.children[id])
		t.nodes[id] = c
	}
}

// Len returns the number of comments in the tree
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns the comment with the given id
func (t *Tree) Get(id string) (Comment, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// Roots returns top-level comments in thread order
func (t *Tree) Roots() []Comment {
	return t.collect(t.roots)
}

// Children returns the direct replies of a comment in reply order
func (t *Tree) Children(id string) []Comment {
	return t.collect(t.children[id])
}

func (t *Tree) collect(ids []string) []Comment {
	out := make([]Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.nodes[id])
	}
	return out
}

// Depth returns 0 for a root, 1 for its replies and so on; -1 if id is unknown
func (t *Tree) Depth(id string) int {
	c, ok := t.nodes[id]
	if !ok {
		return -1
	}
	depth := 0
	for c.ParentID != "" && depth <= len(t.nodes) {
		parent, ok := t.nodes[c.ParentID]
		if !ok {
			break
		}
		c = parent
		depth++
	}
	return depth
}

// SubtreeSize returns 1 plus the number of descendants; 0 if id is unknown
func (t *Tree) SubtreeSize(id string) int {
	if _, ok := t.nodes[id]; !ok {
		return 0
	}
	return 1 + len(t.Descendants(id))
}

// Descendants returns the ids below a comment in depth-first pre-order
func (t *Tree) Descendants(id string) []string {
	var out []string
	stack := reverse(t.children[id])
	seen := map[string]bool{id: true}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		stack = append(stack, reverse(t.children[next])...)
	}
	return out
}

func reverse(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

// Walk visits comments depth-first in thread order until fn returns false
func (t *Tree) Walk(fn func(c Comment, depth int) bool) {
	var visit func(ids []string, depth int) bool
	visit = func(ids []string, depth int) bool {
		for _, id := range ids {
			if !fn(t.nodes[id], depth) {
				return false
			}
			if !visit(t.children[id], depth+1) {
				return false
			}
		}
		return true
	}
	visit(t.roots, 0)
}

// Nested renders the tree back into its wire shape.
// Replies counters are taken from the structure, not from stored values.
func (t *Tree) Nested() []Nested {
	var build func(ids []string) []Nested
	build = func(ids []string) []Nested {
		out := make([]Nested, 0, len(ids))
		for _, id := range ids {
			c := t.nodes[id]
			kids := t.children[id]
			c.Replies = len(kids)
			out = append(out, Nested{Comment: c, ReplyList: build(kids)})
		}
		return out
	}
	return build(t.roots)
}

// AddReply appends a locally synthesized reply under parentID.
// Only the parent changes: its reply list grows by one and its Replies counter
// goes up by one. When parentID is absent the receiver is returned as is,
// together with ErrCommentNotFound.
func (t *Tree) AddReply(parentID, content string, author Author, now time.Time) (*Tree, Comment, error) {
	parent, ok := t.nodes[parentID]
	if !ok {
		return t, Comment{}, ErrCommentNotFound
	}

	reply := Comment{
		ID:        parentID + "-reply-" + uuid.NewString(),
		ParentID:  parentID,
		Author:    author,
		Content:   content,
		Timestamp: now,
	}

	nt := t.clone()
	nt.nodes[reply.ID] = reply

	nt.children = make(map[string][]string, len(t.children)+1)
	maps.Copy(nt.children, t.children)
	kids := t.children[parentID]
	grown := make([]string, len(kids), len(kids)+1)
	copy(grown, kids)
	nt.children[parentID] = append(grown, reply.ID)

	parent.Replies++
	nt.nodes[parentID] = parent

	return nt, reply, nil
}

// AddRoot puts a locally synthesized comment at the top of the thread
func (t *Tree) AddRoot(content string, author Author, now time.Time) (*Tree, Comment) {
	c := Comment{
		ID:        "comment-" + uuid.NewString(),
		Author:    author,
		Content:   content,
		Timestamp: now,
	}

	nt := t.clone()
	nt.nodes[c.ID] = c
	nt.roots = append([]string{c.ID}, t.roots...)
	return nt, c
}

// ToggleLike flips IsLiked on one comment and moves Likes by one in the same
// direction. The count is not clamped at zero.
func (t *Tree) ToggleLike(id string) (*Tree, error) {
	c, ok := t.nodes[id]
	if !ok {
		return t, ErrCommentNotFound
	}
	if c.IsLiked {
		c.Likes--
	} else {
		c.Likes++
	}
	c.IsLiked = !c.IsLiked

	nt := t.clone()
	nt.nodes[id] = c
	return nt, nil
}

// SetLike overwrites the like state of one comment with authoritative values
func (t *Tree) SetLike(id string, isLiked bool, likes int) (*Tree, error) {
	c, ok := t.nodes[id]
	if !ok {
		return t, ErrCommentNotFound
	}
	if c.IsLiked == isLiked && c.Likes == likes {
		return t, nil
	}
	c.IsLiked = isLiked
	c.Likes = likes

	nt := t.clone()
	nt.nodes[id] = c
	return nt, nil
}

// clone copies the node map, O(n) per mutation. The children map, child
// slices and roots are shared; a mutation that changes structure replaces
// them instead of writing in place.
func (t *Tree) clone() *Tree {
	nt := &Tree{
		nodes:    make(map[string]Comment, len(t.nodes)+1),
		children: t.children,
		roots:    t.roots,
	}
	maps.Copy(nt.nodes, t.nodes)
	return nt
}
