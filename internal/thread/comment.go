// Package thread keeps a comment thread as an arena of nodes addressed by id.
//
// Every mutation returns a new *Tree and leaves the receiver untouched, so a
// caller still holding the previous tree keeps seeing the previous state.
package thread

import (
	"errors"
	"time"
)

// MaxIndentLevel is the deepest visual indentation a reply gets; the data keeps nesting
const MaxIndentLevel = 3

// ErrCommentNotFound is returned when an operation targets an id absent from the tree
var ErrCommentNotFound = errors.New("comment not found")

// Author is the user summary attached to a comment
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
	Verified bool   `json:"verified"`
}

// Comment is the payload of a single node
type Comment struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"likes"`
	IsLiked   bool      `json:"isLiked"`
	Replies   int       `json:"replies"` // direct replies
}

// Nested is the recursive shape a thread travels in over the wire
type Nested struct {
	Comment
	ReplyList []Nested `json:"replyList"`
}

// TotalComments counts every comment of a nested snapshot, replies included
func TotalComments(comments []Nested) int {
	total := len(comments)
	for _, c := range comments {
		total += TotalComments(c.ReplyList)
	}
	return total
}

// IndentLevel clamps a nesting depth to the indentation used for rendering
func IndentLevel(depth int) int {
	if depth < 0 {
		return 0
	}
	return min(depth, MaxIndentLevel)
}
