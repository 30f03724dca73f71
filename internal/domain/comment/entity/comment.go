package entity

import (
	"errors"
	"time"

	"github.com/nextstepz/community/internal/thread"
)

// TargetType is the kind of content a thread hangs under
type TargetType string

const (
	TargetPost     TargetType = "post"
	TargetQuestion TargetType = "question"
)

// Valid reports whether t is a known target kind
func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetQuestion
}

// MaxLength is the longest comment accepted under this target kind
func (t TargetType) MaxLength() int {
	if t == TargetQuestion {
		return MaxQuestionCommentLength
	}
	return MaxPostCommentLength
}

const (
	MaxPostCommentLength     = 1000
	MaxQuestionCommentLength = 500
)

// Target identifies the post or question a comment belongs to
type Target struct {
	Type TargetType
	ID   string
}

// Comment is one stored comment row
type Comment struct {
	ID         string
	Target     Target
	ParentID   string
	Author     thread.Author
	Content    string
	CreatedAt  time.Time
	LikesCount int
	IsLiked    bool
}

// Node converts the row into a thread node
func (c Comment) Node() thread.Comment {
	return thread.Comment{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Author:    c.Author,
		Content:   c.Content,
		Timestamp: c.CreatedAt,
		Likes:     c.LikesCount,
		IsLiked:   c.IsLiked,
	}
}

// LikeResult is the authoritative like state of a comment after a toggle
type LikeResult struct {
	IsLiked    bool `json:"isLiked"`
	LikesCount int  `json:"likesCount"`
}

// Domain errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrTargetNotFound  = errors.New("commented content not found")
	ErrParentNotFound  = errors.New("parent comment not found")
	ErrParentMismatch  = errors.New("parent comment belongs to another thread")
	ErrUnknownTarget   = errors.New("unknown comment target")
)
