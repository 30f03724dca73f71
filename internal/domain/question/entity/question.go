package entity

import (
	"errors"
	"time"
)

// Author is the user summary attached to a question
type Author struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Avatar      string `json:"avatar,omitempty"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName,omitempty"`
}

// Question is an entry of the Q&A section
type Question struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Tags              []string  `json:"tags"`
	ViewCount         int       `json:"viewCount"`
	IsAnswered        bool      `json:"isAnswered"`
	AcceptedCommentID string    `json:"acceptedCommentId,omitempty"`
	LikesCount        int       `json:"likesCount"`
	CommentsCount     int       `json:"commentsCount"`
	IsLiked           bool      `json:"isLiked"`
	CreatedAt         time.Time `json:"createdAt"`
	User              Author    `json:"user"`
}

// Resolved reports whether the asker accepted an answer
func (q Question) Resolved() bool {
	return q.AcceptedCommentID != ""
}

// TopExpert is a user ranked by the answers they gave in question threads
type TopExpert struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar,omitempty"`
	Role          string `json:"role"`
	Title         string `json:"title,omitempty"`
	QuestionCount int    `json:"questionCount"`
}

// Stats summarizes the Q&A section
type Stats struct {
	TotalQuestions  int `json:"totalQuestions"`
	UnansweredCount int `json:"unansweredCount"`
	ResolvedRate    int `json:"resolvedRate"` // percent of questions with an accepted answer
	AnswersThisWeek int `json:"answersThisWeek"`
}

// Counts are the raw numbers Stats is computed from
type Counts struct {
	Total      int
	Unanswered int
	Resolved   int
	Answers    int
}

// NewStats derives the section summary from raw counts
func NewStats(c Counts) Stats {
	rate := 0
	if c.Total > 0 {
		rate = (c.Resolved*100 + c.Total/2) / c.Total
	}
	return Stats{
		TotalQuestions:  c.Total,
		UnansweredCount: c.Unanswered,
		ResolvedRate:    rate,
		AnswersThisWeek: c.Answers,
	}
}

// LikeResult is the authoritative like state after a toggle
type LikeResult struct {
	IsLiked    bool `json:"isLiked"`
	LikesCount int  `json:"likesCount"`
}

// ViewResult is the view counter after a recorded view
type ViewResult struct {
	ViewCount int `json:"viewCount"`
}

// Domain errors
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrNotAsker         = errors.New("only the asker can accept an answer")
	ErrAnswerNotFound   = errors.New("answer not found in this question")
)
