package entity

import (
	"errors"
	"time"
)

// Category groups posts in the feed
type Category string

const (
	CategoryJobSearch  Category = "job-search"
	CategoryExperience Category = "experience"
	CategoryDiscussion Category = "discussion"
	CategoryQuestion   Category = "question"
	CategoryOffer      Category = "offer"

	// pseudo categories used only by feed filters
	CategoryAll      Category = "all"
	CategoryTrending Category = "trending"
)

// Author is the user summary attached to a post
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role"`
	Title  string `json:"title,omitempty"`
}

// Post is a feed entry
type Post struct {
	ID            string    `json:"id"`
	Author        Author    `json:"author"`
	Content       string    `json:"content"`
	Category      Category  `json:"category"`
	Hashtags      []string  `json:"hashtags"`
	Topics        []string  `json:"topics"`
	Images        []string  `json:"images"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	ShareCount    int       `json:"shareCount"`
	IsLiked       bool      `json:"isLiked"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TrendingScore weighs comments twice as much as likes
func (p Post) TrendingScore() int {
	return p.LikesCount + 2*p.CommentsCount
}

// Pagination describes one page of a list
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count for total items
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// Page is one page of the feed
type Page struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// LikeResult is the authoritative like state after a toggle
type LikeResult struct {
	IsLiked    bool `json:"isLiked"`
	LikesCount int  `json:"likesCount"`
}

// ShareResult is the share counter after a share
type ShareResult struct {
	ShareCount int `json:"shareCount"`
}

// Domain errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotOwner     = errors.New("only the author can change this post")
)
