package entity

import (
	"errors"
	"strings"
	"time"
)

// Role is the kind of account
type Role string

const (
	RoleUser     Role = "user"
	RoleEmployer Role = "employer"
)

// User is a registered account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Username     string    `json:"username,omitempty"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Avatar       string    `json:"avatar,omitempty"`
	Role         Role      `json:"role"`
	CompanyName  string    `json:"companyName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayName is "First Last", falling back to the username
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Title is the company name for employers and empty otherwise
func (u User) Title() string {
	if u.Role == RoleEmployer {
		return u.CompanyName
	}
	return ""
}

// Stats are the activity counters of a user
type Stats struct {
	Posts         int `json:"posts"`
	Comments      int `json:"comments"`
	LikesReceived int `json:"likesReceived"`
	Followers     int `json:"followers"`
	Following     int `json:"following"`
}

// Verified reports whether the activity earns a verified badge
func (s Stats) Verified() bool {
	return s.Posts > 5 || s.Followers > 10
}

// Summary is the public card of a user shown next to content
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Role      Role   `json:"role"`
	Title     string `json:"title,omitempty"`
	Verified  bool   `json:"verified"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
}

// Session is returned on sign-up and sign-in
type Session struct {
	User        User      `json:"user"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// FollowResult is the state after a follow toggle
type FollowResult struct {
	IsFollowing bool `json:"isFollowing"`
	Followers   int  `json:"followers"`
}

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSelfFollow         = errors.New("users cannot follow themselves")
)
