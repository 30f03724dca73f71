// Package entity holds the community leaderboard model and its ranking rules.
package entity

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	userentity "github.com/nextstepz/community/internal/domain/user/entity"
)

// Score weights
const (
	PostWeight     = 10
	LikeWeight     = 2
	FollowerWeight = 5
)

// SortField selects the metric a leaderboard is ordered by
type SortField string

const (
	SortScore     SortField = "score"
	SortFollowers SortField = "followers"
	SortStreak    SortField = "streak"
	SortPosts     SortField = "posts"
	SortLikes     SortField = "likes"
)

// ErrUnknownSort is returned for a sort field outside the known set
var ErrUnknownSort = errors.New("unknown leaderboard sort")

// ParseSortField maps a query value to a SortField; empty means score
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortScore, nil
	case SortScore, SortFollowers, SortStreak, SortPosts, SortLikes:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}
}

// User is the public profile shown on a leaderboard row
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Role      string `json:"role"`
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	Verified  bool   `json:"verified"`
	Followers int    `json:"followers"`
}

// Entry is one leaderboard row
type Entry struct {
	Rank      int    `json:"rank"`
	User      User   `json:"user"`
	Score     int    `json:"score"`
	Posts     int    `json:"posts"`
	Likes     int    `json:"likes"`
	Followers int    `json:"followers"`
	Streak    int    `json:"streak"`
	Tier      string `json:"tier"`
}

// Activity is the raw per-user aggregate the board is computed from
type Activity struct {
	User          User
	Posts         int
	LikesReceived int
	Followers     int
	ActiveDays    []time.Time // days with a post or comment, any order
}

// Score combines posts, likes received and followers
func Score(posts, likes, followers int) int {
	return posts*PostWeight + likes*LikeWeight + followers*FollowerWeight
}

// Verified reports whether the counts earn a verified badge
func Verified(posts, followers int) bool {
	return userentity.Stats{Posts: posts, Followers: followers}.Verified()
}

// Streak counts consecutive active days ending on today's date
func Streak(days []time.Time, today time.Time) int {
	active := make(map[time.Time]bool, len(days))
	for _, d := range days {
		active[truncateDay(d)] = true
	}

	n := 0
	for d := truncateDay(today); active[d]; d = d.AddDate(0, 0, -1) {
		n++
	}
	return n
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Build computes ranked entries from activity, ordered by score
func Build(activity []Activity, today time.Time) []Entry {
	entries := make([]Entry, 0, len(activity))
	for _, a := range activity {
		u := a.User
		u.Followers = a.Followers
		u.Verified = Verified(a.Posts, a.Followers)
		entries = append(entries, Entry{
			User:      u,
			Score:     Score(a.Posts, a.LikesReceived, a.Followers),
			Posts:     a.Posts,
			Likes:     a.LikesReceived,
			Followers: a.Followers,
			Streak:    Streak(a.ActiveDays, today),
		})
	}

	SortBy(entries, SortScore)
	Rerank(entries)
	for i := range entries {
		entries[i].Tier = Tier(entries[i].Score, len(entries))
	}
	return entries
}

// SortBy orders entries by field, descending. Ties keep their current order.
func SortBy(entries []Entry, field SortField) {
	key := metric(field)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return key(b) - key(a)
	})
}

func metric(field SortField) func(Entry) int {
	switch field {
	case SortFollowers:
		return func(e Entry) int { return e.Followers }
	case SortStreak:
		return func(e Entry) int { return e.Streak }
	case SortPosts:
		return func(e Entry) int { return e.Posts }
	case SortLikes:
		return func(e Entry) int { return e.Likes }
	default:
		return func(e Entry) int { return e.Score }
	}
}

// Rerank assigns 1-based ranks in slice order
func Rerank(entries []Entry) {
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// Search keeps entries whose name, title or company contains q, ignoring case
func Search(entries []Entry, q string) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.User.Name), q) ||
			strings.Contains(strings.ToLower(e.User.Title), q) ||
			strings.Contains(strings.ToLower(e.User.Company), q) {
			out = append(out, e)
		}
	}
	return out
}

// Tier names the band a score falls in relative to the board size
func Tier(score, totalUsers int) string {
	if totalUsers <= 0 {
		return "Beginner"
	}
	percentile := float64(score) / float64(totalUsers*1000) * 100
	switch {
	case percentile >= 90:
		return "Legend"
	case percentile >= 70:
		return "Master"
	case percentile >= 50:
		return "Expert"
	case percentile >= 25:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// Medal is the badge shown next to a rank
func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", rank)
	}
}

// FormatCount shortens large numbers: 1500 -> 1.5k, 2000000 -> 2.0m
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fm", float64(n)/1_000_000)
	case n >= 1000:
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	default:
		return fmt.Sprint(n)
	}
}
