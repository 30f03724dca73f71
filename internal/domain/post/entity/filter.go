package entity

import (
	"sort"
	"strings"
)

// FeedFilter narrows an already loaded feed.
// Empty fields do not filter; all set fields must match.
type FeedFilter struct {
	Category Category `json:"category,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Topics   []string `json:"topics,omitempty"`
	Search   string   `json:"search,omitempty"`
}

// Trending reports whether results are ordered by TrendingScore
func (f FeedFilter) Trending() bool {
	return f.Category == CategoryTrending
}

// Match reports whether a post passes the filter
func (f FeedFilter) Match(p Post) bool {
	if f.Category != "" && f.Category != CategoryAll && f.Category != CategoryTrending && p.Category != f.Category {
		return false
	}

	if len(f.Hashtags) > 0 && !anyHashtag(p.Hashtags, f.Hashtags) {
		return false
	}

	if len(f.Topics) > 0 && !anyTopic(p.Topics, f.Topics) {
		return false
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Content), q) &&
			!strings.Contains(strings.ToLower(p.Author.Name), q) {
			return false
		}
	}

	return true
}

// Apply returns the matching posts. The result is a subset of the input in
// input order, or for the trending category a permutation of that subset by
// TrendingScore with ties kept in input order. The input is not modified.
func (f FeedFilter) Apply(posts []Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if f.Match(p) {
			out = append(out, p)
		}
	}

	if f.Trending() {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].TrendingScore() > out[j].TrendingScore()
		})
	}
	return out
}

// anyHashtag matches when some wanted tag is a case-insensitive substring of some post tag
func anyHashtag(have, want []string) bool {
	for _, w := range want {
		w = strings.ToLower(strings.TrimLeft(strings.TrimSpace(w), "#"))
		if w == "" {
			continue
		}
		for _, h := range have {
			if strings.Contains(strings.ToLower(h), w) {
				return true
			}
		}
	}
	return false
}

func anyTopic(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
