package entity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func feed() []Post {
	return []Post{
		{ID: "1", Category: CategoryJobSearch, Hashtags: []string{"golang", "remote"}, Topics: []string{"backend"}, Content: "Tìm việc Golang", Author: Author{Name: "Lan"}, LikesCount: 3, CommentsCount: 1},
		{ID: "2", Category: CategoryExperience, Hashtags: []string{"interview"}, Topics: []string{"career"}, Content: "Kinh nghiệm phỏng vấn", Author: Author{Name: "Minh"}, LikesCount: 10},
		{ID: "3", Category: CategoryDiscussion, Hashtags: []string{"GoLangVN"}, Content: "Thảo luận", Author: Author{Name: "Hoa"}, LikesCount: 1, CommentsCount: 4},
		{ID: "4", Category: CategoryJobSearch, Content: "Cần tìm intern", Author: Author{Name: "Tuấn"}, LikesCount: 5},
		{ID: "5", Category: CategoryOffer, Topics: []string{"backend", "career"}, Content: "Offer backend", Author: Author{Name: "Lan"}},
	}
}

func postIDs(ps []Post) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFeedFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter FeedFilter
		want   []string
	}{
		{name: "empty", filter: FeedFilter{}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "all", filter: FeedFilter{Category: CategoryAll}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "category", filter: FeedFilter{Category: CategoryJobSearch}, want: []string{"1", "4"}},
		{name: "hashtag substring any case", filter: FeedFilter{Hashtags: []string{"#golang"}}, want: []string{"1", "3"}},
		{name: "hashtag any of", filter: FeedFilter{Hashtags: []string{"interview", "remote"}}, want: []string{"1", "2"}},
		{name: "topic", filter: FeedFilter{Topics: []string{"career"}}, want: []string{"2", "5"}},
		{name: "search content", filter: FeedFilter{Search: "PHỎNG VẤN"}, want: []string{"2"}},
		{name: "search author", filter: FeedFilter{Search: "lan"}, want: []string{"1", "5"}},
		{name: "combined", filter: FeedFilter{Category: CategoryJobSearch, Search: "golang"}, want: []string{"1"}},
		{name: "trending", filter: FeedFilter{Category: CategoryTrending}, want: []string{"2", "3", "1", "4", "5"}},
		{name: "no match", filter: FeedFilter{Category: CategoryQuestion}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postIDs(tt.filter.Apply(feed())))
		})
	}
}

func TestTrendingTiesKeepInputOrder(t *testing.T) {
	posts := []Post{
		{ID: "a", LikesCount: 2},
		{ID: "b", CommentsCount: 1},
		{ID: "c", LikesCount: 4},
		{ID: "d", LikesCount: 2},
	}
	got := FeedFilter{Category: CategoryTrending}.Apply(posts)
	assert.Equal(t, []string{"c", "a", "b", "d"}, postIDs(got))
}

// the output is always drawn from the input: no post is invented or duplicated
func TestApplyReturnsSubsetOfInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	categories := []Category{"", CategoryAll, CategoryTrending, CategoryJobSearch, CategoryOffer}
	tags := []string{"", "go", "golang", "remote", "INTERVIEW"}
	topics := []string{"", "backend", "career"}
	searches := []string{"", "lan", "tìm", "zzz"}

	input := feed()
	original := postIDs(input)

	for i := 0; i < 200; i++ {
		f := FeedFilter{
			Category: categories[rng.Intn(len(categories))],
			Search:   searches[rng.Intn(len(searches))],
		}
		if tag := tags[rng.Intn(len(tags))]; tag != "" {
			f.Hashtags = []string{tag}
		}
		if topic := topics[rng.Intn(len(topics))]; topic != "" {
			f.Topics = []string{topic}
		}

		out := f.Apply(input)
		assert.LessOrEqual(t, len(out), len(input))

		seen := map[string]int{}
		for _, p := range out {
			seen[p.ID]++
			assert.True(t, f.Match(p))
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "post %s duplicated", id)
			assert.Contains(t, original, id)
		}

		// every rejected post really fails the filter
		for _, p := range input {
			if seen[p.ID] == 0 {
				assert.False(t, f.Match(p))
			}
		}
	}

	assert.Equal(t, original, postIDs(input), "input must not be reordered")
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 21, TotalPages: 3}, NewPagination(1, 10, 21))
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 5).TotalPages)
}
