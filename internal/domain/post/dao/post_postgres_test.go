package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nextstepz/community/internal/domain/post/entity"
)

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   entity.FeedFilter
		wantSQL  string
		wantArgs []any
	}{
		{name: "empty", filter: entity.FeedFilter{}, wantSQL: "", wantArgs: []any{"viewer"}},
		{name: "pseudo categories", filter: entity.FeedFilter{Category: entity.CategoryTrending}, wantSQL: "", wantArgs: []any{"viewer"}},
		{
			name:     "category",
			filter:   entity.FeedFilter{Category: entity.CategoryOffer},
			wantSQL:  " WHERE p.category = $2",
			wantArgs: []any{"viewer", "offer"},
		},
		{
			name:     "hashtags are lower-cased and escaped",
			filter:   entity.FeedFilter{Hashtags: []string{"#Go_Lang", " "}},
			wantSQL:  " WHERE EXISTS (SELECT 1 FROM unnest(p.hashtags) h WHERE lower(h) LIKE ANY ($2))",
			wantArgs: []any{"viewer", []string{`%go\_lang%`}},
		},
		{
			name:     "topics and search",
			filter:   entity.FeedFilter{Topics: []string{"career"}, Search: "Lan"},
			wantSQL:  " WHERE p.topics && $2 AND (lower(p.content) LIKE $3 OR lower(trim(u.first_name || ' ' || u.last_name)) LIKE $3 OR lower(u.username) LIKE $3)",
			wantArgs: []any{"viewer", []string{"career"}, "%lan%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildWhere(tt.filter, []any{"viewer"})
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
