package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	s := miniredis.RunT(t)
	return s, redis.NewClient(&redis.Options{Addr: s.Addr()})
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, cli := setupRedis(t)
	c := New(cli, "community")

	var out []entry
	require.ErrorIs(t, c.Get(ctx, "leaderboard", &out), ErrMiss)

	in := []entry{{Name: "Lan", Score: 120}, {Name: "Minh", Score: 90}}
	require.NoError(t, c.Set(ctx, "leaderboard", in, time.Minute))
	assert.True(t, s.Exists("community:leaderboard"))

	require.NoError(t, c.Get(ctx, "leaderboard", &out))
	assert.Equal(t, in, out)

	s.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "leaderboard", &out), ErrMiss)

	require.NoError(t, c.Set(ctx, "leaderboard", in, time.Minute))
	require.NoError(t, c.Delete(ctx, "leaderboard"))
	assert.False(t, s.Exists("community:leaderboard"))
}

func TestLoadCallsThroughOnce(t *testing.T) {
	ctx := context.Background()
	_, cli := setupRedis(t)
	c := New(cli, "community")

	calls := 0
	fn := func(context.Context) ([]entry, error) {
		calls++
		return []entry{{Name: "Lan", Score: 1}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Load(ctx, c, "k", time.Minute, fn)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, calls)
}

func TestLoadPropagatesError(t *testing.T) {
	ctx := context.Background()
	_, cli := setupRedis(t)
	c := New(cli, "community")

	boom := errors.New("boom")
	_, err := Load(ctx, c, "k", time.Minute, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	c := New(nil, "community")
	assert.False(t, c.Enabled())
	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)

	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Load(ctx, c, "k", time.Minute, func(context.Context) (int, error) {
			calls++
			return 7, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestRedisDownFallsBackToLoader(t *testing.T) {
	ctx := context.Background()
	s, cli := setupRedis(t)
	c := New(cli, "community")
	s.Close()

	got, err := Load(ctx, c, "k", time.Minute, func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}
