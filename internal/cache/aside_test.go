package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAsideFetchesOnMissAndServesFromCache(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *testPayload) func() error {
		return func() error {
			fetches++
			*dest = testPayload{ID: 1, Label: "fresh"}
			return nil
		}
	}

	var got testPayload
	require.NoError(t, Aside(ctx, "k1", &got, time.Minute, fetch(&got)))
	assert.Equal(t, "fresh", got.Label)
	assert.Equal(t, 1, fetches)

	// Second read is served from the cache without calling fetch.
	var second testPayload
	require.NoError(t, Aside(ctx, "k1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, "fresh", second.Label)
	assert.Equal(t, 1, fetches)
}

func TestAsideFetchErrorPropagates(t *testing.T) {
	withMiniredis(t)

	sentinel := errors.New("db down")
	var got testPayload
	err := Aside(context.Background(), "k2", &got, time.Minute, func() error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestAsideWithoutRedisFallsThrough(t *testing.T) {
	SetClient(nil)

	fetches := 0
	var got testPayload
	err := Aside(context.Background(), "k3", &got, time.Minute, func() error {
		fetches++
		got = testPayload{ID: 3, Label: "uncached"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "uncached", got.Label)
}

func TestInvalidateDropsKey(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PollKey(7), testPayload{ID: 7}, time.Minute))
	require.True(t, mr.Exists(PollKey(7)))

	InvalidatePoll(ctx, 7)
	assert.False(t, mr.Exists(PollKey(7)))
	assert.False(t, mr.Exists(PollsListKey()))
}

func TestGetJSONExpiry(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "short", testPayload{ID: 9}, time.Second))

	var got testPayload
	found, err := GetJSON(ctx, "short", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint(9), got.ID)

	mr.FastForward(2 * time.Second)

	found, err = GetJSON(ctx, "short", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
