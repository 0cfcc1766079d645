package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-crm/pkg/cache"
)

func TestDisconnectedIsNoop(t *testing.T) {
	cache.Use(nil)
	ctx := context.Background()

	assert.False(t, cache.Available())
	require.NoError(t, cache.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, cache.Del(ctx, "k"))

	var v int
	assert.False(t, cache.Get(ctx, "k", &v))
	assert.NoError(t, cache.Close())
}

func TestRemember_ComputesWhenMissing(t *testing.T) {
	cache.Use(nil)
	ctx := context.Background()

	calls := 0
	got, err := cache.Remember(ctx, "count", time.Minute, func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)

	_, err = cache.Remember(ctx, "count", time.Minute, func() (int, error) {
		return 0, errors.New("down")
	})
	assert.EqualError(t, err, "down")
}
