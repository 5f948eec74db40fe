package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/repository/cache"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewWithClock(c.now)

	require.NoError(t, s.Set(ctx, "k", "v", 20*time.Second))
	require.NoError(t, s.Set(ctx, "forever", "v", 0))

	c.advance(19 * time.Second)
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	c.advance(time.Second)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)

	c.advance(time.Hour)
	_, err = s.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestStore_Expire(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	s := NewWithClock(c.now)

	require.NoError(t, s.Set(ctx, "k", "v", 10*time.Second))
	c.advance(9 * time.Second)
	require.NoError(t, s.Expire(ctx, "k", 10*time.Second))
	c.advance(9 * time.Second)
	_, err := s.Get(ctx, "k")
	assert.NoError(t, err)

	// 不存在的键不会被创建
	require.NoError(t, s.Expire(ctx, "missing", time.Minute))
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "page:/", "a", time.Minute))
	require.NoError(t, s.Set(ctx, "page:/?page=2", "b", time.Minute))
	require.NoError(t, s.Set(ctx, "login:user:token:1", "t", time.Minute))

	n, err := s.DeletePrefix(ctx, "page:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(ctx, "page:/")
	assert.ErrorIs(t, err, cache.ErrMiss)
	v, err := s.Get(ctx, "login:user:token:1")
	require.NoError(t, err)
	assert.Equal(t, "t", v)

	require.NoError(t, s.Delete(ctx, "login:user:token:1"))
	assert.Zero(t, s.Len())
}
