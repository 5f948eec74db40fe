package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/repository/database/dbtest"
)

func TestListing_GroupPagination(t *testing.T) {
	e := newEnv(t)
	author := dbtest.User(t, e.db, "author")
	g := dbtest.Group(t, e.db, "cats")
	other := dbtest.Group(t, e.db, "dogs")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 13; i++ {
		dbtest.Post(t, e.db, author, g, fmt.Sprintf("post %02d", i), base.Add(time.Duration(i)*time.Minute))
	}
	dbtest.Post(t, e.db, author, other, "elsewhere", time.Now())

	group, first, err := e.listing.Group(ctx, "cats", "")
	require.NoError(t, err)
	assert.Equal(t, "cats", group.Slug)
	require.Len(t, first.Posts, 10)
	assert.Equal(t, "post 12", first.Posts[0].Text)
	assert.Equal(t, 2, first.Page.NumPages)
	assert.Equal(t, int64(13), first.Page.Count)
	assert.True(t, first.Page.HasNext)

	_, second, err := e.listing.Group(ctx, "cats", "2")
	require.NoError(t, err)
	require.Len(t, second.Posts, 3)
	assert.Equal(t, "post 00", second.Posts[2].Text)

	seen := map[uint64]bool{}
	for _, p := range append(first.Posts, second.Posts...) {
		assert.False(t, seen[p.ID], "duplicate post %d", p.ID)
		seen[p.ID] = true
		assert.Equal(t, g.ID, *p.GroupID)
	}
	assert.Len(t, seen, 13)

	// 越界页码落到最后一页
	_, last, err := e.listing.Group(ctx, "cats", "99")
	require.NoError(t, err)
	assert.Equal(t, 2, last.Page.Number)
	assert.Len(t, last.Posts, 3)
}

func TestListing_Errors(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.listing.Group(ctx, "missing", "")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = e.listing.Profile(ctx, "ghost", 0, "")
	assert.True(t, errors.Is(err, ErrNotFound))

	page, err := e.listing.Index(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.NotNil(t, page.Posts)
	assert.Equal(t, 1, page.Page.NumPages)
}

func TestListing_ProfileFollowing(t *testing.T) {
	e := newEnv(t)
	author := dbtest.User(t, e.db, "author")
	reader := dbtest.User(t, e.db, "reader")
	dbtest.Post(t, e.db, author, nil, "hello", time.Time{})
	dbtest.Post(t, e.db, reader, nil, "not author's", time.Time{})

	view, err := e.listing.Profile(ctx, "author", 0, "")
	require.NoError(t, err)
	assert.False(t, view.Following)
	assert.Equal(t, "author", view.Author.Username)
	require.Len(t, view.Posts, 1)
	assert.Equal(t, int64(1), view.Page.Count)

	view, err = e.listing.Profile(ctx, "author", reader.ID, "")
	require.NoError(t, err)
	assert.False(t, view.Following)

	dbtest.Follow(t, e.db, reader, author)
	view, err = e.listing.Profile(ctx, "author", reader.ID, "")
	require.NoError(t, err)
	assert.True(t, view.Following)
}
