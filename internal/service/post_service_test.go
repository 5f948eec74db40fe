package service

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/model"
	"yatube/internal/repository/database/dbtest"
)

func pngReader(t *testing.T) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1200, 600))))
	return bytes.NewReader(buf.Bytes())
}

// hugePNG 头部声明 12000x12000，文件本身很小
func hugePNG(t *testing.T) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[16:20], 12000)
	binary.BigEndian.PutUint32(data[20:24], 12000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return bytes.NewReader(data)
}

func countPosts(t *testing.T, e *env) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Post{}).Count(&n).Error)
	return n
}

func TestCreatePost(t *testing.T) {
	e := newEnv(t)
	author := dbtest.User(t, e.db, "author")
	g := dbtest.Group(t, e.db, "cats")

	before := time.Now().Add(-time.Second)
	post, err := e.posts.CreatePost(ctx, author.ID, PostInput{
		Text:  "  a brand new post  ",
		Group: strconv.FormatUint(g.ID, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, "a brand new post", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.True(t, post.CreatedAt.After(before))

	got, comments, err := e.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", got.Author.Username)
	assert.Equal(t, "cats", got.Group.Slug)
	assert.Empty(t, comments)
}

func TestCreatePost_Validation(t *testing.T) {
	e := newEnv(t)
	author := dbtest.User(t, e.db, "author")

	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{name: "empty text", in: PostInput{Text: "   "}, field: "text"},
		{name: "malformed group", in: PostInput{Text: "x", Group: "cats"}, field: "group"},
		{name: "unknown group", in: PostInput{Text: "x", Group: "999"}, field: "group"},
		{name: "not an image", in: PostInput{Text: "x", Image: strings.NewReader("hello")}, field: "image"},
		{name: "image dimensions too large", in: PostInput{Text: "x", Image: hugePNG(t)}, field: "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.posts.CreatePost(ctx, author.ID, tt.in)
			ve, ok := AsValidation(err)
			require.True(t, ok, "want validation error, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
			assert.Zero(t, countPosts(t, e))
		})
	}
}

func TestCreatePost_Image(t *testing.T) {
	e := newEnv(t)
	author := dbtest.User(t, e.db, "author")

	post, err := e.posts.CreatePost(ctx, author.ID, PostInput{Text: "with picture", Image: pngReader(t)})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(post.Image, "/media/posts/"))
	require.True(t, strings.HasPrefix(post.Thumbnail, "/media/posts/thumbs/"))

	for _, url := range []string{post.Image, post.Thumbnail} {
		rel := strings.TrimPrefix(url, "/media/")
		_, err := os.Stat(filepath.Join(e.media.BasePath, filepath.FromSlash(rel)))
		assert.NoError(t, err, url)
	}

	// 编辑时不上传图片则保留原图
	edited, err := e.posts.EditPost(ctx, author.ID, post.ID, PostInput{Text: "new text"})
	require.NoError(t, err)
	assert.Equal(t, "new text", edited.Text)
	assert.Equal(t, post.Image, edited.Image)
}

func TestEditPost_Permissions(t *testing.T) {
	e := newEnv(t)
	author := dbtest.User(t, e.db, "author")
	stranger := dbtest.User(t, e.db, "stranger")
	g := dbtest.Group(t, e.db, "g")
	post := dbtest.Post(t, e.db, author, g, "original", time.Time{})

	_, err := e.posts.EditPost(ctx, stranger.ID, post.ID, PostInput{Text: "hacked"})
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = e.posts.EditPost(ctx, 0, post.ID, PostInput{Text: "hacked"})
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = e.posts.EditPost(ctx, author.ID, 9999, PostInput{Text: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	// 校验失败不改动
	_, err = e.posts.EditPost(ctx, author.ID, post.ID, PostInput{Text: ""})
	_, ok := AsValidation(err)
	assert.True(t, ok)

	got, _, err := e.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Text)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, g.ID, *got.GroupID)

	edited, err := e.posts.EditPost(ctx, author.ID, post.ID, PostInput{Text: "updated"})
	require.NoError(t, err)
	assert.Equal(t, "updated", edited.Text)
	assert.Nil(t, edited.GroupID)
	assert.Equal(t, author.ID, edited.AuthorID)
}

func TestAddComment(t *testing.T) {
	e := newEnv(t)
	author := dbtest.User(t, e.db, "author")
	reader := dbtest.User(t, e.db, "reader")
	post := dbtest.Post(t, e.db, author, nil, "post", time.Time{})

	_, err := e.posts.AddComment(ctx, reader.ID, 9999, "hi")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = e.posts.AddComment(ctx, reader.ID, post.ID, "  ")
	_, ok := AsValidation(err)
	assert.True(t, ok)

	c1, err := e.posts.AddComment(ctx, reader.ID, post.ID, "first")
	require.NoError(t, err)
	_, err = e.posts.AddComment(ctx, author.ID, post.ID, "second")
	require.NoError(t, err)

	_, comments, err := e.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID)
	assert.Equal(t, "reader", comments[0].Author.Username)
}
