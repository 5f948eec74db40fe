package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/config"
)

func TestDiskStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewDiskStorage(dir, "/media/")

	n, err := s.Save(ctx, "posts/a.jpg", "image/jpeg", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	data, err := os.ReadFile(filepath.Join(dir, "posts", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "/media/posts/a.jpg", s.URL("posts/a.jpg"))

	require.NoError(t, s.Delete(ctx, "posts/a.jpg"))
	_, err = os.Stat(filepath.Join(dir, "posts", "a.jpg"))
	assert.True(t, os.IsNotExist(err))
	// 重复删除不报错
	assert.NoError(t, s.Delete(ctx, "posts/a.jpg"))
}

func TestDiskStorage_RejectsTraversal(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), "/media/")
	_, err := s.Save(context.Background(), "../escape.txt", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, s.Delete(context.Background(), ""), ErrInvalidPath)
}

func TestNew(t *testing.T) {
	s, err := New(config.Storage{Type: "disk", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &DiskStorage{}, s)

	s, err = New(config.Storage{Type: "s3", Bucket: "media", Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/posts/x.jpg", s.URL("posts/x.jpg"))

	s, err = New(config.Storage{Type: "s3", Bucket: "media", Region: "us-east-1", Endpoint: "http://minio:9000", PublicURL: "http://cdn.local/media/"})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.local/media/posts/x.jpg", s.URL("posts/x.jpg"))

	_, err = New(config.Storage{Type: "ftp"})
	assert.Error(t, err)
}
