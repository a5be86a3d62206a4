package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "")
	ctx := context.Background()

	url, err := store.Put(ctx, "tasks/t1/g1/puzzle.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))

	content, err := os.ReadFile(filepath.Join(dir, "tasks/t1/g1/puzzle.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(content))

	require.NoError(t, store.DeleteMany(ctx, []string{"tasks/t1/g1/puzzle.jpg", "tasks/missing.jpg"}))
	_, err = os.Stat(filepath.Join(dir, "tasks/t1/g1/puzzle.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalKeysStayInsideRoot(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(filepath.Join(dir, "root"), "https://cdn.test/")

	url, err := store.Put(context.Background(), "../../escape.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/../../escape.jpg", url)
	_, err = os.Stat(filepath.Join(dir, "root", "escape.jpg"))
	assert.NoError(t, err)

	_, err = store.Put(context.Background(), "", []byte("x"), "")
	assert.Error(t, err)
}

func TestS3URL(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Endpoint:        "http://localhost:9000",
		Bucket:          "puzzles",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/puzzles/tasks/a.jpg", s.URL("tasks/a.jpg"))

	s, err = NewS3(context.Background(), S3Config{Bucket: "puzzles", PublicBaseURL: "https://img.test/"})
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/tasks/a.jpg", s.URL("tasks/a.jpg"))

	_, err = NewS3(context.Background(), S3Config{})
	assert.Error(t, err)
}
