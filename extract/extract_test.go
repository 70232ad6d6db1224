package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtract_PlainText(t *testing.T) {
	e := New()
	for _, name := range []string{"notes.txt", "README.MD", "data.csv"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, []byte("hello\x00 world"))
			text, err := e.Extract(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, "hello world", text)
		})
	}
}

func TestExtract_InvalidUTF8(t *testing.T) {
	path := writeFile(t, "bad.txt", []byte{'o', 'k', 0xff, '!'})
	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "ok!", text)
}

func TestExtract_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)
	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtract_Errors(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), writeFile(t, "image.png", []byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = e.Extract(context.Background(), writeFile(t, "broken.pdf", []byte("not a pdf")))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Extract(ctx, writeFile(t, "a.txt", []byte("x")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports("a.PDF"))
	assert.True(t, Supports("/tmp/x/notes.md"))
	assert.False(t, Supports("photo.jpg"))
	assert.False(t, Supports("noext"))
	assert.Len(t, SupportedExtensions(), 5)
}
