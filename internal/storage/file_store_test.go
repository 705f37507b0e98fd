package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesUniqueNames(t *testing.T) {
	store := NewLocalFileStore(t.TempDir())

	first, err := store.Save("img", "photo.png", strings.NewReader("payload-1"))
	require.NoError(t, err)
	second, err := store.Save("img", "photo.png", strings.NewReader("payload-2"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, " photo.png"))
	assert.True(t, strings.HasSuffix(second, " photo.png"))

	data, err := os.ReadFile(store.Path("img", first))
	require.NoError(t, err)
	assert.Equal(t, "payload-1", string(data))
}

func TestSaveStripsClientPath(t *testing.T) {
	root := t.TempDir()
	store := NewLocalFileStore(root)

	stored, err := store.Save("img", "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(stored, " passwd"))
	_, err = os.Stat(filepath.Join(root, "img", stored))
	assert.NoError(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewLocalFileStore(t.TempDir())

	stored, err := store.Save("img", "photo.png", strings.NewReader("payload"))
	require.NoError(t, err)

	require.NoError(t, store.Delete("img", stored))
	_, err = os.Stat(store.Path("img", stored))
	assert.True(t, os.IsNotExist(err))

	// Second delete of the same file is a no-op success.
	assert.NoError(t, store.Delete("img", stored))
	assert.NoError(t, store.Delete("img", "never-existed.png"))
}
