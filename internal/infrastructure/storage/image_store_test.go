package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageStore_SaveAndResolve(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save("front", "doc.png", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "front"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	path, err := store.Resolve(ref)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestImageStore_SaveDefaultsExtension(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save("selfie", "noext", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"))
}

func TestImageStore_RelativeBaseDir(t *testing.T) {
	t.Chdir(t.TempDir())

	store, err := NewImageStore("./data/documents")
	require.NoError(t, err)

	ref, err := store.Save("front", "doc.png", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)

	path, err := store.Resolve(ref)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestImageStore_ResolveFailures(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve("")
	assert.Error(t, err)

	_, err = store.Resolve("../outside.jpg")
	assert.Error(t, err)

	_, err = store.Resolve("front/missing.jpg")
	assert.Error(t, err)
}
