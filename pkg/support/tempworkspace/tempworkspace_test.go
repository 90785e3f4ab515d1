package tempworkspace

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithoutInit(t *testing.T) {
	w := New()

	_, err := w.Path()
	assert.True(t, errors.Is(err, ErrNotInitialized))

	_, err = w.WriteFile("a.txt", "x")
	assert.True(t, errors.Is(err, ErrNotInitialized))

	err = w.Destroy()
	assert.True(t, errors.Is(err, ErrNotInitialized))
	assert.EqualError(t, err, "the temporary directory path is not set; have you initialized the TempWorkspace?")
}

func TestInitCopiesTemplate(t *testing.T) {
	template := fstest.MapFS{
		"index.ts":           {Data: []byte("console.log('hi')")},
		"src/lib/helpers.ts": {Data: []byte("export {}")},
	}
	w := New(WithTemplate(template), WithRoot(t.TempDir()))
	require.NoError(t, w.Init())

	dir, err := w.Path()
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(dir), "build-")

	b, err := os.ReadFile(filepath.Join(dir, "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi')", string(b))

	_, err = os.Stat(filepath.Join(dir, "src", "lib", "helpers.ts"))
	require.NoError(t, err)

	require.NoError(t, w.Destroy())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	_, err = w.Path()
	assert.True(t, errors.Is(err, ErrNotInitialized))
}

func TestWriteFile(t *testing.T) {
	w := New(WithRoot(t.TempDir()))
	require.NoError(t, w.Init())
	defer func() {
		_ = w.Destroy()
	}()

	path, err := w.WriteFile("nested/notes.md", "# notes")
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# notes", string(b))

	_, err = w.WriteFile("../escape.txt", "nope")
	require.Error(t, err)
}

func TestDestroyRefusesForeignPaths(t *testing.T) {
	w := New(WithRoot(t.TempDir()))
	w.dir = "/"
	require.Error(t, w.Destroy())
}
