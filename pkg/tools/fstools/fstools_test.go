package fstools

import (
	"context"
	"testing"

	"github.com/go-go-golems/ragged/pkg/support/tempworkspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace(t *testing.T) string {
	w := tempworkspace.New(tempworkspace.WithRoot(t.TempDir()))
	require.NoError(t, w.Init())
	t.Cleanup(func() {
		_ = w.Destroy()
	})
	_, err := w.WriteFile("README.md", "# ragged")
	require.NoError(t, err)
	_, err = w.WriteFile("src/main.go", "package main")
	require.NoError(t, err)
	dir, err := w.Path()
	require.NoError(t, err)
	return dir
}

func TestFileSystemTools(t *testing.T) {
	dir := newWorkspace(t)
	reg, err := NewRegistry(dir)
	require.NoError(t, err)

	ids := []string{}
	for _, tool := range reg.List() {
		ids = append(ids, tool.ID)
	}
	assert.Equal(t, []string{"ls", "pwd", "cat"}, ids)

	ctx := context.Background()

	out := reg.Execute(ctx, "ls", `{"path":"."}`)
	assert.Equal(t, "The files in the directory . are: README.md\nsrc/", out)

	out = reg.Execute(ctx, "pwd", ``)
	assert.Equal(t, "The current working directory is: "+dir, out)

	out = reg.Execute(ctx, "cat", `{"path":"src/main.go"}`)
	assert.Equal(t, "The contents of the file src/main.go are as follows: \n\npackage main", out)
}

func TestFileSystemToolErrors(t *testing.T) {
	dir := newWorkspace(t)
	reg, err := NewRegistry(dir)
	require.NoError(t, err)
	ctx := context.Background()

	out := reg.Execute(ctx, "cat", `{"path":"missing.txt"}`)
	assert.Contains(t, out, "An error occurred: ")
	assert.Contains(t, out, "missing.txt")

	out = reg.Execute(ctx, "cat", `{}`)
	assert.Contains(t, out, "An error occurred: ")
	assert.Contains(t, out, "path")

	out = reg.Execute(ctx, "ls", `{"path":`)
	assert.Contains(t, out, "An error occurred: ")
}
