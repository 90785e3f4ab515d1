// Package fstools provides the ls, pwd and cat tools, which let a model look
// around the local file system.
package fstools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-go-golems/ragged/pkg/tools"
	"github.com/pkg/errors"
)

type PathInput struct {
	Path string `json:"path" jsonschema:"description=The path to read from. Relative paths start at the working directory."`
}

type NoInput struct{}

// FS resolves relative paths against Dir.
type FS struct {
	Dir string
}

func New(dir string) (*FS, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "could not determine working directory")
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve %s", dir)
	}
	return &FS{Dir: abs}, nil
}

func (f *FS) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(f.Dir, p)
}

func (f *FS) Ls(ctx context.Context, in PathInput) (string, error) {
	entries, err := os.ReadDir(f.resolve(in.Path))
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return fmt.Sprintf("The files in the directory %s are: %s", in.Path, strings.Join(names, "\n")), nil
}

func (f *FS) Pwd(ctx context.Context, _ NoInput) (string, error) {
	return fmt.Sprintf("The current working directory is: %s", f.Dir), nil
}

func (f *FS) Cat(ctx context.Context, in PathInput) (string, error) {
	b, err := os.ReadFile(f.resolve(in.Path))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("The contents of the file %s are as follows: \n\n%s", in.Path, string(b)), nil
}

// Tools returns the ls, pwd and cat tools bound to f.
func (f *FS) Tools() ([]tools.Tool, error) {
	ls, err := tools.NewTool("ls", "List the files in any given directory on the user's local machine.", f.Ls)
	if err != nil {
		return nil, err
	}
	pwd, err := tools.NewTool("pwd", "Print the current working directory of the user's local machine.", f.Pwd)
	if err != nil {
		return nil, err
	}
	cat, err := tools.NewTool("cat", "Print the contents of a file on the user's local machine.", f.Cat)
	if err != nil {
		return nil, err
	}
	return []tools.Tool{ls, pwd, cat}, nil
}

// NewRegistry returns a registry holding the file system tools for dir.
func NewRegistry(dir string) (*tools.Registry, error) {
	f, err := New(dir)
	if err != nil {
		return nil, err
	}
	ts, err := f.Tools()
	if err != nil {
		return nil, err
	}
	return tools.NewRegistry(ts...)
}
