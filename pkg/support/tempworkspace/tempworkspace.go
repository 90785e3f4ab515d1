// Package tempworkspace provides throwaway directories for tests that need a
// real file system, optionally seeded from a template.
package tempworkspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrNotInitialized = errors.New("the temporary directory path is not set; have you initialized the TempWorkspace?")

type TempWorkspace struct {
	dir      string
	root     string
	pattern  string
	template fs.FS
}

type Option func(*TempWorkspace)

// WithTemplate copies every file of template into the workspace on Init.
func WithTemplate(template fs.FS) Option {
	return func(w *TempWorkspace) {
		w.template = template
	}
}

// WithRoot creates the workspace under root instead of os.TempDir().
func WithRoot(root string) Option {
	return func(w *TempWorkspace) {
		w.root = root
	}
}

func New(options ...Option) *TempWorkspace {
	ret := &TempWorkspace{
		root:    os.TempDir(),
		pattern: "build-",
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (w *TempWorkspace) Init() error {
	dir, err := os.MkdirTemp(w.root, w.pattern)
	if err != nil {
		return errors.Wrap(err, "could not create temporary directory")
	}
	w.dir = dir
	log.Debug().Str("dir", dir).Msg("created temporary workspace")

	if w.template == nil {
		return nil
	}

	err = fs.WalkDir(w.template, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		b, err := fs.ReadFile(w.template, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, b, 0o644)
	})
	if err != nil {
		return errors.Wrap(err, "could not copy workspace template")
	}
	return nil
}

// Path returns the workspace directory.
func (w *TempWorkspace) Path() (string, error) {
	if w.dir == "" {
		return "", ErrNotInitialized
	}
	return w.dir, nil
}

// WriteFile writes content to a path relative to the workspace.
func (w *TempWorkspace) WriteFile(rel string, content string) (string, error) {
	dir, err := w.Path()
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if !isWithin(dir, target) {
		return "", errors.Errorf("%s is outside of the workspace", rel)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", errors.Wrap(err, "could not create parent directory")
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", errors.Wrapf(err, "could not write %s", rel)
	}
	return target, nil
}

// Destroy removes the workspace. It refuses to remove anything outside of the
// root the workspace was created in.
func (w *TempWorkspace) Destroy() error {
	dir, err := w.Path()
	if err != nil {
		return err
	}
	if !isWithin(w.root, dir) || filepath.Clean(dir) == filepath.Clean(w.root) {
		return errors.Errorf("the temporary directory path %s is not inside %s", dir, w.root)
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(err, "could not remove temporary directory")
	}
	w.dir = ""
	return nil
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
