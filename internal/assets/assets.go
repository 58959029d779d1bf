// Package assets keeps process-local copies of fetched binary data (model
// files, staged video uploads) and releases them when superseded.
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Tracker owns every file it creates. Superseded files must be released
// through Release or ReleaseAll so local copies do not pile up.
type Tracker struct {
	mu    sync.Mutex
	dir   string
	paths map[string]struct{}
}

func NewTracker(dir string) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Tracker{
		dir:   dir,
		paths: make(map[string]struct{}),
	}, nil
}

func (t *Tracker) Dir() string {
	return t.dir
}

// Create writes r to a uniquely named file derived from name and records it.
func (t *Tracker) Create(name string, r io.Reader) (string, error) {
	path := filepath.Join(t.dir, fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(name)))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	t.mu.Lock()
	t.paths[path] = struct{}{}
	t.mu.Unlock()

	return path, nil
}

// Release deletes a tracked file. Untracked paths are ignored.
func (t *Tracker) Release(path string) {
	t.mu.Lock()
	_, tracked := t.paths[path]
	delete(t.paths, path)
	t.mu.Unlock()

	if tracked {
		os.Remove(path)
	}
}

func (t *Tracker) ReleaseAll() {
	t.mu.Lock()
	paths := make([]string, 0, len(t.paths))
	for p := range t.paths {
		paths = append(paths, p)
	}
	t.paths = make(map[string]struct{})
	t.mu.Unlock()

	for _, p := range paths {
		os.Remove(p)
	}
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.paths)
}
