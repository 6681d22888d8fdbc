// Package artifacts manages the files a run produces and publishes them.
package artifacts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Dir is the output directory of a single run. It remembers every file
// written through it so the set can be published afterwards.
type Dir struct {
	path string

	mu    sync.Mutex
	files map[string]struct{}
}

// NewDir creates root/runID and returns it.
func NewDir(root, runID string) (*Dir, error) {
	if runID == "" {
		return nil, fmt.Errorf("artifacts: empty run id")
	}
	path := filepath.Join(root, runID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Dir{path: path, files: make(map[string]struct{})}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// Join returns the path of name inside the directory.
func (d *Dir) Join(name string) string { return filepath.Join(d.path, name) }

// Write creates name and fills it through fn.
func (d *Dir) Write(name string, fn func(w io.Writer) error) (err error) {
	if err := validName(name); err != nil {
		return err
	}
	path := d.Join(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", name, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	d.Track(name)
	return nil
}

// Track records a file that was written into the directory by other means.
func (d *Dir) Track(name string) {
	d.mu.Lock()
	d.files[filepath.ToSlash(name)] = struct{}{}
	d.mu.Unlock()
}

// Files returns the tracked file names, sorted.
func (d *Dir) Files() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.files))
	for name := range d.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validName(name string) error {
	if !filepath.IsLocal(name) {
		return fmt.Errorf("artifacts: invalid file name %q", name)
	}
	return nil
}
