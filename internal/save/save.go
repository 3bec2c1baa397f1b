// Package save hands finished export blobs to their destination.
package save

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Saver stores a rendered document under filename.
type Saver interface {
	Save(ctx context.Context, blob []byte, filename string) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, blob []byte, filename string) error

func (f SaverFunc) Save(ctx context.Context, blob []byte, filename string) error {
	return f(ctx, blob, filename)
}

// DirSaver writes documents into a directory. A file appears under its
// final name only once it has been fully written.
type DirSaver struct {
	Dir string
}

// NewDirSaver creates the directory if needed.
func NewDirSaver(dir string) (*DirSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DirSaver{Dir: dir}, nil
}

func (s *DirSaver) Save(ctx context.Context, blob []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := SanitizeFilename(filename)

	tmp, err := os.CreateTemp(s.Dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(blob); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.Dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	ok = true
	return nil
}

// Path returns where filename ends up once saved.
func (s *DirSaver) Path(filename string) string {
	return filepath.Join(s.Dir, SanitizeFilename(filename))
}

// SanitizeFilename reduces name to a bare file name with no path
// components.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == "_" {
		name = "unnamed"
	}
	return name
}
