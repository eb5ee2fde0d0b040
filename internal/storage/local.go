package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalPublisher copies artifacts into a directory.
type LocalPublisher struct {
	dir string
}

// NewLocalPublisher creates a LocalPublisher rooted at dir.
func NewLocalPublisher(dir string) *LocalPublisher {
	return &LocalPublisher{dir: dir}
}

// Location implements Publisher.
func (p *LocalPublisher) Location(key string) string {
	return filepath.Join(p.dir, filepath.FromSlash(key))
}

// Put implements Publisher. The copy is written to a temporary file and
// renamed so readers never see a partial artifact.
func (p *LocalPublisher) Put(ctx context.Context, key, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := p.Location(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}

	src, err := os.Open(localPath) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close() //nolint:errcheck

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".publish-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("copy %s: %w", localPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
