package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
)

// FS stores assets as files below a root directory. Access goes through
// os.Root so references cannot escape it.
type FS struct {
	root *os.Root
}

func NewFS(dir string) (*FS, error) {
	if dir == "" {
		return nil, fmt.Errorf("assets root directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets root: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open assets root: %w", err)
	}
	if err := root.MkdirAll(path.Clean(KeyPrefix), 0o755); err != nil {
		root.Close()
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &FS{root: root}, nil
}

func (s *FS) Driver() Driver { return DriverFS }

func (s *FS) Put(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	key, err := NewKey(name, contentType)
	if err != nil {
		return "", err
	}
	f, err := s.root.Create(key)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.root.Remove(key)
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		s.root.Remove(key)
		return "", fmt.Errorf("close asset: %w", err)
	}
	return key, nil
}

func (s *FS) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	if err := checkRef(ref); err != nil {
		return nil, "", err
	}
	f, err := s.root.Open(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open asset: %w", err)
	}
	return f, contentTypeOf(ref), nil
}

func (s *FS) Delete(_ context.Context, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}
	if err := s.root.Remove(ref); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

func (s *FS) Close() error { return s.root.Close() }
