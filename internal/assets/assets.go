// Package assets stores uploaded employee images and hands back an opaque
// reference that is saved on the employee record.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Driver string

const (
	DriverFS     Driver = "fs"
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory"
)

// KeyPrefix starts every reference produced by Put.
const KeyPrefix = "uploads/"

var (
	ErrNotFound   = errors.New("asset not found")
	ErrInvalidRef = errors.New("invalid asset reference")
	// ErrUnsupportedType is returned by Put for content that is not an
	// accepted image type.
	ErrUnsupportedType = errors.New("unsupported asset content type")
)

// imageTypes lists the accepted content types and the extension keys get
// for each.
var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageType returns the media type of contentType without parameters and
// whether it is an accepted image type.
func ImageType(contentType string) (string, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	mt = strings.ToLower(mt)
	_, ok := imageTypes[mt]
	return mt, ok
}

// Store persists binary assets under generated keys.
type Store interface {
	Driver() Driver
	// Put stores the content of r and returns its reference.
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Open returns the content and content type for ref. The caller closes
	// the reader.
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, ref string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver Driver
	// Root is the directory used by the fs driver.
	Root string
	S3   S3Config
}

// Open constructs the Store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFS, "":
		return NewFS(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported assets driver %q", cfg.Driver)
	}
}

// NewKey builds a unique key that keeps a readable form of the original
// file name. The extension always comes from contentType, so the key never
// claims a type other than the one that was accepted.
func NewKey(name, contentType string) (string, error) {
	mt, ok := ImageType(contentType)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	return KeyPrefix + uuid.NewString() + "-" + sanitize(name) + imageTypes[mt], nil
}

const maxNameLen = 64

// sanitize reduces name to a safe stem without directories or extension.
func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > maxNameLen {
		s = s[len(s)-maxNameLen:]
	}
	if strings.Trim(s, "_") == "" {
		s = "file"
	}
	return s
}

// contentTypeOf maps a key's extension back to its image type.
func contentTypeOf(ref string) string {
	ext := strings.ToLower(path.Ext(ref))
	for mt, e := range imageTypes {
		if e == ext {
			return mt
		}
	}
	return "application/octet-stream"
}

// checkRef rejects references that were not produced by NewKey.
func checkRef(ref string) error {
	if !strings.HasPrefix(ref, KeyPrefix) || strings.Contains(ref, "..") || strings.Contains(ref[len(KeyPrefix):], "/") {
		return ErrInvalidRef
	}
	return nil
}
