// Package blob stores uploaded files under opaque generated names. The rest of
// the system only ever sees the filename string.
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
)

// Object describes a stored blob.
type Object struct {
	Name        string
	ContentType string
	Size        int64
}

// Store is implemented by LocalStore and S3Store.
type Store interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (Object, error)
	Open(ctx context.Context, name string) (io.ReadCloser, Object, error)
}

// NewName generates a unique blob name keeping the extension of the original
// upload.
func NewName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(path.Base(filepath.ToSlash(originalName))))
	if !validExt(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// ValidName reports whether name is a single safe path element.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return !strings.HasPrefix(name, ".")
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
