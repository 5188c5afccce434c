package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore writes blobs into a directory on disk. The content type is kept
// in a sidecar file next to each blob.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

type localMeta struct {
	ContentType string `json:"contentType"`
}

func (s *LocalStore) Put(_ context.Context, name, contentType string, body io.Reader) (Object, error) {
	if !ValidName(name) {
		return Object{}, ErrInvalidName
	}

	target := filepath.Join(s.dir, name)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("create %s: %w", name, err)
	}

	size, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(target)
		return Object{}, fmt.Errorf("write %s: %w", name, err)
	}

	meta, err := json.Marshal(localMeta{ContentType: contentType})
	if err != nil {
		return Object{}, err
	}
	if err := os.WriteFile(s.metaPath(name), meta, 0o644); err != nil {
		return Object{}, fmt.Errorf("write metadata for %s: %w", name, err)
	}

	return Object{Name: name, ContentType: contentType, Size: size}, nil
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, Object, error) {
	if !ValidName(name) {
		return nil, Object{}, ErrInvalidName
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Object{}, ErrNotFound
	}
	if err != nil {
		return nil, Object{}, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Object{}, fmt.Errorf("stat %s: %w", name, err)
	}

	object := Object{Name: name, Size: info.Size(), ContentType: "application/octet-stream"}
	if data, err := os.ReadFile(s.metaPath(name)); err == nil {
		var meta localMeta
		if json.Unmarshal(data, &meta) == nil && meta.ContentType != "" {
			object.ContentType = meta.ContentType
		}
	}
	return f, object, nil
}

func (s *LocalStore) metaPath(name string) string {
	return filepath.Join(s.dir, "."+name+".meta")
}
