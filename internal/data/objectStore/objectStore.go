package objectStore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/google/uuid"
)

// Store holds raw uploads. Keys are paths relative to the store root.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
}

type fileStore struct {
	root string
}

// NewFileStore stores objects under root, creating it if needed.
func NewFileStore(root string) (Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errorModel.Configuration("object store", err)
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, errorModel.StoreUnavailable("object store", err)
	}
	return &fileStore{root: abs}, nil
}

func (s *fileStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.ToSlash(path))
	if clean == "/" {
		return "", errorModel.InvalidInput("object store", fmt.Errorf("empty key"))
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *fileStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errorModel.New(errorModel.KindNotFound, "object get", fmt.Errorf("%s", path))
	}
	if err != nil {
		return nil, errorModel.StoreUnavailable("object get", err)
	}
	return data, nil
}

// Put writes to a temp file and renames it into place so readers never see a partial object.
func (s *fileStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		return errorModel.StoreUnavailable("object put", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return errorModel.StoreUnavailable("object put", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errorModel.StoreUnavailable("object put", err)
	}
	if err := tmp.Close(); err != nil {
		return errorModel.StoreUnavailable("object put", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return errorModel.StoreUnavailable("object put", err)
	}
	return nil
}

func (s *fileStore) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errorModel.StoreUnavailable("object delete", err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SafeName is a collision-free storage key for an uploaded file name: "<uuid>-<sanitized>".
func SafeName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "document"
	}
	if len(base) > 120 {
		ext := filepath.Ext(base)
		if len(ext) > 16 {
			ext = ""
		}
		base = base[:120-len(ext)] + ext
	}
	return uuid.NewString() + "-" + base
}
