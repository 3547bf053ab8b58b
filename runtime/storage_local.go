//go:build !cloudflare

package runtime

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalFileStorage implements Storage on a directory of the local file system.
// Used by the CLI and the native server for templates, exports and deck files.
type LocalFileStorage struct {
	baseDir string
}

// NewLocalFileStorage creates the base directory if needed
func NewLocalFileStorage(baseDir string) (*LocalFileStorage, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, err
	}
	return &LocalFileStorage{baseDir: absPath}, nil
}

// FullPath returns the absolute path for a key, rejecting keys that escape baseDir
func (s *LocalFileStorage) FullPath(key string) (string, error) {
	cleanKey := filepath.Clean(filepath.FromSlash(key))
	if cleanKey == ".." || strings.HasPrefix(cleanKey, ".."+string(filepath.Separator)) || filepath.IsAbs(cleanKey) {
		return "", fs.ErrInvalid
	}
	full := filepath.Join(s.baseDir, cleanKey)
	if full != s.baseDir && !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return "", fs.ErrInvalid
	}
	return full, nil
}

func (s *LocalFileStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.FullPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, io.EOF
	}
	return file, err
}

func (s *LocalFileStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := s.FullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// List walks every file under baseDir whose slash-separated key starts with
// prefix. With a delimiter, keys containing the delimiter after the prefix
// are rolled up into DelimitedPrefixes.
func (s *LocalFileStorage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	result := &ListResult{Keys: []string{}, DelimitedPrefixes: []string{}}
	seen := make(map[string]bool)

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		if delimiter != "" {
			if i := strings.Index(key[len(prefix):], delimiter); i >= 0 {
				p := key[:len(prefix)+i+len(delimiter)]
				if !seen[p] {
					seen[p] = true
					result.DelimitedPrefixes = append(result.DelimitedPrefixes, p)
				}
				return nil
			}
		}
		result.Keys = append(result.Keys, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(result.Keys)
	sort.Strings(result.DelimitedPrefixes)
	return result, nil
}

func (s *LocalFileStorage) Delete(ctx context.Context, key string) error {
	path, err := s.FullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
