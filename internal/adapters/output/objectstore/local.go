// Package objectstore implements the object storage port on the local
// filesystem and on S3-compatible services.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type Local struct {
	rootDir string
	baseURL string
}

// NewLocal stores objects under rootDir. Returned locations are baseURL+key
// when baseURL is set, file:// URLs otherwise.
func NewLocal(rootDir, baseURL string) *Local {
	return &Local{rootDir: rootDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (l *Local) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	dst, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if l.baseURL != "" {
		return l.baseURL + "/" + key, nil
	}
	abs, _ := filepath.Abs(dst)
	return "file://" + abs, nil
}

// DeleteMany removes every key it can and returns the joined errors. Missing
// objects are not an error.
func (l *Local) DeleteMany(_ context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		p, err := l.path(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove object %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.rootDir, clean), nil
}
