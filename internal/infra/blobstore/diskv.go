package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type diskStore struct {
	d        *diskv.Diskv
	basePath string
}

// NewDiskStore keeps one file per key directly under basePath.
func NewDiskStore(basePath string) (domain.BlobStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageDirMissing, err)
	}

	return &diskStore{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           filepath.Join(basePath, ".tmp"),
			AdvancedTransform: flatTransform,
			InverseTransform:  flatInverseTransform,
			CacheSizeMax:      256 * 1024,
		}),
		basePath: basePath,
	}, nil
}

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func flatInverseTransform(pk *diskv.PathKey) string {
	return pk.FileName
}

func (s *diskStore) Load(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return val, nil
}

func (s *diskStore) Save(_ context.Context, key string, blob []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := s.d.Write(key, blob); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}

func (s *diskStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageDirMissing, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrStorageDirMissing, s.basePath)
	}
	return nil
}
