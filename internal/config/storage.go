package config

import (
	"fmt"
	"os"
	"strings"
)

type StorageBackend string

const (
	StorageDisk   StorageBackend = "disk"
	StorageRedis  StorageBackend = "redis"
	StorageSQLite StorageBackend = "sqlite"
	StorageMemory StorageBackend = "memory"

	defaultStoragePath = "./data"
	defaultSQLitePath  = "./data/countdown.db"
)

type StorageConfig struct {
	Backend    StorageBackend
	Path       string
	SQLitePath string
}

func LoadStorageConfig() (*StorageConfig, error) {
	backend := StorageBackend(strings.ToLower(os.Getenv("STORAGE_BACKEND")))
	switch backend {
	case "":
		backend = StorageDisk
	case StorageDisk, StorageRedis, StorageSQLite, StorageMemory:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStorage, backend)
	}

	path := os.Getenv("STORAGE_PATH")
	if path == "" {
		path = defaultStoragePath
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = defaultSQLitePath
	}

	return &StorageConfig{
		Backend:    backend,
		Path:       path,
		SQLitePath: sqlitePath,
	}, nil
}
