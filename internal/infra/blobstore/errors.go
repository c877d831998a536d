package blobstore

import "errors"

var (
	ErrEmptyKey          = errors.New("blob key must not be empty")
	ErrRedisConnection   = errors.New("redis connection error")
	ErrStorageDirMissing = errors.New("storage directory unavailable")
)
