package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	redisAddrEnv          = "REDIS_ADDR"
	redisPasswordEnv      = "REDIS_PASSWORD"
	redisDBEnv            = "REDIS_DB"
	redisTLSEnv           = "REDIS_TLS"
	redisDialTimeoutMsEnv = "REDIS_DIAL_TIMEOUT_MS"

	defaultRedisAddr          = "localhost:6379"
	defaultRedisDialTimeoutMs = 5000
)

// RedisConfig is only consulted when STORAGE_BACKEND=redis.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	TLS         bool
	DialTimeout time.Duration
}

func LoadRedisConfig() (*RedisConfig, error) {
	cfg := &RedisConfig{
		Addr:        os.Getenv(redisAddrEnv),
		Password:    os.Getenv(redisPasswordEnv),
		TLS:         os.Getenv(redisTLSEnv) == "true",
		DialTimeout: time.Duration(positiveIntEnv(redisDialTimeoutMsEnv, defaultRedisDialTimeoutMs)) * time.Millisecond,
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultRedisAddr
	}

	if raw := os.Getenv(redisDBEnv); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRedisDB, raw)
		}
		cfg.DB = db
	}

	return cfg, nil
}

func (c *RedisConfig) Validate() error {
	if c == nil || c.Addr == "" {
		return ErrRedisAddrMissing
	}
	return nil
}
