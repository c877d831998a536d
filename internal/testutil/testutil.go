package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"
)

const defaultRedisImage = "redis:8-alpine"

// JST has no DST, which keeps local-midnight arithmetic in tests predictable.
var JST = time.FixedZone("JST", 9*60*60)

// Morning is the fixed "now" most reminder tests start from.
var Morning = time.Date(2026, 3, 10, 8, 0, 0, 0, JST)

// SetupRedisContainer skips the test when docker is unavailable.
// REDIS_TEST_IMAGE overrides the image.
func SetupRedisContainer(ctx context.Context, t *testing.T) (*redis.Client, func()) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("failed to start redis container: %v", r)
		}
	}()

	image := os.Getenv("REDIS_TEST_IMAGE")
	if image == "" {
		image = defaultRedisImage
	}

	container, err := redismodule.Run(ctx, image)
	if err != nil {
		t.Skipf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Skipf("failed to get redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis container not reachable: %v", err)
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close redis client: %v", err)
		}

		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	}

	return client, cleanup
}
