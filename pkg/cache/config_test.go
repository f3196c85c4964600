package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisConfigValidate(t *testing.T) {
	cfg := &RedisConfig{Addr: "localhost:6379"}
	WithRedisAddr("redis.internal:6380")(cfg)
	WithRedisAddr("")(cfg)
	assert.Equal(t, "redis.internal:6380", cfg.Addr)
	require.NoError(t, cfg.validate())

	for _, bad := range []string{"not-an-addr", ":7000", "redis:0", "redis:port"} {
		assert.Error(t, (&RedisConfig{Addr: bad}).validate(), bad)
	}
}

func TestNewRedisCacheRejectsBadAddr(t *testing.T) {
	_, err := NewRedisCache(WithRedisAddr("nowhere"))
	assert.ErrorContains(t, err, "redis addr")

	_, err = NewRedisCache(WithRedisAddr("127.0.0.1:1"), WithRedisDialTimeout(200*time.Millisecond))
	assert.ErrorContains(t, err, "redis ping")
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "series:WALCL", Key("series", "WALCL"))
	assert.Equal(t, "frame:2024-01-01", Key("frame", "", "2024-01-01"))
	assert.Equal(t, "series:*", Pattern("series"))
	assert.Equal(t, "*", Pattern(""))

	fp := Fingerprint("-WTREGEN", "+WALCL")
	assert.Len(t, fp, 16)
	assert.Equal(t, fp, Fingerprint("-WTREGEN", "+WALCL"))
	assert.NotEqual(t, fp, Fingerprint("+WALCL", "-WTREGEN"))
}
