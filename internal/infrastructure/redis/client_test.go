package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/pkg/errors"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Address: "127.0.0.1:6379", DB: 2, ReadTimeout: 3})
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, defaultDialTimeout, opts.DialTimeout)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), config.RedisConfig{Address: mr.Addr(), DialTimeout: 1})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), config.RedisConfig{Address: addr, DialTimeout: 1})
	require.Error(t, err)
	assert.True(t, errors.IsErrCode(err, errors.ErrRedisConnectionFailed))
}
