package redis

import (
	"context"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultDialTimeout = 5 * time.Second

// Options 将配置转换为go-redis连接参数，超时单位为秒
func Options(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  seconds(cfg.DialTimeout),
		ReadTimeout:  seconds(cfg.ReadTimeout),
		WriteTimeout: seconds(cfg.WriteTimeout),
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	return opts
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// NewClient 按配置创建Redis客户端，在连接超时内PING不通则返回错误
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrRedisConnectionFailed, "ping "+cfg.Address, err)
	}

	logger.WithFields(map[string]interface{}{
		"address": cfg.Address,
		"db":      cfg.DB,
	}).Info("Redis连接成功")
	return client, nil
}
