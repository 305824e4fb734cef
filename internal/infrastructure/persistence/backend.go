package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/bujia-iot/iot-terminal/pkg/errors"
)

// 文档名称
const (
	DocConfig  = "config"
	DocUsers   = "users"
	DocRecords = "records"
)

// Backend 键-文档存储
// 文档不存在时Read返回ErrStorageNotFound
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// FileBackend 以目录下的JSON文件保存文档
type FileBackend struct {
	dir string
}

// NewFileBackend 创建文件存储，目录不存在时自动创建
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageSaveFailed, "failed to create data directory", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

// Read 读取文档
func (b *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.New(apperrors.ErrStorageNotFound, fmt.Sprintf("document %s not found", name))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageLoadFailed, fmt.Sprintf("failed to read document %s", name), err)
	}
	return data, nil
}

// Write 先写临时文件再重命名，避免写入中断留下半个文档
func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageSaveFailed, fmt.Sprintf("failed to create temp file for %s", name), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.ErrStorageSaveFailed, fmt.Sprintf("failed to write document %s", name), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.ErrStorageSaveFailed, fmt.Sprintf("failed to close document %s", name), err)
	}
	if err := os.Rename(tmpName, b.path(name)); err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.ErrStorageSaveFailed, fmt.Sprintf("failed to replace document %s", name), err)
	}
	return nil
}

// Close 文件存储无需关闭
func (b *FileBackend) Close() error {
	return nil
}

// RedisBackend 以Redis字符串键保存文档
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend 创建Redis存储，键名为prefix+文档名
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// Read 读取文档
func (b *RedisBackend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.New(apperrors.ErrStorageNotFound, fmt.Sprintf("document %s not found", name))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRedisOperationFailed, fmt.Sprintf("failed to get document %s", name), err)
	}
	return data, nil
}

// Write 写入文档
func (b *RedisBackend) Write(ctx context.Context, name string, data []byte) error {
	if err := b.client.Set(ctx, b.prefix+name, data, 0).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrRedisOperationFailed, fmt.Sprintf("failed to set document %s", name), err)
	}
	return nil
}

// Close 关闭Redis连接
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
