package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/redis"
	apperrors "github.com/bujia-iot/iot-terminal/pkg/errors"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

// DefaultOpTimeout 单次读写的超时时间
const DefaultOpTimeout = 3 * time.Second

// Store 终端状态的持久化
// 读取时缺失的文档返回默认值，损坏的文档记录错误后按缺失处理；写入失败只记录日志
type Store struct {
	backend Backend
	timeout time.Duration
	log     *logrus.Entry
}

// New 基于指定存储创建
func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		timeout: DefaultOpTimeout,
		log:     logger.WithField("component", "persistence"),
	}
}

// Open 按配置打开持久化存储
func Open(ctx context.Context, storageCfg config.StorageConfig, redisCfg config.RedisConfig) (*Store, error) {
	switch storageCfg.Backend {
	case "", "file":
		backend, err := NewFileBackend(storageCfg.DataDir)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "redis":
		client, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return New(NewRedisBackend(client, storageCfg.KeyPrefix)), nil
	default:
		return nil, apperrors.New(apperrors.ErrInvalidParameter, fmt.Sprintf("unsupported storage backend: %s", storageCfg.Backend))
	}
}

// Close 关闭底层存储
func (s *Store) Close() error {
	return s.backend.Close()
}

// LoadConfig 读取配置
func (s *Store) LoadConfig() storage.BasicConfig {
	doc := toConfigDocument(storage.DefaultBasicConfig())
	if !s.load(DocConfig, &doc) {
		return storage.DefaultBasicConfig()
	}
	cfg, err := fromConfigDocument(doc)
	if err != nil {
		s.corrupted(DocConfig, err)
		return storage.DefaultBasicConfig()
	}
	return cfg
}

// SaveConfig 保存配置
func (s *Store) SaveConfig(cfg storage.BasicConfig) bool {
	return s.save(DocConfig, toConfigDocument(cfg))
}

// LoadUsers 读取用户列表
func (s *Store) LoadUsers() []storage.User {
	var doc usersDocument
	if !s.load(DocUsers, &doc) {
		return nil
	}
	users, err := fromUsersDocument(doc)
	if err != nil {
		s.corrupted(DocUsers, err)
		return nil
	}
	return users
}

// SaveUsers 保存用户列表
func (s *Store) SaveUsers(users []storage.User) bool {
	return s.save(DocUsers, toUsersDocument(users))
}

// LoadRecords 读取记录和新记录数
func (s *Store) LoadRecords() ([]storage.AccessRecord, int) {
	var doc recordsDocument
	if !s.load(DocRecords, &doc) {
		return nil, 0
	}
	records, newCount, err := fromRecordsDocument(doc)
	if err != nil {
		s.corrupted(DocRecords, err)
		return nil, 0
	}
	return records, newCount
}

// SaveRecords 保存记录和新记录数
func (s *Store) SaveRecords(records []storage.AccessRecord, newCount int) bool {
	return s.save(DocRecords, toRecordsDocument(records, newCount))
}

// load 读取并反序列化文档，文档缺失或损坏时返回false
func (s *Store) load(name string, v interface{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.backend.Read(ctx, name)
	if err != nil {
		if apperrors.IsErrCode(err, apperrors.ErrStorageNotFound) {
			s.log.WithField("document", name).Info("文档不存在，使用默认值")
		} else {
			s.log.WithError(err).WithField("document", name).Error("读取文档失败，使用默认值")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.corrupted(name, err)
		return false
	}
	return true
}

func (s *Store) save(name string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).WithField("document", name).Error("序列化文档失败")
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.backend.Write(ctx, name, data); err != nil {
		s.log.WithError(err).WithField("document", name).Error("保存文档失败")
		return false
	}
	s.log.WithFields(logrus.Fields{"document": name, "bytes": len(data)}).Debug("文档已保存")
	return true
}

func (s *Store) corrupted(name string, cause error) {
	err := apperrors.Wrap(apperrors.ErrStorageCorrupted, fmt.Sprintf("document %s corrupted", name), cause)
	s.log.WithError(err).WithField("document", name).Error("文档损坏，按缺失处理")
}
