package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Publisher 事件发布通道
type Publisher interface {
	Publish(topic string, qos byte, payload []byte) error
	Close()
}

// NotificationService 通知服务
// 事件先进入内存队列，由单个工作协程发布，发送方不会被阻塞
type NotificationService struct {
	config    *NotificationConfig
	publisher Publisher
	recorder  *EventRecorder

	mu         sync.RWMutex
	running    bool
	eventQueue chan *NotificationEvent
	wg         sync.WaitGroup

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewNotificationService 创建通知服务，publisher为nil时只记录不发布
func NewNotificationService(config *NotificationConfig, publisher Publisher) (*NotificationService, error) {
	if config == nil {
		config = DefaultNotificationConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %v", err)
	}
	if publisher == nil || !config.Enabled {
		publisher = NoopPublisher{}
	}

	return &NotificationService{
		config:    config,
		publisher: publisher,
		recorder:  NewEventRecorder(config.RecentSize),
	}, nil
}

// Start 启动通知服务
func (s *NotificationService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("通知服务已在运行")
	}

	s.eventQueue = make(chan *NotificationEvent, s.config.QueueSize)
	s.running = true
	s.wg.Add(1)
	go s.worker(s.eventQueue)

	logger.WithFields(logrus.Fields{
		"queue_size":   s.config.QueueSize,
		"topic_prefix": s.config.TopicPrefix,
	}).Info("通知服务已启动")
	return nil
}

// Stop 停止通知服务，队列中剩余的事件在ctx到期前尽量发完
func (s *NotificationService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.eventQueue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	s.publisher.Close()
	logger.Info("通知服务已停止")
	return err
}

// SendNotification 发送通知
func (s *NotificationService) SendNotification(event *NotificationEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return fmt.Errorf("通知服务未运行")
	}

	s.recorder.Record(event)
	select {
	case s.eventQueue <- event:
		return nil
	default:
		s.dropped.Add(1)
		return fmt.Errorf("通知队列已满")
	}
}

// Notify 构造并发送事件，失败只记日志
func (s *NotificationService) Notify(eventType string, deviceID uint32, data map[string]interface{}) {
	event := &NotificationEvent{
		EventType: eventType,
		DeviceID:  deviceID,
		Data:      data,
		Timestamp: time.Now(),
	}
	if err := s.SendNotification(event); err != nil {
		logger.WithFields(logrus.Fields{
			"event_type": eventType,
			"error":      err.Error(),
		}).Warn("事件未能入队")
	}
}

// worker 工作协程
func (s *NotificationService) worker(queue <-chan *NotificationEvent) {
	defer s.wg.Done()
	for event := range queue {
		s.processEvent(event)
	}
}

func (s *NotificationService) processEvent(event *NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.failed.Add(1)
		logger.WithField("event_id", event.EventID).Errorf("事件序列化失败: %v", err)
		return
	}

	topic := s.config.TopicPrefix + "/" + TopicSuffix(event.EventType)
	if err := s.publisher.Publish(topic, s.config.QoS, payload); err != nil {
		s.failed.Add(1)
		logger.WithFields(logrus.Fields{
			"event_id": event.EventID,
			"topic":    topic,
			"error":    err.Error(),
		}).Warn("事件发布失败")
		return
	}
	s.sent.Add(1)
	logger.WithFields(logrus.Fields{
		"event_id":   event.EventID,
		"event_type": event.EventType,
		"topic":      topic,
	}).Debug("事件已发布")
}

// Recent 返回最近的事件
func (s *NotificationService) Recent(limit int) []*NotificationEvent {
	return s.recorder.Recent(limit)
}

// GetStats 获取统计信息
func (s *NotificationService) GetStats() NotificationStats {
	return NotificationStats{
		TotalSent:      s.sent.Load(),
		TotalFailed:    s.failed.Load(),
		TotalDropped:   s.dropped.Load(),
		LastUpdateTime: time.Now(),
	}
}

// IsRunning 检查服务是否运行中
func (s *NotificationService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NoopPublisher 不发布任何内容
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, byte, []byte) error { return nil }
func (NoopPublisher) Close()                             {}
