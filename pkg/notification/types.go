package notification

import (
	"fmt"
	"time"
)

// NotificationEvent 终端事件
type NotificationEvent struct {
	EventID   string                 `json:"event_id"`   // 事件ID
	EventType string                 `json:"event_type"` // 事件类型
	DeviceID  uint32                 `json:"device_id"`  // 终端设备ID
	Timestamp time.Time              `json:"timestamp"`  // 时间戳
	Data      map[string]interface{} `json:"data"`       // 事件数据
}

// 事件类型常量
const (
	EventTypeAccessGranted  = "access_granted"  // 刷卡通过
	EventTypeAccessDenied   = "access_denied"   // 刷卡未登记
	EventTypeRecordUploaded = "record_uploaded" // 管理软件上传了记录
	EventTypeUnlock         = "unlock"          // 强制开锁
	EventTypeRestart        = "restart"         // 定时重启
)

// 主题后缀
const (
	TopicRecords = "records"
	TopicUnlock  = "unlock"
	TopicSystem  = "system"
)

// TopicSuffix 返回事件类型对应的主题后缀
func TopicSuffix(eventType string) string {
	switch eventType {
	case EventTypeAccessGranted, EventTypeAccessDenied, EventTypeRecordUploaded:
		return TopicRecords
	case EventTypeUnlock:
		return TopicUnlock
	default:
		return TopicSystem
	}
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	Enabled     bool   // 是否启用
	QueueSize   int    // 队列大小
	TopicPrefix string // 主题前缀
	QoS         byte   // 发布QoS
	RecentSize  int    // 内存中保留的最近事件条数
}

// DefaultNotificationConfig 默认配置
func DefaultNotificationConfig() *NotificationConfig {
	return &NotificationConfig{
		Enabled:     true,
		QueueSize:   256,
		TopicPrefix: "terminal",
		RecentSize:  200,
	}
}

// Validate 检查配置
func (c *NotificationConfig) Validate() error {
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive: %d", c.QueueSize)
	}
	if c.QoS > 2 {
		return fmt.Errorf("invalid qos: %d", c.QoS)
	}
	if c.TopicPrefix == "" {
		return fmt.Errorf("topic prefix is required")
	}
	return nil
}

// NotificationStats 通知统计
type NotificationStats struct {
	TotalSent      int64     `json:"total_sent"`       // 总发送数
	TotalFailed    int64     `json:"total_failed"`     // 总失败数
	TotalDropped   int64     `json:"total_dropped"`    // 队列满丢弃数
	LastUpdateTime time.Time `json:"last_update_time"` // 最后更新时间
}
