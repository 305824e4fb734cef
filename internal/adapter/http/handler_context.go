package http

import (
	"github.com/bujia-iot/iot-terminal/internal/app/service"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/zinx_server"
	"github.com/bujia-iot/iot-terminal/pkg/metrics"
	"github.com/bujia-iot/iot-terminal/pkg/notification"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

// TerminalAdmin 管理接口使用的终端操作
type TerminalAdmin interface {
	Status() service.TerminalStatus
	Users() []storage.User
	LatestRecords(limit int) []service.RecordView
	ClearRecords()
	Settings() storage.BasicConfig
	UpdateSettings(update service.SettingsUpdate) (storage.BasicConfig, error)
	Unlock()
	Restart()
	Swipe(cardID uint32) service.SwipeResult
}

// SessionLister 协议连接列表
type SessionLister interface {
	List() []zinx_server.SessionInfo
}

// EventSource 最近发布的事件
type EventSource interface {
	Recent(limit int) []*notification.NotificationEvent
	GetStats() notification.NotificationStats
}

// MetricsSource 协议命令指标
type MetricsSource interface {
	Snapshot() metrics.Summary
}

// HandlerContext HTTP处理器上下文
// 包含处理器需要的所有依赖，通过依赖注入提供
type HandlerContext struct {
	Terminal TerminalAdmin
	Sessions SessionLister
	Events   EventSource // 可为空
	Metrics  MetricsSource
}

// NewHandlerContext 创建处理器上下文
func NewHandlerContext(terminal TerminalAdmin, sessions SessionLister, events EventSource) *HandlerContext {
	return &HandlerContext{
		Terminal: terminal,
		Sessions: sessions,
		Events:   events,
		Metrics:  metrics.GetGlobalMetrics(),
	}
}
