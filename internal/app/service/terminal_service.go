package service

import (
	"context"
	"sync"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/notification"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/sirupsen/logrus"
)

// Persistence 配置、用户和记录三类文档的持久化
// 加载时缺失或损坏的数据按默认值处理，保存失败由实现方记录日志
type Persistence interface {
	LoadConfig() storage.BasicConfig
	SaveConfig(cfg storage.BasicConfig) bool
	LoadUsers() []storage.User
	SaveUsers(users []storage.User) bool
	LoadRecords() ([]storage.AccessRecord, int)
	SaveRecords(records []storage.AccessRecord, newCount int) bool
}

// Actuator 门锁继电器和指示灯
type Actuator interface {
	SetRelay(on bool)
	SetIndicator(on bool)
}

// PinConfigurer 支持运行时调整引脚的执行器
type PinConfigurer interface {
	SetPins(pins storage.Pins)
}

// Clock 终端时钟
type Clock interface {
	Now() time.Time
	Set(t time.Time)
}

// Notifier 终端事件通知
type Notifier interface {
	Notify(eventType string, deviceID uint32, data map[string]interface{})
}

// Dependencies 终端服务依赖的外部协作者
type Dependencies struct {
	Persistence Persistence
	Actuator    Actuator
	Clock       Clock
	Notifier    Notifier // 可为空
}

type commandHandler func(payload []byte) (tcb_protocol.Status, []byte)

// TerminalService 终端协议引擎
// 持有用户/记录存储、两个下载游标和基本配置，所有命令串行处理
type TerminalService struct {
	mu       sync.Mutex
	cfg      storage.BasicConfig
	users    *storage.UserStore
	records  *storage.RecordStore
	handlers map[byte]commandHandler

	staffCursor  int
	recordCursor int

	persist  Persistence
	actuator Actuator
	clock    Clock
	notifier Notifier

	// 开锁脉冲，重复开锁时延长释放时间
	unlockMu    sync.Mutex
	unlockTimer *time.Timer
	unlockGen   uint64
	unlocked    bool

	lastReboot time.Time
	startedAt  time.Time
}

// NewTerminalService 创建终端服务并从持久化加载全部状态
func NewTerminalService(deps Dependencies) *TerminalService {
	s := &TerminalService{
		users:     storage.NewUserStore(storage.MaxUsers),
		records:   storage.NewRecordStore(storage.MaxRecords),
		persist:   deps.Persistence,
		actuator:  deps.Actuator,
		clock:     deps.Clock,
		notifier:  deps.Notifier,
		startedAt: time.Now(),
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	s.registerHandlers()

	s.mu.Lock()
	s.reloadLocked()
	s.mu.Unlock()
	return s
}

// reloadLocked 从持久化重新加载配置、用户和记录，并复位下载游标
func (s *TerminalService) reloadLocked() {
	s.cfg = s.persist.LoadConfig()
	loaded := s.users.Load(s.persist.LoadUsers())
	records, newCount := s.persist.LoadRecords()
	s.records.Load(records, newCount)
	s.staffCursor = 0
	s.recordCursor = 0

	if pc, ok := s.actuator.(PinConfigurer); ok {
		pc.SetPins(s.cfg.Pins)
	}

	total, fresh := s.records.Counts()
	logger.WithFields(logrus.Fields{
		"deviceId":   s.cfg.DeviceID,
		"firmware":   s.cfg.FirmwareString(),
		"users":      loaded,
		"records":    total,
		"newRecords": fresh,
	}).Info("终端状态已加载")
}

// Handle 处理一个请求帧并返回应答帧
// 未知命令返回失败状态，不会静默丢弃
func (s *TerminalService) Handle(req *tcb_protocol.Request) *tcb_protocol.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := tcb_protocol.AckFail
	var data []byte
	if handler, ok := s.handlers[req.Command]; ok {
		status, data = handler(req.Payload)
	} else {
		logger.WithFields(logrus.Fields{
			"command": tcb_protocol.CommandName(req.Command),
		}).Warn("不支持的命令")
	}

	logger.WithFields(logrus.Fields{
		"requestDeviceId": req.DeviceID,
		"command":         tcb_protocol.CommandName(req.Command),
		"payloadLen":      len(req.Payload),
		"status":          status.String(),
		"dataLen":         len(data),
	}).Debug("命令处理完成")

	return tcb_protocol.NewResponse(s.cfg.DeviceID, req.Command, status, data)
}

// DeviceID 返回当前设备ID
func (s *TerminalService) DeviceID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.DeviceID
}

// pulse 吸合继电器并点亮指示灯，duration后释放
func (s *TerminalService) pulse(duration time.Duration) {
	s.unlockMu.Lock()
	defer s.unlockMu.Unlock()

	if s.unlockTimer != nil {
		s.unlockTimer.Stop()
	}
	if !s.unlocked {
		s.actuator.SetRelay(true)
		s.actuator.SetIndicator(true)
		s.unlocked = true
	}
	s.unlockGen++
	gen := s.unlockGen
	s.unlockTimer = time.AfterFunc(duration, func() { s.release(gen) })
}

func (s *TerminalService) release(gen uint64) {
	s.unlockMu.Lock()
	defer s.unlockMu.Unlock()
	// 已被新的开锁请求延长
	if gen != s.unlockGen || !s.unlocked {
		return
	}
	s.actuator.SetRelay(false)
	s.actuator.SetIndicator(false)
	s.unlocked = false
	s.unlockTimer = nil
}

// Unlocked 门锁当前是否处于打开状态
func (s *TerminalService) Unlocked() bool {
	s.unlockMu.Lock()
	defer s.unlockMu.Unlock()
	return s.unlocked
}

// Start 启动定时重启检查
func (s *TerminalService) Start(ctx context.Context) {
	go s.runScheduler(ctx, 20*time.Second)
}

// Close 释放门锁并停止定时器
func (s *TerminalService) Close() {
	s.unlockMu.Lock()
	if s.unlockTimer != nil {
		s.unlockTimer.Stop()
		s.unlockTimer = nil
	}
	s.unlockGen++
	if s.unlocked {
		s.actuator.SetRelay(false)
		s.actuator.SetIndicator(false)
		s.unlocked = false
	}
	s.unlockMu.Unlock()
}

func (s *TerminalService) runScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkReboot()
		}
	}
}

// checkReboot 到达重启时刻时执行软重启，同一分钟内只执行一次
func (s *TerminalService) checkReboot() bool {
	now := s.clock.Now()
	minute := now.Truncate(time.Minute)

	s.mu.Lock()
	if !s.cfg.Reboot.Due(now) || minute.Equal(s.lastReboot) {
		s.mu.Unlock()
		return false
	}
	s.lastReboot = minute
	s.mu.Unlock()

	logger.WithField("at", now.Format("2006-01-02 15:04")).Info("定时重启")
	s.restart("schedule", now)
	return true
}

// restart 软重启：从持久化重新加载状态，复位游标并释放继电器
func (s *TerminalService) restart(source string, at time.Time) {
	s.mu.Lock()
	s.reloadLocked()
	deviceID := s.cfg.DeviceID
	s.mu.Unlock()

	s.Close()
	s.notifier.Notify(notification.EventTypeRestart, deviceID, map[string]interface{}{
		"at":     at.Format(time.RFC3339),
		"source": source,
	})
}

func (s *TerminalService) saveConfig() {
	s.persist.SaveConfig(s.cfg)
}

func (s *TerminalService) saveUsers() {
	s.persist.SaveUsers(s.users.Snapshot())
}

func (s *TerminalService) saveRecords() {
	records, newCount := s.records.Snapshot()
	s.persist.SaveRecords(records, newCount)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, uint32, map[string]interface{}) {}
