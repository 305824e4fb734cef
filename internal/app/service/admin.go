package service

import (
	"time"

	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/errors"
	"github.com/bujia-iot/iot-terminal/pkg/notification"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/sirupsen/logrus"
)

// TerminalStatus 终端运行状态
type TerminalStatus struct {
	DeviceID      uint32
	Firmware      string
	Users         int
	UserCapacity  int
	Records       int
	NewRecords    int
	RecordCap     int
	Clock         time.Time
	DateFormat    string
	Language      string
	Unlocked      bool
	StartedAt     time.Time
	RebootEnabled bool
}

// RecordView 带用户名的考勤记录
type RecordView struct {
	storage.AccessRecord
	UserName string
	Time     time.Time
}

// SettingsUpdate 管理接口可修改的设置，nil表示不修改
type SettingsUpdate struct {
	DeviceID        *uint32
	Pins            *storage.Pins
	RelayDurationMs *int
	Reboot          *storage.RebootSchedule
}

// SwipeResult 刷卡结果
type SwipeResult struct {
	Granted bool
	User    storage.User
	Record  storage.AccessRecord
}

// Status 返回终端状态
func (s *TerminalService) Status() TerminalStatus {
	s.mu.Lock()
	total, newCount := s.records.Counts()
	st := TerminalStatus{
		DeviceID:      s.cfg.DeviceID,
		Firmware:      s.cfg.FirmwareString(),
		Users:         s.users.Count(),
		UserCapacity:  s.users.Capacity(),
		Records:       total,
		NewRecords:    newCount,
		RecordCap:     s.records.Capacity(),
		Clock:         s.clock.Now(),
		DateFormat:    s.cfg.DateFormatDescription(),
		Language:      s.cfg.LanguageName(),
		StartedAt:     s.startedAt,
		RebootEnabled: s.cfg.Reboot.Enabled,
	}
	s.mu.Unlock()
	st.Unlocked = s.Unlocked()
	return st
}

// Users 返回全部用户
func (s *TerminalService) Users() []storage.User {
	return s.users.Snapshot()
}

// LatestRecords 返回最近的limit条记录，最新的在前
func (s *TerminalService) LatestRecords(limit int) []RecordView {
	records := s.records.Latest(limit)
	loc := s.clock.Now().Location()
	views := make([]RecordView, len(records))
	for i, r := range records {
		name := storage.UnknownUserName
		if u, ok := s.users.GetByID(r.UserID); ok {
			name = u.DisplayName()
		}
		views[i] = RecordView{
			AccessRecord: r,
			UserName:     name,
			Time:         tcb_protocol.TimeFromTimestamp(r.Timestamp, loc),
		}
	}
	return views
}

// ClearRecords 清空全部考勤记录
func (s *TerminalService) ClearRecords() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.ClearAll()
	s.recordCursor = 0
	s.saveRecords()
	logger.Info("考勤记录已通过管理接口清空")
}

// Settings 返回当前配置副本
func (s *TerminalService) Settings() storage.BasicConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// UpdateSettings 修改并保存设置，校验失败时不做任何修改
func (s *TerminalService) UpdateSettings(update SettingsUpdate) (storage.BasicConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	if update.DeviceID != nil {
		next.DeviceID = *update.DeviceID
	}
	if update.Pins != nil {
		next.Pins = *update.Pins
	}
	if update.RelayDurationMs != nil {
		next.RelayDurationMs = *update.RelayDurationMs
	}
	if update.Reboot != nil {
		next.Reboot = *update.Reboot
	}
	if err := next.Validate(); err != nil {
		return s.cfg, errors.Wrap(errors.ErrInvalidParameter, "invalid settings", err)
	}

	if next.DeviceID != s.cfg.DeviceID {
		logger.WithFields(logrus.Fields{
			"from": s.cfg.DeviceID,
			"to":   next.DeviceID,
		}).Info("设备ID已修改")
	}
	if pc, ok := s.actuator.(PinConfigurer); ok && next.Pins != s.cfg.Pins {
		pc.SetPins(next.Pins)
	}
	s.cfg = next
	s.saveConfig()
	return s.cfg, nil
}

// Unlock 管理接口触发开锁
func (s *TerminalService) Unlock() {
	s.mu.Lock()
	duration, deviceID, ms := s.cfg.RelayDuration(), s.cfg.DeviceID, s.cfg.RelayDurationMs
	s.mu.Unlock()

	s.pulse(duration)
	s.notifier.Notify(notification.EventTypeUnlock, deviceID, map[string]interface{}{
		"source":     "admin",
		"durationMs": ms,
	})
}

// Restart 管理接口触发软重启
func (s *TerminalService) Restart() {
	logger.Info("管理接口重启终端")
	s.restart("admin", s.clock.Now())
}

// Swipe 读卡器刷卡
// 卡号属于启用用户时记录进门并开锁，否则只通知拒绝
func (s *TerminalService) Swipe(cardID uint32) SwipeResult {
	s.mu.Lock()
	deviceID := s.cfg.DeviceID
	idx, ok := s.users.FindActiveByCard(cardID)
	if !ok {
		s.mu.Unlock()
		logger.WithField("cardId", cardID).Info("未登记的卡")
		s.notifier.Notify(notification.EventTypeAccessDenied, deviceID, map[string]interface{}{
			"cardId": cardID,
		})
		return SwipeResult{}
	}

	user, _ := s.users.Get(idx)
	record := storage.AccessRecord{
		UserID:     user.ID,
		Timestamp:  tcb_protocol.TimestampFromTime(s.clock.Now()),
		BackupCode: storage.BackupCard,
		RecordType: storage.RecordTypeIn,
	}
	s.records.Append(record)
	s.saveRecords()
	duration := s.cfg.RelayDuration()
	s.mu.Unlock()

	s.pulse(duration)
	logger.WithFields(logrus.Fields{
		"cardId": cardID,
		"userId": user.DecimalID(),
		"name":   user.DisplayName(),
	}).Info("刷卡通过")
	s.notifier.Notify(notification.EventTypeAccessGranted, deviceID, map[string]interface{}{
		"cardId":    cardID,
		"userId":    user.DecimalID(),
		"name":      user.DisplayName(),
		"timestamp": record.Timestamp,
		"direction": record.Direction(),
		"method":    record.Method(),
	})
	return SwipeResult{Granted: true, User: user, Record: record}
}
