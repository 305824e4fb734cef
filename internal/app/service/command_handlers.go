package service

import (
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/notification"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/sirupsen/logrus"
)

func (s *TerminalService) registerHandlers() {
	s.handlers = map[byte]commandHandler{
		tcb_protocol.CmdGetDeviceInfo:  s.handleGetDeviceInfo,
		tcb_protocol.CmdSetDeviceInfo:  s.handleSetDeviceInfo,
		tcb_protocol.CmdGetTime:        s.handleGetTime,
		tcb_protocol.CmdSetTime:        s.handleSetTime,
		tcb_protocol.CmdGetRecordInfo:  s.handleGetRecordInfo,
		tcb_protocol.CmdDownloadRecord: s.handleDownloadRecords,
		tcb_protocol.CmdUploadRecord:   s.handleUploadRecords,
		tcb_protocol.CmdDownloadStaff:  s.handleDownloadStaff,
		tcb_protocol.CmdUploadStaff:    func(p []byte) (tcb_protocol.Status, []byte) { return s.handleUploadStaff(p, false) },
		tcb_protocol.CmdUploadStaffExt: func(p []byte) (tcb_protocol.Status, []byte) { return s.handleUploadStaff(p, true) },
		tcb_protocol.CmdDeleteUser:     s.handleDeleteUser,
		tcb_protocol.CmdDeleteRecords:  s.handleDeleteRecords,
		tcb_protocol.CmdForcedUnlock:   s.handleForcedUnlock,
		tcb_protocol.CmdGetDeviceID:    s.handleGetDeviceID,
		tcb_protocol.CmdSetDeviceID:    s.handleSetDeviceID,
		tcb_protocol.CmdGetDeviceType:  s.handleGetDeviceType,
	}
}

func marshalled(data []byte, err error) (tcb_protocol.Status, []byte) {
	if err != nil {
		logger.Errorf("应答数据编码失败: %v", err)
		return tcb_protocol.AckFail, nil
	}
	return tcb_protocol.AckSuccess, data
}

func rejected(cmd byte, err error) (tcb_protocol.Status, []byte) {
	logger.WithFields(logrus.Fields{
		"command": tcb_protocol.CommandName(cmd),
		"error":   err.Error(),
	}).Warn("请求数据无效")
	return tcb_protocol.AckFail, nil
}

// 0x30
func (s *TerminalService) handleGetDeviceInfo([]byte) (tcb_protocol.Status, []byte) {
	info := deviceInfoFromConfig(&s.cfg)
	return marshalled(info.MarshalBinary())
}

// 0x31
func (s *TerminalService) handleSetDeviceInfo(payload []byte) (tcb_protocol.Status, []byte) {
	var info tcb_protocol.DeviceInfoData
	if err := info.UnmarshalBinary(payload); err != nil {
		return rejected(tcb_protocol.CmdSetDeviceInfo, err)
	}
	applyDeviceInfo(&s.cfg, &info)
	s.saveConfig()
	return tcb_protocol.AckSuccess, nil
}

// 0x38
func (s *TerminalService) handleGetTime([]byte) (tcb_protocol.Status, []byte) {
	t := tcb_protocol.NewTimeData(s.clock.Now())
	return marshalled(t.MarshalBinary())
}

// 0x39
func (s *TerminalService) handleSetTime(payload []byte) (tcb_protocol.Status, []byte) {
	var t tcb_protocol.TimeData
	if err := t.UnmarshalBinary(payload); err != nil {
		return rejected(tcb_protocol.CmdSetTime, err)
	}
	if err := t.Validate(); err != nil {
		return rejected(tcb_protocol.CmdSetTime, err)
	}
	now := s.clock.Now()
	s.clock.Set(t.Time(now.Location()))
	return tcb_protocol.AckSuccess, nil
}

// 0x3C
func (s *TerminalService) handleGetRecordInfo([]byte) (tcb_protocol.Status, []byte) {
	userCount := uint32(s.users.Count())
	total, newCount := s.records.Counts()
	info := tcb_protocol.RecordInfoData{
		UserCount:    userCount,
		CardCount:    userCount,
		TotalRecords: uint32(total),
		NewRecords:   uint32(newCount),
	}
	return marshalled(info.MarshalBinary())
}

// 0x40
// 参数1从头下载，2从新记录起点下载，0从上次位置继续；每次下载后游标前移
func (s *TerminalService) handleDownloadRecords(payload []byte) (tcb_protocol.Status, []byte) {
	var req tcb_protocol.DownloadRequestData
	if err := req.UnmarshalBinary(payload); err != nil {
		return rejected(tcb_protocol.CmdDownloadRecord, err)
	}

	count := min(int(req.Count), tcb_protocol.MaxRecordsPerDownload)
	total, newCount := s.records.Counts()
	switch req.Param {
	case tcb_protocol.DownloadRestartAll:
		s.recordCursor = 0
	case tcb_protocol.DownloadRestartNewOnly:
		s.recordCursor = max(0, total-newCount)
		count = min(count, newCount)
	case tcb_protocol.DownloadContinue:
	default:
		count = 0
	}
	s.recordCursor = min(s.recordCursor, total)

	if count == 0 {
		return tcb_protocol.AckSuccess, nil
	}
	records := s.records.Range(s.recordCursor, count)
	if len(records) == 0 {
		return tcb_protocol.AckSuccess, nil
	}
	s.recordCursor += len(records)

	resp := tcb_protocol.RecordDownloadData{Entries: make([]tcb_protocol.RecordEntry, len(records))}
	for i := range records {
		resp.Entries[i] = recordEntryFromRecord(&records[i], s.cfg.DeviceID)
	}
	status, data := marshalled(resp.MarshalBinary())

	if req.Param == tcb_protocol.DownloadRestartNewOnly {
		s.records.ClearNewFlag()
		s.saveRecords()
	}

	logger.WithFields(logrus.Fields{
		"param":  req.Param,
		"count":  len(records),
		"cursor": s.recordCursor,
	}).Debug("下载考勤记录")
	return status, data
}

// 0x41
func (s *TerminalService) handleUploadRecords(payload []byte) (tcb_protocol.Status, []byte) {
	var req tcb_protocol.RecordUploadData
	if err := req.UnmarshalBinary(payload); err != nil {
		return rejected(tcb_protocol.CmdUploadRecord, err)
	}
	if len(req.Entries) == 0 {
		return tcb_protocol.AckFail, nil
	}

	evicted := 0
	for i := range req.Entries {
		evicted += s.records.Append(recordFromEntry(&req.Entries[i]))
	}
	s.saveRecords()

	logger.WithFields(logrus.Fields{
		"count":   len(req.Entries),
		"evicted": evicted,
	}).Info("上传考勤记录")
	s.notifier.Notify(notification.EventTypeRecordUploaded, s.cfg.DeviceID, map[string]interface{}{
		"count":   len(req.Entries),
		"evicted": evicted,
	})
	return tcb_protocol.AckSuccess, nil
}

// 0x42
// 游标到达末尾后回到开头
func (s *TerminalService) handleDownloadStaff(payload []byte) (tcb_protocol.Status, []byte) {
	var req tcb_protocol.DownloadRequestData
	if err := req.UnmarshalBinary(payload); err != nil {
		return rejected(tcb_protocol.CmdDownloadStaff, err)
	}

	count := min(int(req.Count), tcb_protocol.MaxStaffPerDownload)
	switch req.Param {
	case tcb_protocol.DownloadRestartAll:
		s.staffCursor = 0
	case tcb_protocol.DownloadContinue:
	default:
		count = 0
	}

	var users []storage.User
	if count > 0 {
		users = s.users.Range(s.staffCursor, count)
	}
	s.staffCursor += len(users)
	if s.staffCursor >= s.users.Count() {
		s.staffCursor = 0
	}

	resp := tcb_protocol.StaffDownloadData{Entries: make([]tcb_protocol.StaffEntry, len(users))}
	for i := range users {
		resp.Entries[i] = staffEntryFromUser(&users[i])
	}
	return marshalled(resp.MarshalBinary())
}

// 0x43 / 0x73
// 每条单独处理，结果位图按输入顺序标记成功的条目
func (s *TerminalService) handleUploadStaff(payload []byte, extended bool) (tcb_protocol.Status, []byte) {
	req := tcb_protocol.StaffUploadData{Extended: extended}
	if err := req.UnmarshalBinary(payload); err != nil {
		cmd := tcb_protocol.CmdUploadStaff
		if extended {
			cmd = tcb_protocol.CmdUploadStaffExt
		}
		return rejected(cmd, err)
	}

	var result tcb_protocol.UploadResultData
	inserted, updated, full := 0, 0, 0
	for i := range req.Entries {
		switch s.users.Upsert(userFromStaffEntry(&req.Entries[i])) {
		case storage.UpsertInserted:
			inserted++
			result.Set(i)
		case storage.UpsertUpdated:
			updated++
			result.Set(i)
		default:
			full++
		}
	}
	s.saveUsers()

	logger.WithFields(logrus.Fields{
		"extended": extended,
		"inserted": inserted,
		"updated":  updated,
		"rejected": full,
		"users":    s.users.Count(),
	}).Info("上传员工信息")
	return marshalled(result.MarshalBinary())
}

// 0x4C
func (s *TerminalService) handleDeleteUser(payload []byte) (tcb_protocol.Status, []byte) {
	var req tcb_protocol.DeleteUserData
	if err := req.UnmarshalBinary(payload); err != nil {
		return rejected(tcb_protocol.CmdDeleteUser, err)
	}
	if !s.users.Delete(req.UserID, req.Mode) {
		return tcb_protocol.AckNoUser, nil
	}
	s.saveUsers()

	logger.WithFields(logrus.Fields{
		"userId": storage.FormatUserID(req.UserID),
		"mode":   req.Mode,
	}).Info("删除用户数据")
	return tcb_protocol.AckSuccess, nil
}

// 0x4E
// 参数1清空全部记录，参数2只清除新记录标记，其它值不做修改
func (s *TerminalService) handleDeleteRecords(payload []byte) (tcb_protocol.Status, []byte) {
	if len(payload) < 1 {
		return tcb_protocol.AckFail, nil
	}
	switch payload[0] {
	case tcb_protocol.ClearAllRecords:
		s.records.ClearAll()
		s.recordCursor = 0
	case tcb_protocol.ClearNewFlag:
		s.records.ClearNewFlag()
	}
	s.saveRecords()
	return tcb_protocol.AckSuccess, nil
}

// 0x5E
func (s *TerminalService) handleForcedUnlock([]byte) (tcb_protocol.Status, []byte) {
	s.pulse(s.cfg.RelayDuration())
	s.notifier.Notify(notification.EventTypeUnlock, s.cfg.DeviceID, map[string]interface{}{
		"source":     "protocol",
		"durationMs": s.cfg.RelayDurationMs,
	})
	return tcb_protocol.AckSuccess, nil
}

// 0x74
func (s *TerminalService) handleGetDeviceID([]byte) (tcb_protocol.Status, []byte) {
	id := tcb_protocol.DeviceIDData{DeviceID: s.cfg.DeviceID}
	return marshalled(id.MarshalBinary())
}

// 0x75
// 只做兼容应答，设备ID通过管理接口修改
func (s *TerminalService) handleSetDeviceID(payload []byte) (tcb_protocol.Status, []byte) {
	var req tcb_protocol.DeviceIDData
	if err := req.UnmarshalBinary(payload); err != nil {
		return rejected(tcb_protocol.CmdSetDeviceID, err)
	}
	logger.WithFields(logrus.Fields{
		"current":   s.cfg.DeviceID,
		"requested": req.DeviceID,
	}).Info("收到修改设备ID请求，保持当前ID")
	return tcb_protocol.AckSuccess, nil
}

// 0x48
func (s *TerminalService) handleGetDeviceType([]byte) (tcb_protocol.Status, []byte) {
	return tcb_protocol.AckSuccess, nil
}
