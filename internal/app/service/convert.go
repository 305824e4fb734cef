package service

import (
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

func deviceInfoFromConfig(cfg *storage.BasicConfig) tcb_protocol.DeviceInfoData {
	return tcb_protocol.DeviceInfoData{
		Firmware:      cfg.Firmware,
		Password:      cfg.Password,
		SleepTime:     cfg.SleepTime,
		Volume:        cfg.Volume,
		Language:      cfg.Language,
		DateFormat:    cfg.DateFormat,
		MachineStatus: cfg.MachineStatus,
		LanguageFlag:  cfg.LanguageFlag,
		CmdVersion:    cfg.CmdVersion,
	}
}

func applyDeviceInfo(cfg *storage.BasicConfig, info *tcb_protocol.DeviceInfoData) {
	cfg.Firmware = info.Firmware
	cfg.Password = info.Password
	cfg.SleepTime = info.SleepTime
	cfg.Volume = info.Volume
	cfg.Language = info.Language
	cfg.DateFormat = info.DateFormat
	cfg.MachineStatus = info.MachineStatus
	cfg.LanguageFlag = info.LanguageFlag
	cfg.CmdVersion = info.CmdVersion
}

// userFromStaffEntry 上传的用户总是处于启用状态
func userFromStaffEntry(e *tcb_protocol.StaffEntry) storage.User {
	return storage.User{
		ID:         e.UserID,
		Password:   e.Password,
		CardID:     e.CardID,
		Name:       e.Name,
		Department: e.Department,
		Group:      e.Group,
		Mode:       e.Mode,
		FPStatus:   e.FPStatus,
		Special:    e.Special,
		Active:     true,
	}
}

func staffEntryFromUser(u *storage.User) tcb_protocol.StaffEntry {
	return tcb_protocol.StaffEntry{
		UserID:     u.ID,
		Password:   u.Password,
		CardID:     u.CardID,
		Name:       u.Name,
		Department: u.Department,
		Group:      u.Group,
		Mode:       u.Mode,
		FPStatus:   u.FPStatus,
		Special:    u.Special,
	}
}

func recordFromEntry(e *tcb_protocol.RecordEntry) storage.AccessRecord {
	return storage.AccessRecord{
		UserID:     e.UserID,
		Timestamp:  e.Timestamp,
		BackupCode: e.BackupCode,
		RecordType: e.RecordType,
		WorkCode:   e.WorkCode,
	}
}

func recordEntryFromRecord(r *storage.AccessRecord, deviceID uint32) tcb_protocol.RecordEntry {
	return tcb_protocol.RecordEntry{
		UserID:     r.UserID,
		Timestamp:  r.Timestamp,
		BackupCode: r.BackupCode,
		RecordType: r.RecordType,
		WorkCode:   r.WorkCode,
		DeviceID:   deviceID,
	}
}
