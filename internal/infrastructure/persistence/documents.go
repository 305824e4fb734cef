package persistence

import (
	"encoding/hex"
	"fmt"

	"github.com/bujia-iot/iot-terminal/pkg/storage"
)

// configDocument config文档
type configDocument struct {
	DeviceID        uint32                 `json:"deviceId"`
	Firmware        string                 `json:"firmware"`
	Password        string                 `json:"password"`
	SleepTime       uint8                  `json:"sleep"`
	Volume          uint8                  `json:"volume"`
	Language        uint8                  `json:"language"`
	DateFormat      uint8                  `json:"dateformat"`
	MachineStatus   uint8                  `json:"status"`
	LanguageFlag    uint8                  `json:"langflag"`
	CmdVersion      uint8                  `json:"cmdver"`
	Pins            storage.Pins           `json:"pins"`
	RelayDurationMs int                    `json:"relayOnDuration"`
	Reboot          storage.RebootSchedule `json:"reboot"`
}

// userDocument 单个用户，字节数组字段以十六进制保存
type userDocument struct {
	ID         string `json:"id"`
	Password   string `json:"pwd"`
	CardID     uint32 `json:"card"`
	Name       string `json:"name"`
	Department uint8  `json:"dept"`
	Group      uint8  `json:"group"`
	Mode       uint8  `json:"mode"`
	FPStatus   string `json:"fp"`
	Special    uint8  `json:"special"`
	Active     *bool  `json:"active,omitempty"`
}

type usersDocument struct {
	Count int            `json:"count"`
	Users []userDocument `json:"users"`
}

type recordDocument struct {
	ID         string `json:"id"`
	Timestamp  uint32 `json:"time"`
	BackupCode uint8  `json:"backup"`
	RecordType uint8  `json:"type"`
	WorkCode   string `json:"work"`
}

type recordsDocument struct {
	Count    int              `json:"count"`
	NewCount int              `json:"new"`
	Records  []recordDocument `json:"records"`
}

func toConfigDocument(cfg storage.BasicConfig) configDocument {
	return configDocument{
		DeviceID:        cfg.DeviceID,
		Firmware:        hex.EncodeToString(cfg.Firmware[:]),
		Password:        hex.EncodeToString(cfg.Password[:]),
		SleepTime:       cfg.SleepTime,
		Volume:          cfg.Volume,
		Language:        cfg.Language,
		DateFormat:      cfg.DateFormat,
		MachineStatus:   cfg.MachineStatus,
		LanguageFlag:    cfg.LanguageFlag,
		CmdVersion:      cfg.CmdVersion,
		Pins:            cfg.Pins,
		RelayDurationMs: cfg.RelayDurationMs,
		Reboot:          cfg.Reboot,
	}
}

// fromConfigDocument 文档应先以默认配置填充再反序列化，缺省字段即保留默认值
func fromConfigDocument(doc configDocument) (storage.BasicConfig, error) {
	cfg := storage.BasicConfig{
		DeviceID:        doc.DeviceID,
		SleepTime:       doc.SleepTime,
		Volume:          doc.Volume,
		Language:        doc.Language,
		DateFormat:      doc.DateFormat,
		MachineStatus:   doc.MachineStatus,
		LanguageFlag:    doc.LanguageFlag,
		CmdVersion:      doc.CmdVersion,
		Pins:            doc.Pins,
		RelayDurationMs: doc.RelayDurationMs,
		Reboot:          doc.Reboot,
	}
	if err := decodeFixed(doc.Firmware, cfg.Firmware[:]); err != nil {
		return cfg, fmt.Errorf("firmware: %w", err)
	}
	if err := decodeFixed(doc.Password, cfg.Password[:]); err != nil {
		return cfg, fmt.Errorf("password: %w", err)
	}
	return cfg, cfg.Validate()
}

func toUsersDocument(users []storage.User) usersDocument {
	doc := usersDocument{Count: len(users), Users: make([]userDocument, 0, len(users))}
	for i := range users {
		u := &users[i]
		active := u.Active
		doc.Users = append(doc.Users, userDocument{
			ID:         hex.EncodeToString(u.ID[:]),
			Password:   hex.EncodeToString(u.Password[:]),
			CardID:     u.CardID,
			Name:       hex.EncodeToString(u.Name[:]),
			Department: u.Department,
			Group:      u.Group,
			Mode:       u.Mode,
			FPStatus:   hex.EncodeToString(u.FPStatus[:]),
			Special:    u.Special,
			Active:     &active,
		})
	}
	return doc
}

// fromUsersDocument 条数以count和实际数组长度中较小者为准，缺省active视为有效
func fromUsersDocument(doc usersDocument) ([]storage.User, error) {
	n := min(doc.Count, len(doc.Users), storage.MaxUsers)
	users := make([]storage.User, 0, n)
	for i := 0; i < n; i++ {
		d := doc.Users[i]
		var u storage.User
		if err := decodeFixed(d.ID, u.ID[:]); err != nil {
			return nil, fmt.Errorf("user %d id: %w", i, err)
		}
		if err := decodeFixed(d.Password, u.Password[:]); err != nil {
			return nil, fmt.Errorf("user %d pwd: %w", i, err)
		}
		if err := decodeFixed(d.Name, u.Name[:]); err != nil {
			return nil, fmt.Errorf("user %d name: %w", i, err)
		}
		if err := decodeFixed(d.FPStatus, u.FPStatus[:]); err != nil {
			return nil, fmt.Errorf("user %d fp: %w", i, err)
		}
		u.CardID = d.CardID
		u.Department = d.Department
		u.Group = d.Group
		u.Mode = d.Mode
		u.Special = d.Special
		u.Active = d.Active == nil || *d.Active
		users = append(users, u)
	}
	return users, nil
}

func toRecordsDocument(records []storage.AccessRecord, newCount int) recordsDocument {
	doc := recordsDocument{Count: len(records), NewCount: newCount, Records: make([]recordDocument, 0, len(records))}
	for i := range records {
		r := &records[i]
		doc.Records = append(doc.Records, recordDocument{
			ID:         hex.EncodeToString(r.UserID[:]),
			Timestamp:  r.Timestamp,
			BackupCode: r.BackupCode,
			RecordType: r.RecordType,
			WorkCode:   hex.EncodeToString(r.WorkCode[:]),
		})
	}
	return doc
}

func fromRecordsDocument(doc recordsDocument) ([]storage.AccessRecord, int, error) {
	n := min(doc.Count, len(doc.Records), storage.MaxRecords)
	records := make([]storage.AccessRecord, 0, n)
	for i := 0; i < n; i++ {
		d := doc.Records[i]
		var r storage.AccessRecord
		if err := decodeFixed(d.ID, r.UserID[:]); err != nil {
			return nil, 0, fmt.Errorf("record %d id: %w", i, err)
		}
		if err := decodeFixed(d.WorkCode, r.WorkCode[:]); err != nil {
			return nil, 0, fmt.Errorf("record %d work: %w", i, err)
		}
		r.Timestamp = d.Timestamp
		r.BackupCode = d.BackupCode
		r.RecordType = d.RecordType
		records = append(records, r)
	}
	newCount := max(0, min(doc.NewCount, len(records)))
	return records, newCount, nil
}

// decodeFixed 解码定长十六进制字段，空串表示全0
func decodeFixed(s string, dst []byte) error {
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("expected %d bytes, got %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}
