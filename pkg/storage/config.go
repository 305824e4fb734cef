package storage

import (
	"bytes"
	"fmt"
	"time"
)

// 默认配置
const (
	DefaultDeviceID         uint32 = 0x00010001
	DefaultFirmware                = "V1.0.0"
	DefaultVolume           uint8  = 5
	DefaultLanguage         uint8  = 2
	DefaultDateFormat       uint8  = 0x02
	DefaultLanguageFlag     uint8  = 0x10
	DefaultCmdVersion       uint8  = 0x02
	DefaultRelayDurationMs         = 2000
	DefaultRebootHour              = 3
	DefaultRebootMinute            = 0
	DefaultPinD0                   = 4
	DefaultPinD1                   = 5
	DefaultPinRelay                = 12
	DefaultPinLED                  = 2
	MaxRelayDurationMs             = 60000
)

// Pins GPIO引脚分配
type Pins struct {
	D0    int `json:"d0"`
	D1    int `json:"d1"`
	Relay int `json:"relay"`
	LED   int `json:"led"`
}

// RebootSchedule 定时重启
type RebootSchedule struct {
	Enabled bool `json:"enabled"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
}

// Due 判断给定时间是否命中重启时刻
func (r RebootSchedule) Due(t time.Time) bool {
	return r.Enabled && t.Hour() == r.Hour && t.Minute() == r.Minute
}

// BasicConfig 终端基本配置
type BasicConfig struct {
	DeviceID        uint32
	Firmware        [8]byte
	Password        [3]byte
	SleepTime       uint8
	Volume          uint8
	Language        uint8
	DateFormat      uint8 // 高4位日期格式，低4位12/24小时制
	MachineStatus   uint8
	LanguageFlag    uint8
	CmdVersion      uint8
	Pins            Pins
	RelayDurationMs int
	Reboot          RebootSchedule
}

// DefaultBasicConfig 返回默认配置
func DefaultBasicConfig() BasicConfig {
	cfg := BasicConfig{
		DeviceID:        DefaultDeviceID,
		Volume:          DefaultVolume,
		Language:        DefaultLanguage,
		DateFormat:      DefaultDateFormat,
		LanguageFlag:    DefaultLanguageFlag,
		CmdVersion:      DefaultCmdVersion,
		RelayDurationMs: DefaultRelayDurationMs,
		Pins: Pins{
			D0:    DefaultPinD0,
			D1:    DefaultPinD1,
			Relay: DefaultPinRelay,
			LED:   DefaultPinLED,
		},
		Reboot: RebootSchedule{
			Hour:   DefaultRebootHour,
			Minute: DefaultRebootMinute,
		},
	}
	cfg.SetFirmware(DefaultFirmware)
	return cfg
}

// FirmwareString 返回固件版本字符串
func (c *BasicConfig) FirmwareString() string {
	fw := c.Firmware[:]
	if i := bytes.IndexByte(fw, 0); i >= 0 {
		fw = fw[:i]
	}
	return string(fw)
}

// SetFirmware 设置固件版本，超出8字节的部分被截断
func (c *BasicConfig) SetFirmware(version string) {
	c.Firmware = [8]byte{}
	copy(c.Firmware[:], version)
}

// RelayDuration 返回继电器吸合时长
func (c *BasicConfig) RelayDuration() time.Duration {
	return time.Duration(c.RelayDurationMs) * time.Millisecond
}

// Validate 检查配置取值范围
func (c *BasicConfig) Validate() error {
	if c.RelayDurationMs <= 0 || c.RelayDurationMs > MaxRelayDurationMs {
		return fmt.Errorf("relay duration out of range: %dms", c.RelayDurationMs)
	}
	if c.Reboot.Hour < 0 || c.Reboot.Hour > 23 || c.Reboot.Minute < 0 || c.Reboot.Minute > 59 {
		return fmt.Errorf("reboot time out of range: %02d:%02d", c.Reboot.Hour, c.Reboot.Minute)
	}
	for name, pin := range map[string]int{"d0": c.Pins.D0, "d1": c.Pins.D1, "relay": c.Pins.Relay, "led": c.Pins.LED} {
		if pin < 0 || pin > 39 {
			return fmt.Errorf("pin %s out of range: %d", name, pin)
		}
	}
	return nil
}

// DateFormatDescription 描述日期格式字节
func (c *BasicConfig) DateFormatDescription() string {
	var date string
	switch c.DateFormat >> 4 {
	case 0:
		date = "YYYY-MM-DD"
	case 1:
		date = "MM/DD/YYYY"
	case 2:
		date = "DD/MM/YYYY"
	default:
		date = fmt.Sprintf("format-%d", c.DateFormat>>4)
	}
	if c.DateFormat&0x0F == 0 {
		return date + " 24h"
	}
	return date + " 12h"
}

// LanguageName 返回语言名称
func (c *BasicConfig) LanguageName() string {
	names := []string{"simplified-chinese", "traditional-chinese", "english", "french", "spanish", "portuguese"}
	if int(c.Language) < len(names) {
		return names[c.Language]
	}
	return fmt.Sprintf("language-%d", c.Language)
}
