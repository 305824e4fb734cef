package tcb_protocol

import (
	"encoding/binary"
	"fmt"
	"time"
)

// 所有时间戳均为终端墙上时间自2000-01-01 00:00:00起的秒数，不含时区
var protocolEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// 与Unix时间戳的差值
const epochOffsetSeconds = 946684800

// DeviceInfoData 设备信息 (0x30 / 0x31)
type DeviceInfoData struct {
	Firmware      [8]byte // 固件版本
	Password      [3]byte // 通讯密码
	SleepTime     uint8   // 休眠时间
	Volume        uint8   // 音量
	Language      uint8   // 语言
	DateFormat    uint8   // 高4位日期格式，低4位12/24小时制
	MachineStatus uint8   // 机器状态
	LanguageFlag  uint8   // 语言标志
	CmdVersion    uint8   // 命令集版本
}

func (d *DeviceInfoData) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, DeviceInfoLen)
	data = append(data, d.Firmware[:]...)
	data = append(data, d.Password[:]...)
	data = append(data, d.SleepTime, d.Volume, d.Language, d.DateFormat,
		d.MachineStatus, d.LanguageFlag, d.CmdVersion)
	return data, nil
}

func (d *DeviceInfoData) UnmarshalBinary(data []byte) error {
	if len(data) < DeviceInfoLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for device info", len(data), DeviceInfoLen)
	}
	copy(d.Firmware[:], data[0:8])
	copy(d.Password[:], data[8:11])
	d.SleepTime = data[11]
	d.Volume = data[12]
	d.Language = data[13]
	d.DateFormat = data[14]
	d.MachineStatus = data[15]
	d.LanguageFlag = data[16]
	d.CmdVersion = data[17]
	return nil
}

// RecordInfoData 记录统计信息 (0x3C)，每个计数占3字节
type RecordInfoData struct {
	UserCount        uint32
	FingerprintCount uint32
	PasswordCount    uint32
	CardCount        uint32
	TotalRecords     uint32
	NewRecords       uint32
}

func (r *RecordInfoData) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, RecordInfoLen)
	for _, v := range []uint32{r.UserCount, r.FingerprintCount, r.PasswordCount,
		r.CardCount, r.TotalRecords, r.NewRecords} {
		data = appendUint24(data, v)
	}
	return data, nil
}

func (r *RecordInfoData) UnmarshalBinary(data []byte) error {
	if len(data) < RecordInfoLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for record info", len(data), RecordInfoLen)
	}
	r.UserCount = uint24(data[0:3])
	r.FingerprintCount = uint24(data[3:6])
	r.PasswordCount = uint24(data[6:9])
	r.CardCount = uint24(data[9:12])
	r.TotalRecords = uint24(data[12:15])
	r.NewRecords = uint24(data[15:18])
	return nil
}

// TimeData 设备时间 (0x38 / 0x39)，年份为2000年起的偏移
type TimeData struct {
	Year   uint8
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
}

// NewTimeData 由时间生成时间数据，年份按100取模
func NewTimeData(t time.Time) TimeData {
	return TimeData{
		Year:   uint8(t.Year() % 100),
		Month:  uint8(t.Month()),
		Day:    uint8(t.Day()),
		Hour:   uint8(t.Hour()),
		Minute: uint8(t.Minute()),
	}
}

// Validate 检查各字段范围
func (t *TimeData) Validate() error {
	if t.Year > 99 || t.Month < 1 || t.Month > 12 || t.Day < 1 || t.Hour > 23 || t.Minute > 59 {
		return fmt.Errorf("time out of range: %02d-%02d-%02d %02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute)
	}
	if int(t.Day) > daysIn(2000+int(t.Year), time.Month(t.Month)) {
		return fmt.Errorf("invalid day %d for %04d-%02d", t.Day, 2000+int(t.Year), t.Month)
	}
	return nil
}

// Time 转换为指定时区的时间
func (t *TimeData) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(2000+int(t.Year), time.Month(t.Month), int(t.Day), int(t.Hour), int(t.Minute), 0, 0, loc)
}

func (t *TimeData) MarshalBinary() ([]byte, error) {
	return []byte{t.Year, t.Month, t.Day, t.Hour, t.Minute}, nil
}

func (t *TimeData) UnmarshalBinary(data []byte) error {
	if len(data) < TimeLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for time", len(data), TimeLen)
	}
	t.Year, t.Month, t.Day, t.Hour, t.Minute = data[0], data[1], data[2], data[3], data[4]
	return nil
}

// DownloadRequestData 分页下载请求 (0x40 / 0x42)
type DownloadRequestData struct {
	Param uint8 // 0继续 1从头全部 2从头新记录
	Count uint8 // 请求条数
}

func (d *DownloadRequestData) MarshalBinary() ([]byte, error) {
	return []byte{d.Param, d.Count}, nil
}

func (d *DownloadRequestData) UnmarshalBinary(data []byte) error {
	if len(data) < DownloadRequestLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for download request", len(data), DownloadRequestLen)
	}
	d.Param = data[0]
	d.Count = data[1]
	return nil
}

// DeleteUserData 删除用户请求 (0x4C)
type DeleteUserData struct {
	UserID [5]byte
	Mode   uint8 // 0xFF彻底删除，否则按位清除
}

func (d *DeleteUserData) MarshalBinary() ([]byte, error) {
	return append(append([]byte{}, d.UserID[:]...), d.Mode), nil
}

func (d *DeleteUserData) UnmarshalBinary(data []byte) error {
	if len(data) < DeleteUserLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for delete user", len(data), DeleteUserLen)
	}
	copy(d.UserID[:], data[0:5])
	d.Mode = data[5]
	return nil
}

// DeviceIDData 通讯设备ID (0x74 / 0x75)
type DeviceIDData struct {
	DeviceID uint32
}

func (d *DeviceIDData) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint32(nil, d.DeviceID), nil
}

func (d *DeviceIDData) UnmarshalBinary(data []byte) error {
	if len(data) < DeviceIDLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for device id", len(data), DeviceIDLen)
	}
	d.DeviceID = binary.BigEndian.Uint32(data[0:4])
	return nil
}

// StaffEntry 员工信息条目
// 27字节格式卡号占3字节，30字节格式卡号占4字节且后续字段整体后移一位
type StaffEntry struct {
	UserID     [5]byte
	Password   [3]byte
	CardID     uint32
	Name       [10]byte
	Department uint8
	Group      uint8
	Mode       uint8
	FPStatus   [2]byte
	Special    uint8
}

// MarshalBinary 编码为27字节格式，卡号截断为低24位
func (s *StaffEntry) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, StaffEntryLen)
	data = append(data, s.UserID[:]...)
	data = append(data, s.Password[:]...)
	data = appendUint24(data, s.CardID&0xFFFFFF)
	return s.appendTail(data), nil
}

// MarshalExtended 编码为30字节格式
func (s *StaffEntry) MarshalExtended() ([]byte, error) {
	data := make([]byte, 0, StaffEntryExtLen)
	data = append(data, s.UserID[:]...)
	data = append(data, s.Password[:]...)
	data = binary.BigEndian.AppendUint32(data, s.CardID)
	data = s.appendTail(data)
	// 末尾2字节保留
	return append(data, 0, 0), nil
}

func (s *StaffEntry) appendTail(data []byte) []byte {
	data = append(data, s.Name[:]...)
	data = append(data, s.Department, s.Group, s.Mode)
	data = append(data, s.FPStatus[:]...)
	return append(data, s.Special)
}

// UnmarshalBinary 按长度识别格式：27字节为标准格式，30字节为扩展格式
func (s *StaffEntry) UnmarshalBinary(data []byte) error {
	switch len(data) {
	case StaffEntryLen:
		return s.unmarshal(data, 3)
	case StaffEntryExtLen:
		return s.unmarshal(data, 4)
	default:
		return fmt.Errorf("invalid staff entry length: %d, expected %d or %d", len(data), StaffEntryLen, StaffEntryExtLen)
	}
}

func (s *StaffEntry) unmarshal(data []byte, cardLen int) error {
	copy(s.UserID[:], data[0:5])
	copy(s.Password[:], data[5:8])
	if cardLen == 3 {
		s.CardID = uint24(data[8:11])
	} else {
		s.CardID = binary.BigEndian.Uint32(data[8:12])
	}
	off := 8 + cardLen
	copy(s.Name[:], data[off:off+10])
	s.Department = data[off+10]
	s.Group = data[off+11]
	s.Mode = data[off+12]
	copy(s.FPStatus[:], data[off+13:off+15])
	s.Special = data[off+15]
	return nil
}

// StaffUploadData 员工上传请求 (0x43 / 0x73)
type StaffUploadData struct {
	Extended bool
	Entries  []StaffEntry
}

// EntryLen 返回单条员工信息长度
func (u *StaffUploadData) EntryLen() int {
	if u.Extended {
		return StaffEntryExtLen
	}
	return StaffEntryLen
}

func (u *StaffUploadData) MarshalBinary() ([]byte, error) {
	if len(u.Entries) > 0xFF {
		return nil, fmt.Errorf("too many staff entries: %d", len(u.Entries))
	}
	data := make([]byte, 0, 1+len(u.Entries)*u.EntryLen())
	data = append(data, byte(len(u.Entries)))
	for i := range u.Entries {
		var (
			entry []byte
			err   error
		)
		if u.Extended {
			entry, err = u.Entries[i].MarshalExtended()
		} else {
			entry, err = u.Entries[i].MarshalBinary()
		}
		if err != nil {
			return nil, err
		}
		data = append(data, entry...)
	}
	return data, nil
}

// UnmarshalBinary 解析上传请求，调用前需设置Extended
// 数据不足以容纳声明的条数时整体失败
func (u *StaffUploadData) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("insufficient data length: %d, expected at least 1 for staff upload", len(data))
	}
	count := int(data[0])
	entryLen := u.EntryLen()
	if len(data) < 1+count*entryLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for %d staff entries", len(data), 1+count*entryLen, count)
	}
	u.Entries = make([]StaffEntry, count)
	for i := 0; i < count; i++ {
		off := 1 + i*entryLen
		if err := u.Entries[i].UnmarshalBinary(data[off : off+entryLen]); err != nil {
			return err
		}
	}
	return nil
}

// StaffDownloadData 员工下载应答 (0x42)
type StaffDownloadData struct {
	Entries []StaffEntry
}

func (d *StaffDownloadData) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, 1+len(d.Entries)*StaffEntryLen)
	data = append(data, byte(len(d.Entries)))
	for i := range d.Entries {
		entry, _ := d.Entries[i].MarshalBinary()
		data = append(data, entry...)
	}
	return data, nil
}

func (d *StaffDownloadData) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("insufficient data length: %d, expected at least 1 for staff download", len(data))
	}
	count := int(data[0])
	if len(data) < 1+count*StaffEntryLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for %d staff entries", len(data), 1+count*StaffEntryLen, count)
	}
	d.Entries = make([]StaffEntry, count)
	for i := 0; i < count; i++ {
		off := 1 + i*StaffEntryLen
		if err := d.Entries[i].UnmarshalBinary(data[off : off+StaffEntryLen]); err != nil {
			return err
		}
	}
	return nil
}

// UploadResultData 上传结果位图，第i位对应第i条，低字节在前
type UploadResultData struct {
	Mask uint16
}

// Set 标记第i条成功，超出16条的部分无法表示
func (u *UploadResultData) Set(i int) {
	if i >= 0 && i < 16 {
		u.Mask |= 1 << uint(i)
	}
}

// IsSet 第i条是否成功
func (u *UploadResultData) IsSet(i int) bool {
	return i >= 0 && i < 16 && u.Mask&(1<<uint(i)) != 0
}

func (u *UploadResultData) MarshalBinary() ([]byte, error) {
	return binary.LittleEndian.AppendUint16(nil, u.Mask), nil
}

func (u *UploadResultData) UnmarshalBinary(data []byte) error {
	if len(data) < UploadBitmaskLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for upload result", len(data), UploadBitmaskLen)
	}
	u.Mask = binary.LittleEndian.Uint16(data[0:2])
	return nil
}

// RecordEntry 考勤记录条目
// 上传格式14字节，下载格式18字节（末尾追加4字节设备ID）
type RecordEntry struct {
	UserID     [5]byte
	Timestamp  uint32 // 2000-01-01起的秒数
	BackupCode uint8  // 验证方式
	RecordType uint8  // 最高位为进出方向
	WorkCode   [3]byte
	DeviceID   uint32
}

// MarshalBinary 编码为18字节下载格式
func (r *RecordEntry) MarshalBinary() ([]byte, error) {
	data := r.marshalUpload(make([]byte, 0, RecordDownloadEntryLen))
	return binary.BigEndian.AppendUint32(data, r.DeviceID), nil
}

// MarshalUpload 编码为14字节上传格式
func (r *RecordEntry) MarshalUpload() ([]byte, error) {
	return r.marshalUpload(make([]byte, 0, RecordUploadEntryLen)), nil
}

func (r *RecordEntry) marshalUpload(data []byte) []byte {
	data = append(data, r.UserID[:]...)
	data = binary.BigEndian.AppendUint32(data, r.Timestamp)
	data = append(data, r.BackupCode, r.RecordType)
	return append(data, r.WorkCode[:]...)
}

// UnmarshalBinary 按长度识别14字节上传格式或18字节下载格式
func (r *RecordEntry) UnmarshalBinary(data []byte) error {
	if len(data) != RecordUploadEntryLen && len(data) != RecordDownloadEntryLen {
		return fmt.Errorf("invalid record entry length: %d, expected %d or %d", len(data), RecordUploadEntryLen, RecordDownloadEntryLen)
	}
	copy(r.UserID[:], data[0:5])
	r.Timestamp = binary.BigEndian.Uint32(data[5:9])
	r.BackupCode = data[9]
	r.RecordType = data[10]
	copy(r.WorkCode[:], data[11:14])
	r.DeviceID = 0
	if len(data) == RecordDownloadEntryLen {
		r.DeviceID = binary.BigEndian.Uint32(data[14:18])
	}
	return nil
}

// RecordUploadData 记录上传请求 (0x41)
type RecordUploadData struct {
	Entries []RecordEntry
}

func (u *RecordUploadData) MarshalBinary() ([]byte, error) {
	if len(u.Entries) > 0xFF {
		return nil, fmt.Errorf("too many record entries: %d", len(u.Entries))
	}
	data := make([]byte, 0, 1+len(u.Entries)*RecordUploadEntryLen)
	data = append(data, byte(len(u.Entries)))
	for i := range u.Entries {
		entry, _ := u.Entries[i].MarshalUpload()
		data = append(data, entry...)
	}
	return data, nil
}

func (u *RecordUploadData) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("insufficient data length: %d, expected at least 1 for record upload", len(data))
	}
	count := int(data[0])
	if len(data) < 1+count*RecordUploadEntryLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for %d records", len(data), 1+count*RecordUploadEntryLen, count)
	}
	u.Entries = make([]RecordEntry, count)
	for i := 0; i < count; i++ {
		off := 1 + i*RecordUploadEntryLen
		if err := u.Entries[i].UnmarshalBinary(data[off : off+RecordUploadEntryLen]); err != nil {
			return err
		}
	}
	return nil
}

// RecordDownloadData 记录下载应答 (0x40)
type RecordDownloadData struct {
	Entries []RecordEntry
}

func (d *RecordDownloadData) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, 1+len(d.Entries)*RecordDownloadEntryLen)
	data = append(data, byte(len(d.Entries)))
	for i := range d.Entries {
		entry, _ := d.Entries[i].MarshalBinary()
		data = append(data, entry...)
	}
	return data, nil
}

func (d *RecordDownloadData) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("insufficient data length: %d, expected at least 1 for record download", len(data))
	}
	count := int(data[0])
	if len(data) < 1+count*RecordDownloadEntryLen {
		return fmt.Errorf("insufficient data length: %d, expected %d for %d records", len(data), 1+count*RecordDownloadEntryLen, count)
	}
	d.Entries = make([]RecordEntry, count)
	for i := 0; i < count; i++ {
		off := 1 + i*RecordDownloadEntryLen
		if err := d.Entries[i].UnmarshalBinary(data[off : off+RecordDownloadEntryLen]); err != nil {
			return err
		}
	}
	return nil
}

// TimestampFromTime 按t所在时区的年月日时分秒计算协议时间戳，早于2000年的时间返回0
func TimestampFromTime(t time.Time) uint32 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	sec := wall.Unix() - epochOffsetSeconds
	if sec < 0 {
		return 0
	}
	if sec > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(sec)
}

// TimeFromTimestamp 将协议时间戳还原为墙上时间，loc为nil时按UTC
func TimeFromTimestamp(ts uint32, loc *time.Location) time.Time {
	t := protocolEpoch.Add(time.Duration(ts) * time.Second)
	if loc == nil || loc == time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func appendUint24(data []byte, v uint32) []byte {
	if v > 0xFFFFFF {
		v = 0xFFFFFF
	}
	return append(data, byte(v>>16), byte(v>>8), byte(v))
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
