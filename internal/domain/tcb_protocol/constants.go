package tcb_protocol

import "fmt"

// TC-B协议常量定义
const (
	STX byte = 0xA5 // 帧起始标识

	RequestHeaderLen  = 8  // STX(1) + 设备ID(4) + 命令(1) + 长度(2)
	ResponseHeaderLen = 9  // STX(1) + 设备ID(4) + 应答命令(1) + 状态(1) + 长度(2)
	ChecksumLen       = 2  // CRC16
	MinRequestLen     = RequestHeaderLen + ChecksumLen
	MinResponseLen    = ResponseHeaderLen + ChecksumLen
	AckFlag           = 0x80 // 应答命令 = 请求命令 | 0x80

	// 单帧最大数据长度，可容纳一次上传255条4字节卡号格式的员工信息
	DefaultMaxPayloadLen = 1 + 255*StaffEntryExtLen
)

// 命令码定义
const (
	CmdGetDeviceInfo  byte = 0x30 // 读取T&A信息1
	CmdSetDeviceInfo  byte = 0x31 // 设置T&A信息1
	CmdGetTime        byte = 0x38 // 读取设备时间
	CmdSetTime        byte = 0x39 // 设置设备时间
	CmdGetRecordInfo  byte = 0x3C // 读取记录信息
	CmdDownloadRecord byte = 0x40 // 下载考勤记录
	CmdUploadRecord   byte = 0x41 // 上传考勤记录
	CmdDownloadStaff  byte = 0x42 // 下载员工信息
	CmdUploadStaff    byte = 0x43 // 上传员工信息（27字节格式）
	CmdGetDeviceType  byte = 0x48 // 读取设备类型码
	CmdDeleteUser     byte = 0x4C // 删除用户数据
	CmdDeleteRecords  byte = 0x4E // 清除记录/清除新记录标记
	CmdForcedUnlock   byte = 0x5E // 强制开锁
	CmdUploadStaffExt byte = 0x73 // 上传员工信息（30字节格式）
	CmdGetDeviceID    byte = 0x74 // 读取通讯设备ID
	CmdSetDeviceID    byte = 0x75 // 修改通讯设备ID
)

// Status 应答状态码
type Status byte

const (
	AckSuccess        Status = 0x00 // 操作成功
	AckFail           Status = 0x01 // 操作失败
	AckFull           Status = 0x04 // 存储已满
	AckEmpty          Status = 0x05 // 无数据
	AckNoUser         Status = 0x06 // 用户不存在
	AckTimeout        Status = 0x08 // 采集超时
	AckUserOccupied   Status = 0x0A // 用户已存在
	AckFingerOccupied Status = 0x0B // 指纹已存在
)

// String 返回状态码的可读名称
func (s Status) String() string {
	switch s {
	case AckSuccess:
		return "success"
	case AckFail:
		return "fail"
	case AckFull:
		return "full"
	case AckEmpty:
		return "empty"
	case AckNoUser:
		return "no_user"
	case AckTimeout:
		return "timeout"
	case AckUserOccupied:
		return "user_occupied"
	case AckFingerOccupied:
		return "finger_occupied"
	default:
		return fmt.Sprintf("status_0x%02X", byte(s))
	}
}

// 下载参数
const (
	DownloadContinue       byte = 0x00 // 继续上次的下载
	DownloadRestartAll     byte = 0x01 // 从头下载全部
	DownloadRestartNewOnly byte = 0x02 // 从头下载新记录
)

// 清除记录参数
const (
	ClearAllRecords byte = 0x01
	ClearNewFlag    byte = 0x02
)

// 每次下载的最大条数
const (
	MaxRecordsPerDownload = 25
	MaxStaffPerDownload   = 12
)

// 各类条目在线路上的长度
const (
	DeviceInfoLen      = 18
	RecordInfoLen      = 18
	TimeLen            = 5
	DeviceIDLen        = 4
	DownloadRequestLen = 2
	DeleteUserLen      = 6
	UploadBitmaskLen   = 2

	RecordDownloadEntryLen = 18 // 用户ID(5) + 时间(4) + 备份码(1) + 记录类型(1) + 工作码(3) + 设备ID(4)
	RecordUploadEntryLen   = 14 // 用户ID(5) + 时间(4) + 备份码(1) + 记录类型(1) + 工作码(3)
	StaffEntryLen          = 27 // 3字节卡号格式
	StaffEntryExtLen       = 30 // 4字节卡号格式
)

// 删除用户方式
const (
	DeleteModeAll      byte = 0xFF // 彻底删除用户
	DeleteModeCard     byte = 0x08 // 清除卡号
	DeleteModePassword byte = 0x04 // 清除密码
)

// commandNames 命令名称映射，用于日志
var commandNames = map[byte]string{
	CmdGetDeviceInfo:  "device-info-get",
	CmdSetDeviceInfo:  "device-info-set",
	CmdGetTime:        "time-get",
	CmdSetTime:        "time-set",
	CmdGetRecordInfo:  "record-info-get",
	CmdDownloadRecord: "records-download",
	CmdUploadRecord:   "record-upload",
	CmdDownloadStaff:  "staff-download",
	CmdUploadStaff:    "staff-upload",
	CmdGetDeviceType:  "device-type-get",
	CmdDeleteUser:     "user-delete",
	CmdDeleteRecords:  "records-delete",
	CmdForcedUnlock:   "forced-unlock",
	CmdUploadStaffExt: "staff-upload-ext",
	CmdGetDeviceID:    "device-id-get",
	CmdSetDeviceID:    "device-id-set",
}

// CommandName 返回命令名称，未知命令返回十六进制表示
func CommandName(cmd byte) string {
	if name, ok := commandNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("unknown-0x%02X", cmd)
}

// IsKnownCommand 判断命令码是否在协议定义中
func IsKnownCommand(cmd byte) bool {
	_, ok := commandNames[cmd]
	return ok
}
