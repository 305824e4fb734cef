package storage

// 存储容量
const (
	MaxUsers   = 100 // 用户存储容量
	MaxRecords = 500 // 考勤记录存储容量
)

// 验证方式（记录备份码）
const (
	BackupPassword    uint8 = 0x01
	BackupFingerprint uint8 = 0x02
	BackupCard        uint8 = 0x08
)

// RecordTypeIn 记录类型最高位，置位为进，清零为出
const RecordTypeIn uint8 = 0x80

// 删除用户方式
const (
	DeleteAll      uint8 = 0xFF // 彻底删除并压缩
	DeleteCard     uint8 = 0x08 // 清除卡号
	DeletePassword uint8 = 0x04 // 清除密码
)

// ClearedPassword 清除后的密码值
var ClearedPassword = [3]byte{0xFF, 0xFF, 0xFF}

// UpsertResult 用户写入结果
type UpsertResult int

const (
	UpsertRejected UpsertResult = iota // 存储已满
	UpsertInserted
	UpsertUpdated
)

// String 返回写入结果名称
func (r UpsertResult) String() string {
	switch r {
	case UpsertInserted:
		return "inserted"
	case UpsertUpdated:
		return "updated"
	default:
		return "rejected"
	}
}

// UnknownUserName 记录对应的用户不存在时的显示名称
const UnknownUserName = "unknown"
