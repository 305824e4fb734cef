package storage

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// User 登记用户
type User struct {
	ID         [5]byte  // 用户ID，按大端十进制编码
	Password   [3]byte  // 兼容字段，不参与认证
	CardID     uint32   // 卡号
	Name       [10]byte // 定长原始字节，可不以0结尾
	Department uint8
	Group      uint8
	Mode       uint8   // 考勤模式
	FPStatus   [2]byte // 指纹状态，占位
	Special    uint8
	Active     bool
}

// DecimalID 以十进制显示用户ID
func (u *User) DecimalID() string {
	return FormatUserID(u.ID)
}

// DisplayName 返回可显示的姓名，截断到第一个0字节并去除首尾空白
func (u *User) DisplayName() string {
	name := u.Name[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(string(name))
}

// SetName 设置姓名，超出10字节的部分被截断
func (u *User) SetName(name string) {
	u.Name = [10]byte{}
	copy(u.Name[:], name)
}

// AccessRecord 考勤/门禁记录
type AccessRecord struct {
	UserID     [5]byte // 对应用户ID，不强制存在
	Timestamp  uint32  // 2000-01-01起的秒数
	BackupCode uint8   // 验证方式
	RecordType uint8   // 最高位为进出方向
	WorkCode   [3]byte
}

// IsEntry 是否为进门记录
func (r *AccessRecord) IsEntry() bool {
	return r.RecordType&RecordTypeIn != 0
}

// Direction 返回方向名称
func (r *AccessRecord) Direction() string {
	if r.IsEntry() {
		return "in"
	}
	return "out"
}

// Method 返回验证方式名称
func (r *AccessRecord) Method() string {
	switch r.BackupCode {
	case BackupPassword:
		return "password"
	case BackupFingerprint:
		return "fingerprint"
	case BackupCard:
		return "card"
	default:
		return "other"
	}
}

// FormatUserID 将5字节用户ID按大端无符号整数输出为十进制
func FormatUserID(id [5]byte) string {
	var v uint64
	for _, b := range id {
		v = v<<8 | uint64(b)
	}
	return strconv.FormatUint(v, 10)
}

// ParseUserID 将十进制字符串解析为5字节用户ID
func ParseUserID(s string) ([5]byte, error) {
	var id [5]byte
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 40)
	if err != nil {
		return id, fmt.Errorf("invalid user id %q: %w", s, err)
	}
	for i := 4; i >= 0; i-- {
		id[i] = byte(v)
		v >>= 8
	}
	return id, nil
}
