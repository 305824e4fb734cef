package utils

import (
	"sync"
	"time"

	"github.com/aceld/zinx/ziface"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
)

// 连接属性键
const (
	PropKeySessionID    = "sessionId"    // 会话ID
	PropKeyRemoteAddr   = "remoteAddr"   // 远程地址
	PropKeyConnectedAt  = "connectedAt"  // 建立时间
	PropKeyLastActivity = "lastActivity" // 最后一次收到数据的时间
	PropKeyAssembler    = "assembler"    // 帧组装器
)

// ConnectionPropertyManager 连接属性管理器
// 统一管理连接的各种属性，避免分散的属性存储
type ConnectionPropertyManager struct {
	mu sync.RWMutex
}

// NewConnectionPropertyManager 创建连接属性管理器
func NewConnectionPropertyManager() *ConnectionPropertyManager {
	return &ConnectionPropertyManager{}
}

// InitConnection 连接建立时写入会话属性
func (m *ConnectionPropertyManager) InitConnection(conn ziface.IConnection, sessionID string, asm *tcb_protocol.Assembler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	conn.SetProperty(PropKeySessionID, sessionID)
	conn.SetProperty(PropKeyRemoteAddr, conn.RemoteAddr().String())
	conn.SetProperty(PropKeyConnectedAt, now)
	conn.SetProperty(PropKeyLastActivity, now)
	conn.SetProperty(PropKeyAssembler, asm)
}

// GetSessionID 获取会话ID
func (m *ConnectionPropertyManager) GetSessionID(conn ziface.IConnection) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, err := conn.GetProperty(PropKeySessionID)
	if err != nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

// GetAssembler 获取连接的帧组装器
func (m *ConnectionPropertyManager) GetAssembler(conn ziface.IConnection) (*tcb_protocol.Assembler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, err := conn.GetProperty(PropKeyAssembler)
	if err != nil {
		return nil, false
	}
	asm, ok := value.(*tcb_protocol.Assembler)
	return asm, ok && asm != nil
}

// Touch 更新最后活动时间
func (m *ConnectionPropertyManager) Touch(conn ziface.IConnection, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn.SetProperty(PropKeyLastActivity, at)
}

// GetLastActivity 获取最后活动时间
func (m *ConnectionPropertyManager) GetLastActivity(conn ziface.IConnection) (time.Time, bool) {
	return m.getTime(conn, PropKeyLastActivity)
}

func (m *ConnectionPropertyManager) getTime(conn ziface.IConnection, key string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, err := conn.GetProperty(key)
	if err != nil {
		return time.Time{}, false
	}
	t, ok := value.(time.Time)
	return t, ok
}

// DefaultConnectionPropertyManager 默认连接属性管理器
var DefaultConnectionPropertyManager = NewConnectionPropertyManager()

func InitConnectionProperties(conn ziface.IConnection, sessionID string, asm *tcb_protocol.Assembler) {
	DefaultConnectionPropertyManager.InitConnection(conn, sessionID, asm)
}

func GetConnectionSessionID(conn ziface.IConnection) (string, bool) {
	return DefaultConnectionPropertyManager.GetSessionID(conn)
}

func GetConnectionAssembler(conn ziface.IConnection) (*tcb_protocol.Assembler, bool) {
	return DefaultConnectionPropertyManager.GetAssembler(conn)
}

func UpdateConnectionActivity(conn ziface.IConnection) {
	DefaultConnectionPropertyManager.Touch(conn, time.Now())
}
