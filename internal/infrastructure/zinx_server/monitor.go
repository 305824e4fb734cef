package zinx_server

import (
	"sort"
	"sync"
	"time"
)

// SessionInfo 一个终端协议连接的运行信息
type SessionInfo struct {
	SessionID     string    `json:"sessionId"`
	ConnID        uint64    `json:"connId"`
	RemoteAddr    string    `json:"remoteAddr"`
	ConnectedAt   time.Time `json:"connectedAt"`
	LastActivity  time.Time `json:"lastActivity"`
	BytesIn       int64     `json:"bytesIn"`
	FramesIn      int64     `json:"framesIn"`
	DroppedBytes  int64     `json:"droppedBytes"`
	FramesHandled int64     `json:"framesHandled"`
}

// SessionMonitor 记录当前连接及其收发统计
type SessionMonitor struct {
	mu       sync.RWMutex
	sessions map[uint64]*SessionInfo
}

// NewSessionMonitor 创建连接监视器
func NewSessionMonitor() *SessionMonitor {
	return &SessionMonitor{sessions: make(map[uint64]*SessionInfo)}
}

var (
	globalMonitorOnce sync.Once
	globalMonitor     *SessionMonitor
)

// GetGlobalMonitor 获取全局监视器实例
func GetGlobalMonitor() *SessionMonitor {
	globalMonitorOnce.Do(func() {
		globalMonitor = NewSessionMonitor()
	})
	return globalMonitor
}

// OnConnectionEstablished 连接建立
func (m *SessionMonitor) OnConnectionEstablished(connID uint64, sessionID, remoteAddr string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[connID] = &SessionInfo{
		SessionID:    sessionID,
		ConnID:       connID,
		RemoteAddr:   remoteAddr,
		ConnectedAt:  at,
		LastActivity: at,
	}
}

// OnConnectionClosed 连接关闭，返回该连接最后的统计
func (m *SessionMonitor) OnConnectionClosed(connID uint64) (SessionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sessions[connID]
	if !ok {
		return SessionInfo{}, false
	}
	delete(m.sessions, connID)
	return *info, true
}

// OnRawDataReceived 收到一段原始数据
func (m *SessionMonitor) OnRawDataReceived(connID uint64, n, frames, dropped int, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sessions[connID]
	if !ok {
		return
	}
	info.BytesIn += int64(n)
	info.FramesIn += int64(frames)
	info.DroppedBytes += int64(dropped)
	info.LastActivity = at
}

// OnFrameHandled 一个请求帧已应答
func (m *SessionMonitor) OnFrameHandled(connID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.sessions[connID]; ok {
		info.FramesHandled++
	}
}

// List 返回全部连接，按建立顺序排列
func (m *SessionMonitor) List() []SessionInfo {
	m.mu.RLock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for _, info := range m.sessions {
		out = append(out, *info)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ConnID < out[j].ConnID })
	return out
}

// Count 当前连接数
func (m *SessionMonitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
