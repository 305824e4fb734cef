package zinx_server

import (
	"net"
	"time"

	"github.com/aceld/zinx/ziface"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TCP keepalive间隔
const keepAlivePeriod = 60 * time.Second

// ConnectionHooks 连接生命周期钩子
type ConnectionHooks struct {
	frameTimeout  time.Duration
	maxPayloadLen int
	monitor       *SessionMonitor
}

// NewConnectionHooks 创建连接钩子
func NewConnectionHooks(frameTimeout time.Duration, maxPayloadLen int, monitor *SessionMonitor) *ConnectionHooks {
	if monitor == nil {
		monitor = GetGlobalMonitor()
	}
	return &ConnectionHooks{
		frameTimeout:  frameTimeout,
		maxPayloadLen: maxPayloadLen,
		monitor:       monitor,
	}
}

// OnConnectionStart 连接建立：分配会话ID和独立的帧组装器
func (h *ConnectionHooks) OnConnectionStart(conn ziface.IConnection) {
	if tcpConn, ok := conn.GetTCPConnection().(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(keepAlivePeriod)
	}

	sessionID := uuid.New().String()
	remoteAddr := conn.RemoteAddr().String()
	asm := tcb_protocol.NewAssembler(h.frameTimeout, h.maxPayloadLen)
	utils.InitConnectionProperties(conn, sessionID, asm)
	h.monitor.OnConnectionEstablished(conn.GetConnID(), sessionID, remoteAddr, time.Now())

	logger.WithFields(logrus.Fields{
		"connID":     conn.GetConnID(),
		"sessionId":  sessionID,
		"remoteAddr": remoteAddr,
	}).Info("新连接已建立")
}

// OnConnectionStop 连接断开
func (h *ConnectionHooks) OnConnectionStop(conn ziface.IConnection) {
	fields := logrus.Fields{"connID": conn.GetConnID()}
	if sessionID, ok := utils.GetConnectionSessionID(conn); ok {
		fields["sessionId"] = sessionID
	}
	if asm, ok := utils.GetConnectionAssembler(conn); ok && asm.Buffered() > 0 {
		fields["pendingBytes"] = asm.Buffered()
	}
	if last, ok := utils.DefaultConnectionPropertyManager.GetLastActivity(conn); ok {
		fields["idle"] = time.Since(last).Round(time.Second).String()
	}

	if info, ok := h.monitor.OnConnectionClosed(conn.GetConnID()); ok {
		fields["remoteAddr"] = info.RemoteAddr
		fields["duration"] = time.Since(info.ConnectedAt).Round(time.Second).String()
		fields["framesIn"] = info.FramesIn
		fields["droppedBytes"] = info.DroppedBytes
	}
	logger.WithFields(fields).Info("连接已断开")
}
