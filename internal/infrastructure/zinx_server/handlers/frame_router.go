package handlers

import (
	"fmt"
	"io"
	"time"

	"github.com/aceld/zinx/ziface"
	"github.com/aceld/zinx/znet"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/zinx_server"
	"github.com/bujia-iot/iot-terminal/pkg/metrics"
	"github.com/bujia-iot/iot-terminal/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Engine 终端命令处理引擎
type Engine interface {
	Handle(req *tcb_protocol.Request) *tcb_protocol.Response
}

// FrameRouter 帧路由，按到达顺序逐个处理解码器交来的请求帧并回写应答
type FrameRouter struct {
	znet.BaseRouter
	engine  Engine
	monitor *zinx_server.SessionMonitor
	metrics *metrics.CommandMetrics
}

// NewFrameRouter 创建帧路由
func NewFrameRouter(engine Engine, monitor *zinx_server.SessionMonitor) *FrameRouter {
	if monitor == nil {
		monitor = zinx_server.GetGlobalMonitor()
	}
	return &FrameRouter{engine: engine, monitor: monitor, metrics: metrics.GetGlobalMetrics()}
}

// Handle 处理请求
func (r *FrameRouter) Handle(request ziface.IRequest) {
	batch, ok := request.GetResponse().(*zinx_server.FrameBatch)
	if !ok || batch == nil || len(batch.Requests) == 0 {
		return
	}

	conn := request.GetConnection()
	fields := logrus.Fields{"connID": conn.GetConnID()}
	if sessionID, ok := utils.GetConnectionSessionID(conn); ok {
		fields["sessionId"] = sessionID
	}

	handled, err := r.serve(conn.GetTCPConnection(), batch.Requests, fields)
	for i := 0; i < handled; i++ {
		r.monitor.OnFrameHandled(conn.GetConnID())
	}
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("发送应答失败")
	}
}

// serve 依次处理请求并写出应答，返回成功写出的应答数
// 写失败时停止处理剩余请求
func (r *FrameRouter) serve(w io.Writer, requests []*tcb_protocol.Request, fields logrus.Fields) (int, error) {
	if w == nil {
		return 0, fmt.Errorf("connection closed")
	}
	for i, req := range requests {
		start := time.Now()
		resp := r.engine.Handle(req)
		r.metrics.RecordCommand(req.Command, resp.Status != tcb_protocol.AckSuccess, time.Since(start))
		frame, err := resp.Encode()
		if err != nil {
			return i, fmt.Errorf("encode response for command 0x%02X: %w", req.Command, err)
		}

		logger.HexDump("发送应答", frame, logrus.Fields{
			"connID":    fields["connID"],
			"sessionId": fields["sessionId"],
			"command":   fmt.Sprintf("0x%02X", req.Command),
			"status":    fmt.Sprintf("0x%02X", byte(resp.Status)),
		})
		if _, err := w.Write(frame); err != nil {
			return i, fmt.Errorf("write response: %w", err)
		}
	}
	return len(requests), nil
}

// RegisterRouters 注册路由
func RegisterRouters(server ziface.IServer, engine Engine, monitor *zinx_server.SessionMonitor) {
	server.AddRouter(zinx_server.FrameMsgID, NewFrameRouter(engine, monitor))
}
