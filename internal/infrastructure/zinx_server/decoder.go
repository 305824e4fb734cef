package zinx_server

import (
	"time"

	"github.com/aceld/zinx/ziface"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/metrics"
	"github.com/bujia-iot/iot-terminal/pkg/utils"
	"github.com/sirupsen/logrus"
)

// FrameMsgID 解码后交给帧路由的消息ID
const FrameMsgID uint32 = 1

// FrameBatch 一次读取中组装出的完整请求帧，可能为空
type FrameBatch struct {
	Requests []*tcb_protocol.Request
	Dropped  int // 本次被丢弃的字节数
}

// TerminalDecoder 终端协议解码器
// 不使用zinx的长度字段解析，原始数据交给连接自己的帧组装器处理半包和粘包
type TerminalDecoder struct {
	frameTimeout  time.Duration
	maxPayloadLen int
	monitor       *SessionMonitor
	metrics       *metrics.CommandMetrics
}

// NewTerminalDecoder 创建解码器
func NewTerminalDecoder(frameTimeout time.Duration, maxPayloadLen int, monitor *SessionMonitor) *TerminalDecoder {
	if monitor == nil {
		monitor = GetGlobalMonitor()
	}
	return &TerminalDecoder{
		frameTimeout:  frameTimeout,
		maxPayloadLen: maxPayloadLen,
		monitor:       monitor,
		metrics:       metrics.GetGlobalMetrics(),
	}
}

// GetLengthField 返回nil，让zinx传递原始数据
func (d *TerminalDecoder) GetLengthField() *ziface.LengthField {
	return nil
}

// Intercept 拦截器方法，实现IDecoder接口
func (d *TerminalDecoder) Intercept(chain ziface.IChain) ziface.IcResp {
	iMessage := chain.GetIMessage()
	if iMessage == nil {
		return chain.ProceedWithIMessage(iMessage, nil)
	}
	conn := d.getConnection(chain)
	if conn == nil {
		return chain.ProceedWithIMessage(iMessage, nil)
	}

	asm, ok := utils.GetConnectionAssembler(conn)
	if !ok {
		asm = tcb_protocol.NewAssembler(d.frameTimeout, d.maxPayloadLen)
		conn.SetProperty(utils.PropKeyAssembler, asm)
	}

	sessionID, _ := utils.GetConnectionSessionID(conn)
	fields := logrus.Fields{
		"connID":    conn.GetConnID(),
		"sessionId": sessionID,
	}

	data := iMessage.GetData()
	now := time.Now()
	logger.HexDump("收到数据", data, fields)
	utils.UpdateConnectionActivity(conn)

	batch := d.feed(asm, data, now, logger.WithFields(fields))
	d.monitor.OnRawDataReceived(conn.GetConnID(), len(data), len(batch.Requests), batch.Dropped, now)

	iMessage.SetMsgID(FrameMsgID)
	return chain.ProceedWithIMessage(iMessage, batch)
}

// feed 写入一段数据并取出全部完整的请求帧
// 非法帧和超时半帧只记日志，不产生应答
func (d *TerminalDecoder) feed(asm *tcb_protocol.Assembler, data []byte, now time.Time, log *logrus.Entry) *FrameBatch {
	batch := &FrameBatch{}
	if expired := asm.Write(data, now); expired != nil {
		batch.Dropped += expired.Dropped
		d.metrics.RecordInvalidFrame(expired.Dropped)
		log.WithField("dropped", expired.Dropped).Debug("半帧等待超时，已丢弃")
	}

	for {
		res := asm.Next(now)
		switch res.Status {
		case tcb_protocol.DecodeReady:
			batch.Requests = append(batch.Requests, res.Request)
		case tcb_protocol.DecodeInvalid:
			batch.Dropped += res.Dropped
			d.metrics.RecordInvalidFrame(res.Dropped)
			log.WithFields(logrus.Fields{
				"dropped": res.Dropped,
				"error":   errString(res.Err),
			}).Warn("丢弃非法帧")
		default:
			if res.Dropped > 0 {
				batch.Dropped += res.Dropped
				d.metrics.RecordInvalidFrame(res.Dropped)
				log.WithField("dropped", res.Dropped).Debug("半帧等待超时，已丢弃")
			}
			return batch
		}
	}
}

// getConnection 从链中获取连接
func (d *TerminalDecoder) getConnection(chain ziface.IChain) ziface.IConnection {
	req := chain.Request()
	if req == nil {
		return nil
	}
	if ireq, ok := req.(ziface.IRequest); ok {
		return ireq.GetConnection()
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
