package tcb_protocol

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bujia-iot/iot-terminal/pkg/errors"
)

// DefaultFrameTimeout 一帧从首字节到完整到达的最长等待时间
const DefaultFrameTimeout = time.Second

// DecodeStatus 流解码结果类型
type DecodeStatus int

const (
	DecodeIncomplete DecodeStatus = iota // 数据不足，继续等待；带Err时表示半帧超时被丢弃
	DecodeInvalid                        // 非法帧，已丢弃
	DecodeReady                          // 得到一个完整且校验通过的请求帧
)

// String 返回解码状态名称
func (s DecodeStatus) String() string {
	switch s {
	case DecodeIncomplete:
		return "incomplete"
	case DecodeInvalid:
		return "invalid"
	case DecodeReady:
		return "ready"
	default:
		return "unknown"
	}
}

// DecodeResult 一次解码的结果
type DecodeResult struct {
	Status  DecodeStatus
	Request *Request
	Err     error
	Dropped int // 被丢弃的字节数
}

// Assembler 将TCP字节流组装为请求帧
// 每个连接一个实例，不是并发安全的
type Assembler struct {
	buf           []byte
	deadline      time.Time
	timeout       time.Duration
	maxPayloadLen int
}

// NewAssembler 创建流组帧器
func NewAssembler(timeout time.Duration, maxPayloadLen int) *Assembler {
	if timeout <= 0 {
		timeout = DefaultFrameTimeout
	}
	if maxPayloadLen <= 0 {
		maxPayloadLen = DefaultMaxPayloadLen
	}
	return &Assembler{
		timeout:       timeout,
		maxPayloadLen: maxPayloadLen,
	}
}

// Buffered 返回当前缓存的字节数
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

// Write 追加新到达的数据
// 如果缓存中的半帧已超过时限，先将其丢弃并返回对应的超时结果
func (a *Assembler) Write(data []byte, now time.Time) *DecodeResult {
	expired := a.Expire(now)
	if len(data) > 0 {
		if len(a.buf) == 0 {
			a.deadline = now.Add(a.timeout)
		}
		a.buf = append(a.buf, data...)
	}
	return expired
}

// Expire 丢弃已超时的半帧，没有超时返回nil
func (a *Assembler) Expire(now time.Time) *DecodeResult {
	if len(a.buf) == 0 || !now.After(a.deadline) {
		return nil
	}
	dropped := len(a.buf)
	a.reset()
	return &DecodeResult{
		Status:  DecodeIncomplete,
		Err:     errors.New(errors.ErrProtocolFrameTimeout, fmt.Sprintf("frame incomplete after %s", a.timeout)),
		Dropped: dropped,
	}
}

// Next 尝试从缓存中取出一个帧
// 返回DecodeIncomplete且Err为nil表示需要更多数据
func (a *Assembler) Next(now time.Time) DecodeResult {
	if expired := a.Expire(now); expired != nil {
		return *expired
	}
	if len(a.buf) == 0 {
		return DecodeResult{Status: DecodeIncomplete}
	}

	if a.buf[0] != STX {
		return a.discard(errors.New(errors.ErrProtocolInvalidHeader,
			fmt.Sprintf("invalid STX: 0x%02X", a.buf[0])))
	}
	if len(a.buf) < RequestHeaderLen {
		return DecodeResult{Status: DecodeIncomplete}
	}

	dataLen := int(binary.BigEndian.Uint16(a.buf[6:8]))
	if dataLen > a.maxPayloadLen {
		return a.discard(errors.New(errors.ErrProtocolPackageTooLarge,
			fmt.Sprintf("payload length %d exceeds %d", dataLen, a.maxPayloadLen)))
	}

	total := RequestHeaderLen + dataLen + ChecksumLen
	if len(a.buf) < total {
		return DecodeResult{Status: DecodeIncomplete}
	}

	frame := make([]byte, total)
	copy(frame, a.buf[:total])
	a.consume(total, now)

	req, err := DecodeRequest(frame)
	if err != nil {
		return DecodeResult{Status: DecodeInvalid, Err: err, Dropped: total}
	}
	return DecodeResult{Status: DecodeReady, Request: req}
}

// discard 丢弃全部缓存
func (a *Assembler) discard(err error) DecodeResult {
	dropped := len(a.buf)
	a.reset()
	return DecodeResult{Status: DecodeInvalid, Err: err, Dropped: dropped}
}

// consume 移除已处理的字节，剩余数据作为新帧重新计时
func (a *Assembler) consume(n int, now time.Time) {
	rest := len(a.buf) - n
	if rest == 0 {
		a.reset()
		return
	}
	copy(a.buf, a.buf[n:])
	a.buf = a.buf[:rest]
	a.deadline = now.Add(a.timeout)
}

func (a *Assembler) reset() {
	a.buf = a.buf[:0]
	a.deadline = time.Time{}
}
