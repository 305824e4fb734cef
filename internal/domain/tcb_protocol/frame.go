package tcb_protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bujia-iot/iot-terminal/pkg/errors"
)

// Request 一个经过校验的请求帧
type Request struct {
	DeviceID uint32 // 帧头中的通道/设备ID
	Command  byte   // 命令码
	Payload  []byte // 数据部分
	Raw      []byte // 完整原始帧，便于调试
}

// Response 应答帧
type Response struct {
	DeviceID uint32
	Command  byte // 原始请求命令码，编码时自动加上AckFlag
	Status   Status
	Data     []byte
}

// EncodeRequest 编码请求帧
// 格式: STX(1) + 设备ID(4) + 命令(1) + 长度(2) + 数据(n) + CRC(2)
func EncodeRequest(deviceID uint32, cmd byte, payload []byte) ([]byte, error) {
	if len(payload) > 0xFFFF {
		return nil, errors.New(errors.ErrProtocolPackageTooLarge,
			fmt.Sprintf("payload too large: %d", len(payload)))
	}

	frame := make([]byte, 0, RequestHeaderLen+len(payload)+ChecksumLen)
	frame = append(frame, STX)
	frame = binary.BigEndian.AppendUint32(frame, deviceID)
	frame = append(frame, cmd)
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(payload)))
	frame = append(frame, payload...)
	return appendChecksum(frame), nil
}

// DecodeRequest 解析一个完整的请求帧（长度必须与帧内长度字段一致）
func DecodeRequest(frame []byte) (*Request, error) {
	if len(frame) < MinRequestLen {
		return nil, errors.New(errors.ErrProtocolParseFailed,
			fmt.Sprintf("frame too short: %d < %d", len(frame), MinRequestLen))
	}
	if frame[0] != STX {
		return nil, errors.New(errors.ErrProtocolInvalidHeader,
			fmt.Sprintf("invalid STX: 0x%02X", frame[0]))
	}

	dataLen := int(binary.BigEndian.Uint16(frame[6:8]))
	if len(frame) != RequestHeaderLen+dataLen+ChecksumLen {
		return nil, errors.New(errors.ErrProtocolParseFailed,
			fmt.Sprintf("invalid frame length: %d != %d", len(frame), RequestHeaderLen+dataLen+ChecksumLen))
	}
	if !VerifyChecksum(frame) {
		return nil, errors.New(errors.ErrProtocolInvalidChecksum,
			fmt.Sprintf("checksum mismatch: calculated=%04X, received=%02X%02X",
				Checksum(frame[:len(frame)-ChecksumLen]), frame[len(frame)-2], frame[len(frame)-1]))
	}

	payload := make([]byte, dataLen)
	copy(payload, frame[RequestHeaderLen:RequestHeaderLen+dataLen])
	return &Request{
		DeviceID: binary.BigEndian.Uint32(frame[1:5]),
		Command:  frame[5],
		Payload:  payload,
		Raw:      frame,
	}, nil
}

// Encode 编码应答帧
// 格式: STX(1) + 设备ID(4) + 命令|0x80(1) + 状态(1) + 长度(2) + 数据(n) + CRC(2)
func (r *Response) Encode() ([]byte, error) {
	if len(r.Data) > 0xFFFF {
		return nil, errors.New(errors.ErrProtocolPackageTooLarge,
			fmt.Sprintf("response data too large: %d", len(r.Data)))
	}

	frame := make([]byte, 0, ResponseHeaderLen+len(r.Data)+ChecksumLen)
	frame = append(frame, STX)
	frame = binary.BigEndian.AppendUint32(frame, r.DeviceID)
	frame = append(frame, r.Command|AckFlag, byte(r.Status))
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(r.Data)))
	frame = append(frame, r.Data...)
	return appendChecksum(frame), nil
}

// DecodeResponse 解析一个完整的应答帧
func DecodeResponse(frame []byte) (*Response, error) {
	if len(frame) < MinResponseLen {
		return nil, errors.New(errors.ErrProtocolParseFailed,
			fmt.Sprintf("response too short: %d < %d", len(frame), MinResponseLen))
	}
	if frame[0] != STX {
		return nil, errors.New(errors.ErrProtocolInvalidHeader,
			fmt.Sprintf("invalid STX: 0x%02X", frame[0]))
	}

	dataLen := int(binary.BigEndian.Uint16(frame[7:9]))
	if len(frame) != ResponseHeaderLen+dataLen+ChecksumLen {
		return nil, errors.New(errors.ErrProtocolParseFailed,
			fmt.Sprintf("invalid response length: %d != %d", len(frame), ResponseHeaderLen+dataLen+ChecksumLen))
	}
	if !VerifyChecksum(frame) {
		return nil, errors.New(errors.ErrProtocolInvalidChecksum, "response checksum mismatch")
	}

	data := make([]byte, dataLen)
	copy(data, frame[ResponseHeaderLen:ResponseHeaderLen+dataLen])
	return &Response{
		DeviceID: binary.BigEndian.Uint32(frame[1:5]),
		Command:  frame[5] &^ AckFlag,
		Status:   Status(frame[6]),
		Data:     data,
	}, nil
}

// ReadResponse 从流中读取一个应答帧：先读9字节头，再按长度读取剩余部分
// 超时由调用方通过连接的读截止时间控制
func ReadResponse(r io.Reader) (*Response, error) {
	header := make([]byte, ResponseHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(errors.ErrProtocolParseFailed, "failed to read response header", err)
	}
	if header[0] != STX {
		return nil, errors.New(errors.ErrProtocolInvalidHeader,
			fmt.Sprintf("invalid STX: 0x%02X", header[0]))
	}

	dataLen := int(binary.BigEndian.Uint16(header[7:9]))
	frame := make([]byte, ResponseHeaderLen+dataLen+ChecksumLen)
	copy(frame, header)
	if _, err := io.ReadFull(r, frame[ResponseHeaderLen:]); err != nil {
		return nil, errors.Wrap(errors.ErrProtocolParseFailed, "failed to read response body", err)
	}
	return DecodeResponse(frame)
}

// NewResponse 创建应答
func NewResponse(deviceID uint32, cmd byte, status Status, data []byte) *Response {
	return &Response{
		DeviceID: deviceID,
		Command:  cmd,
		Status:   status,
		Data:     data,
	}
}
