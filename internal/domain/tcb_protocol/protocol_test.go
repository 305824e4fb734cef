package tcb_protocol

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bujia-iot/iot-terminal/pkg/errors"
)

func TestChecksum(t *testing.T) {
	t.Run("标准校验向量", func(t *testing.T) {
		// CRC-16/MCRF4XX("123456789") = 0x6F91，线路上低字节在前
		assert.Equal(t, uint16(0x916F), Checksum([]byte("123456789")))
	})

	t.Run("查表", func(t *testing.T) {
		assert.Equal(t, uint16(0x0000), crc16Table[0])
		assert.Equal(t, uint16(0x1189), crc16Table[1])
	})

	t.Run("空数据", func(t *testing.T) {
		assert.Equal(t, uint16(0xFFFF), Checksum(nil))
	})

	t.Run("单比特翻转改变校验值", func(t *testing.T) {
		data := []byte{0xA5, 0x00, 0x01, 0x00, 0x01, 0x30, 0x00, 0x04, 0x11, 0x22, 0x33, 0x44}
		base := Checksum(data)
		for i := range data {
			for bit := 0; bit < 8; bit++ {
				flipped := append([]byte{}, data...)
				flipped[i] ^= 1 << bit
				assert.NotEqual(t, base, Checksum(flipped), "byte %d bit %d", i, bit)
			}
		}
	})
}

func TestFrameRoundTrip(t *testing.T) {
	t.Run("请求帧", func(t *testing.T) {
		frame, err := EncodeRequest(0x00010001, CmdDownloadRecord, []byte{0x01, 0x19})
		require.NoError(t, err)
		assert.Equal(t, []byte{0xA5, 0x00, 0x01, 0x00, 0x01, 0x40, 0x00, 0x02, 0x01, 0x19}, frame[:10])
		assert.Len(t, frame, 12)
		assert.True(t, VerifyChecksum(frame))

		req, err := DecodeRequest(frame)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x00010001), req.DeviceID)
		assert.Equal(t, CmdDownloadRecord, req.Command)
		assert.Equal(t, []byte{0x01, 0x19}, req.Payload)

		again, err := EncodeRequest(req.DeviceID, req.Command, req.Payload)
		require.NoError(t, err)
		assert.Equal(t, frame, again)
	})

	t.Run("应答帧", func(t *testing.T) {
		resp := NewResponse(0x12345678, CmdGetDeviceID, AckSuccess, []byte{0x12, 0x34, 0x56, 0x78})
		frame, err := resp.Encode()
		require.NoError(t, err)
		assert.Equal(t, byte(0xF4), frame[5])
		assert.Equal(t, byte(0x00), frame[6])
		assert.Equal(t, []byte{0x00, 0x04}, frame[7:9])
		assert.True(t, VerifyChecksum(frame))

		decoded, err := DecodeResponse(frame)
		require.NoError(t, err)
		assert.Equal(t, resp, decoded)

		again, err := decoded.Encode()
		require.NoError(t, err)
		assert.Equal(t, frame, again)
	})

	t.Run("零长度应答", func(t *testing.T) {
		frame, err := NewResponse(1, CmdForcedUnlock, AckSuccess, nil).Encode()
		require.NoError(t, err)
		assert.Len(t, frame, MinResponseLen)
		assert.Equal(t, []byte{0x00, 0x00}, frame[7:9])
	})

	t.Run("从流中读取应答", func(t *testing.T) {
		frame, err := NewResponse(7, CmdGetTime, AckSuccess, []byte{25, 6, 1, 12, 30}).Encode()
		require.NoError(t, err)
		resp, err := ReadResponse(bytes.NewReader(frame))
		require.NoError(t, err)
		assert.Equal(t, CmdGetTime, resp.Command)
		assert.Equal(t, []byte{25, 6, 1, 12, 30}, resp.Data)
	})
}

func TestDecodeRequestErrors(t *testing.T) {
	valid, err := EncodeRequest(1, CmdGetTime, nil)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		frame func() []byte
		code  errors.ErrorCode
	}{
		{
			name:  "帧过短",
			frame: func() []byte { return valid[:5] },
			code:  errors.ErrProtocolParseFailed,
		},
		{
			name: "起始符错误",
			frame: func() []byte {
				f := append([]byte{}, valid...)
				f[0] = 0xA6
				return f
			},
			code: errors.ErrProtocolInvalidHeader,
		},
		{
			name: "校验错误",
			frame: func() []byte {
				f := append([]byte{}, valid...)
				f[len(f)-1] ^= 0xFF
				return f
			},
			code: errors.ErrProtocolInvalidChecksum,
		},
		{
			name:  "长度不一致",
			frame: func() []byte { return append(append([]byte{}, valid...), 0x00) },
			code:  errors.ErrProtocolParseFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRequest(tc.frame())
			require.Error(t, err)
			assert.True(t, errors.IsErrCode(err, tc.code), "unexpected error: %v", err)
		})
	}
}

func TestAssembler(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("分片到达", func(t *testing.T) {
		frame, err := EncodeRequest(1, CmdGetDeviceInfo, nil)
		require.NoError(t, err)

		a := NewAssembler(time.Second, 0)
		assert.Nil(t, a.Write(frame[:3], start))
		res := a.Next(start)
		assert.Equal(t, DecodeIncomplete, res.Status)
		assert.NoError(t, res.Err)

		assert.Nil(t, a.Write(frame[3:], start.Add(200*time.Millisecond)))
		res = a.Next(start.Add(200 * time.Millisecond))
		require.Equal(t, DecodeReady, res.Status)
		assert.Equal(t, CmdGetDeviceInfo, res.Request.Command)
		assert.Equal(t, 0, a.Buffered())
	})

	t.Run("半帧超时丢弃", func(t *testing.T) {
		// 长度字段声明20字节，只到达10字节
		header := []byte{STX, 0x00, 0x01, 0x00, 0x01, CmdUploadRecord, 0x00, 0x14}
		a := NewAssembler(time.Second, 0)
		a.Write(append(header, make([]byte, 10)...), start)
		res := a.Next(start.Add(500 * time.Millisecond))
		assert.Equal(t, DecodeIncomplete, res.Status)
		assert.NoError(t, res.Err)

		res = a.Next(start.Add(1500 * time.Millisecond))
		assert.Equal(t, DecodeIncomplete, res.Status)
		assert.True(t, errors.IsErrCode(res.Err, errors.ErrProtocolFrameTimeout))
		assert.Equal(t, 18, res.Dropped)
		assert.Equal(t, 0, a.Buffered())
	})

	t.Run("超时后新数据重新开始", func(t *testing.T) {
		frame, err := EncodeRequest(1, CmdGetTime, nil)
		require.NoError(t, err)

		a := NewAssembler(time.Second, 0)
		a.Write([]byte{STX, 0x00, 0x01}, start)
		expired := a.Write(frame, start.Add(2*time.Second))
		require.NotNil(t, expired)
		assert.Equal(t, 3, expired.Dropped)

		res := a.Next(start.Add(2 * time.Second))
		require.Equal(t, DecodeReady, res.Status)
		assert.Equal(t, CmdGetTime, res.Request.Command)
	})

	t.Run("起始符错误丢弃全部缓存", func(t *testing.T) {
		a := NewAssembler(time.Second, 0)
		a.Write([]byte{0x00, STX, 0x01}, start)
		res := a.Next(start)
		assert.Equal(t, DecodeInvalid, res.Status)
		assert.True(t, errors.IsErrCode(res.Err, errors.ErrProtocolInvalidHeader))
		assert.Equal(t, 0, a.Buffered())
	})

	t.Run("超长数据丢弃", func(t *testing.T) {
		a := NewAssembler(time.Second, 16)
		a.Write([]byte{STX, 0x00, 0x01, 0x00, 0x01, CmdUploadStaff, 0x00, 0x11}, start)
		res := a.Next(start)
		assert.Equal(t, DecodeInvalid, res.Status)
		assert.True(t, errors.IsErrCode(res.Err, errors.ErrProtocolPackageTooLarge))
		assert.Equal(t, 0, a.Buffered())
	})

	t.Run("最大上传帧完整取出", func(t *testing.T) {
		staff := StaffUploadData{Extended: true, Entries: make([]StaffEntry, 255)}
		payload, err := staff.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, payload, DefaultMaxPayloadLen)
		frame, err := EncodeRequest(1, CmdUploadStaffExt, payload)
		require.NoError(t, err)

		records := RecordUploadData{Entries: make([]RecordEntry, 80)}
		recPayload, err := records.MarshalBinary()
		require.NoError(t, err)
		recFrame, err := EncodeRequest(1, CmdUploadRecord, recPayload)
		require.NoError(t, err)

		a := NewAssembler(time.Second, 0)
		a.Write(append(append([]byte{}, frame...), recFrame...), start)
		res := a.Next(start)
		require.Equal(t, DecodeReady, res.Status)
		assert.Equal(t, CmdUploadStaffExt, res.Request.Command)
		assert.Len(t, res.Request.Payload, DefaultMaxPayloadLen)

		res = a.Next(start)
		require.Equal(t, DecodeReady, res.Status)
		assert.Len(t, res.Request.Payload, len(recPayload))
	})

	t.Run("校验错误不应答", func(t *testing.T) {
		frame, err := EncodeRequest(1, CmdGetTime, nil)
		require.NoError(t, err)
		frame[len(frame)-1] ^= 0x01

		a := NewAssembler(time.Second, 0)
		a.Write(frame, start)
		res := a.Next(start)
		assert.Equal(t, DecodeInvalid, res.Status)
		assert.True(t, errors.IsErrCode(res.Err, errors.ErrProtocolInvalidChecksum))
	})

	t.Run("粘包逐帧取出", func(t *testing.T) {
		first, _ := EncodeRequest(1, CmdGetTime, nil)
		second, _ := EncodeRequest(1, CmdGetDeviceID, nil)

		a := NewAssembler(time.Second, 0)
		a.Write(append(append([]byte{}, first...), second...), start)
		res := a.Next(start)
		require.Equal(t, DecodeReady, res.Status)
		assert.Equal(t, CmdGetTime, res.Request.Command)
		assert.Equal(t, len(second), a.Buffered())

		res = a.Next(start)
		require.Equal(t, DecodeReady, res.Status)
		assert.Equal(t, CmdGetDeviceID, res.Request.Command)
	})
}
