package main

import (
	"testing"

	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	req, err := tcb_protocol.EncodeRequest(0xFFFFFFFF, tcb_protocol.CmdGetTime, nil)
	require.NoError(t, err)
	resp, err := tcb_protocol.NewResponse(0x00010001, tcb_protocol.CmdGetTime, tcb_protocol.AckSuccess, []byte{25, 3, 4, 5, 6}).Encode()
	require.NoError(t, err)

	t.Run("请求和应答连在一起", func(t *testing.T) {
		lines := Describe(append(append([]byte{}, req...), resp...))
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "请求")
		assert.Contains(t, lines[0], "读取时间")
		assert.Contains(t, lines[1], "应答")
		assert.Contains(t, lines[1], "0xB8")
		assert.Contains(t, lines[1], "1903040506")
	})

	t.Run("校验错误", func(t *testing.T) {
		bad := append([]byte{}, req...)
		bad[len(bad)-1] ^= 0xFF
		lines := Describe(bad)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "解析失败")
	})

	t.Run("不完整和非法起始", func(t *testing.T) {
		assert.Contains(t, Describe(req[:5])[0], "不完整")
		assert.Contains(t, Describe([]byte{0x00, 0x01})[0], "非法起始字节")
	})
}
