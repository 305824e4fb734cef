package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/app/service"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/hardware"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/persistence"
	"github.com/bujia-iot/iot-terminal/pkg/errors"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve 在连接上运行终端引擎，直到连接关闭
func serve(conn net.Conn, engine *service.TerminalService) {
	asm := tcb_protocol.NewAssembler(time.Second, tcb_protocol.DefaultMaxPayloadLen)
	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		now := time.Now()
		asm.Write(buf[:n], now)
		for {
			res := asm.Next(now)
			if res.Status == tcb_protocol.DecodeIncomplete {
				break
			}
			if res.Status != tcb_protocol.DecodeReady {
				continue
			}
			frame, err := engine.Handle(res.Request).Encode()
			if err != nil {
				return
			}
			if _, err := conn.Write(frame); err != nil {
				return
			}
		}
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store, err := persistence.Open(context.Background(),
		config.StorageConfig{Backend: "file", DataDir: t.TempDir()}, config.RedisConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine := service.NewTerminalService(service.Dependencies{
		Persistence: store,
		Actuator:    hardware.NewLogActuator(storage.Pins{}),
		Clock:       hardware.NewOffsetClock(time.UTC),
	})
	t.Cleanup(engine.Close)

	serverConn, clientConn := net.Pipe()
	go serve(serverConn, engine)
	t.Cleanup(func() { _ = serverConn.Close() })

	c := NewClient(clientConn, 0xFFFFFFFF, time.Second)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_DeviceQueries(t *testing.T) {
	c := newTestClient(t)

	info, err := c.GetDeviceInfo()
	require.NoError(t, err)
	assert.Equal(t, "V1.0.0", string(info.Firmware[:6]))

	id, err := c.GetDeviceID()
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultDeviceID, id)

	require.NoError(t, c.SetTime(time.Date(2030, 6, 15, 10, 20, 0, 0, time.UTC)))
	now, err := c.GetTime()
	require.NoError(t, err)
	assert.Equal(t, uint8(30), now.Year)
	assert.Equal(t, uint8(6), now.Month)
	assert.Equal(t, uint8(15), now.Day)
	assert.Equal(t, uint8(10), now.Hour)

	require.NoError(t, c.Unlock())
}

func TestClient_StaffAndRecords(t *testing.T) {
	c := newTestClient(t)

	entry := tcb_protocol.StaffEntry{UserID: [5]byte{0, 0, 0, 0, 7}, CardID: 0x123456}
	copy(entry.Name[:], "Wang")
	result, err := c.UploadStaff([]tcb_protocol.StaffEntry{entry})
	require.NoError(t, err)
	assert.True(t, result.IsSet(0))

	staff, err := c.DownloadStaff(1, 10)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, uint32(0x123456), staff[0].CardID)

	info, err := c.GetRecordInfo()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), info.UserCount)
	assert.Zero(t, info.TotalRecords)

	records, err := c.DownloadRecords(1, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, c.DeleteRecords(1))

	t.Run("删除不存在的用户", func(t *testing.T) {
		err := c.DeleteUser([5]byte{9, 9, 9, 9, 9}, 0xFF)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, tcb_protocol.AckNoUser, statusErr.Status)
	})

	require.NoError(t, c.DeleteUser([5]byte{0, 0, 0, 0, 7}, 0xFF))
	staff, err = c.DownloadStaff(1, 10)
	require.NoError(t, err)
	assert.Empty(t, staff)
}

func TestClient_Timeout(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	// 对端只读不回
	go func() {
		buf := make([]byte, 64)
		for {
			if _, err := serverConn.Read(buf); err != nil {
				return
			}
		}
	}()

	c := NewClient(clientConn, 1, 100*time.Millisecond)
	defer c.Close()
	_, err := c.Call(tcb_protocol.CmdGetTime, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrCode(err, errors.ErrCommandTimeout))
}
