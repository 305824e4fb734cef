package utils

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/aceld/zinx/ziface"
	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// propertyConn 只实现属性相关方法的连接
type propertyConn struct {
	ziface.IConnection
	props map[string]interface{}
}

func newPropertyConn() *propertyConn {
	return &propertyConn{props: make(map[string]interface{})}
}

func (c *propertyConn) SetProperty(key string, value interface{}) { c.props[key] = value }

func (c *propertyConn) GetProperty(key string) (interface{}, error) {
	if v, ok := c.props[key]; ok {
		return v, nil
	}
	return nil, errors.New("no property found")
}

func (c *propertyConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(10, 0, 0, 8), Port: 40000}
}

func TestConnectionProperties(t *testing.T) {
	t.Run("初始化后可读取", func(t *testing.T) {
		conn := newPropertyConn()
		asm := tcb_protocol.NewAssembler(time.Second, 1024)
		InitConnectionProperties(conn, "session-1", asm)

		id, ok := GetConnectionSessionID(conn)
		require.True(t, ok)
		assert.Equal(t, "session-1", id)

		got, ok := GetConnectionAssembler(conn)
		require.True(t, ok)
		assert.Same(t, asm, got)
		assert.Equal(t, "10.0.0.8:40000", conn.props[PropKeyRemoteAddr])
	})

	t.Run("未初始化", func(t *testing.T) {
		conn := newPropertyConn()
		_, ok := GetConnectionSessionID(conn)
		assert.False(t, ok)
		_, ok = GetConnectionAssembler(conn)
		assert.False(t, ok)
		_, ok = DefaultConnectionPropertyManager.GetLastActivity(conn)
		assert.False(t, ok)
	})

	t.Run("更新活动时间", func(t *testing.T) {
		conn := newPropertyConn()
		at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		DefaultConnectionPropertyManager.Touch(conn, at)
		last, ok := DefaultConnectionPropertyManager.GetLastActivity(conn)
		require.True(t, ok)
		assert.Equal(t, at, last)
	})
}

func TestZinxLogger(t *testing.T) {
	l := newZinxLogger()
	assert.Equal(t, "zinx", l.entry.Data["component"])
	l.InfoF("server %s started", "terminal")
	l.ErrorFX(context.Background(), "conn %d closed", 1)
}
