package client

import (
	stderrors "errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/domain/tcb_protocol"
	"github.com/bujia-iot/iot-terminal/pkg/errors"
)

// DefaultTimeout 单次请求的默认超时
const DefaultTimeout = 3 * time.Second

// Client 终端协议客户端，同一时刻只有一个请求在途
type Client struct {
	mu       sync.Mutex
	conn     net.Conn
	deviceID uint32
	timeout  time.Duration
}

// Dial 连接终端
func Dial(addr string, deviceID uint32, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConnectionFailed, "dial "+addr, err)
	}
	return NewClient(conn, deviceID, timeout), nil
}

// NewClient 使用已建立的连接创建客户端
func NewClient(conn net.Conn, deviceID uint32, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{conn: conn, deviceID: deviceID, timeout: timeout}
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call 发送一个请求并等待应答
func (c *Client) Call(cmd byte, payload []byte) (*tcb_protocol.Response, error) {
	frame, err := tcb_protocol.EncodeRequest(c.deviceID, cmd, payload)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, errors.Wrap(errors.ErrConnectionFailed, "set deadline", err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return nil, errors.Wrap(errors.ErrConnectionFailed, "write request", err)
	}

	resp, err := tcb_protocol.ReadResponse(c.conn)
	if err != nil {
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			return nil, errors.Wrap(errors.ErrCommandTimeout,
				fmt.Sprintf("no reply to command 0x%02X", cmd), err)
		}
		return nil, err
	}
	if resp.Command != cmd {
		return nil, errors.New(errors.ErrProtocolInvalidCommand,
			fmt.Sprintf("unexpected reply command 0x%02X for request 0x%02X", resp.Command, cmd))
	}
	return resp, nil
}

// call 发送请求，非成功状态视为错误
func (c *Client) call(cmd byte, payload []byte) ([]byte, error) {
	resp, err := c.Call(cmd, payload)
	if err != nil {
		return nil, err
	}
	if resp.Status != tcb_protocol.AckSuccess {
		return nil, &StatusError{Command: cmd, Status: resp.Status}
	}
	return resp.Data, nil
}

// StatusError 终端返回了非成功状态
type StatusError struct {
	Command byte
	Status  tcb_protocol.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("command 0x%02X rejected: %s", e.Command, e.Status)
}

// GetDeviceInfo 读取设备信息
func (c *Client) GetDeviceInfo() (*tcb_protocol.DeviceInfoData, error) {
	data, err := c.call(tcb_protocol.CmdGetDeviceInfo, nil)
	if err != nil {
		return nil, err
	}
	info := &tcb_protocol.DeviceInfoData{}
	return info, info.UnmarshalBinary(data)
}

// GetTime 读取终端时间
func (c *Client) GetTime() (*tcb_protocol.TimeData, error) {
	data, err := c.call(tcb_protocol.CmdGetTime, nil)
	if err != nil {
		return nil, err
	}
	t := &tcb_protocol.TimeData{}
	return t, t.UnmarshalBinary(data)
}

// SetTime 设置终端时间，精确到分钟
func (c *Client) SetTime(t time.Time) error {
	td := tcb_protocol.NewTimeData(t)
	payload, _ := td.MarshalBinary()
	_, err := c.call(tcb_protocol.CmdSetTime, payload)
	return err
}

// GetRecordInfo 读取记录统计
func (c *Client) GetRecordInfo() (*tcb_protocol.RecordInfoData, error) {
	data, err := c.call(tcb_protocol.CmdGetRecordInfo, nil)
	if err != nil {
		return nil, err
	}
	info := &tcb_protocol.RecordInfoData{}
	return info, info.UnmarshalBinary(data)
}

// DownloadRecords 分页下载考勤记录
func (c *Client) DownloadRecords(param, count uint8) ([]tcb_protocol.RecordEntry, error) {
	req := tcb_protocol.DownloadRequestData{Param: param, Count: count}
	payload, _ := req.MarshalBinary()
	data, err := c.call(tcb_protocol.CmdDownloadRecord, payload)
	if err != nil {
		return nil, err
	}
	var page tcb_protocol.RecordDownloadData
	if len(data) == 0 {
		return nil, nil
	}
	if err := page.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return page.Entries, nil
}

// DownloadStaff 分页下载员工信息
func (c *Client) DownloadStaff(param, count uint8) ([]tcb_protocol.StaffEntry, error) {
	req := tcb_protocol.DownloadRequestData{Param: param, Count: count}
	payload, _ := req.MarshalBinary()
	data, err := c.call(tcb_protocol.CmdDownloadStaff, payload)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var page tcb_protocol.StaffDownloadData
	if err := page.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return page.Entries, nil
}

// UploadStaff 上传员工信息，返回每条的结果位图
func (c *Client) UploadStaff(entries []tcb_protocol.StaffEntry) (tcb_protocol.UploadResultData, error) {
	var result tcb_protocol.UploadResultData
	upload := tcb_protocol.StaffUploadData{Entries: entries}
	payload, err := upload.MarshalBinary()
	if err != nil {
		return result, err
	}
	data, err := c.call(tcb_protocol.CmdUploadStaff, payload)
	if err != nil {
		return result, err
	}
	return result, result.UnmarshalBinary(data)
}

// DeleteUser 删除用户或清除其部分凭据
func (c *Client) DeleteUser(userID [5]byte, mode uint8) error {
	req := tcb_protocol.DeleteUserData{UserID: userID, Mode: mode}
	payload, _ := req.MarshalBinary()
	_, err := c.call(tcb_protocol.CmdDeleteUser, payload)
	return err
}

// DeleteRecords 清除全部记录(1)或新记录标记(2)
func (c *Client) DeleteRecords(mode uint8) error {
	_, err := c.call(tcb_protocol.CmdDeleteRecords, []byte{mode})
	return err
}

// Unlock 强制开锁
func (c *Client) Unlock() error {
	_, err := c.call(tcb_protocol.CmdForcedUnlock, nil)
	return err
}

// GetDeviceID 读取通讯设备ID
func (c *Client) GetDeviceID() (uint32, error) {
	data, err := c.call(tcb_protocol.CmdGetDeviceID, nil)
	if err != nil {
		return 0, err
	}
	var id tcb_protocol.DeviceIDData
	if err := id.UnmarshalBinary(data); err != nil {
		return 0, err
	}
	return id.DeviceID, nil
}
