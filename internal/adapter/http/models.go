package http

import "time"

// APIResponse API统一响应结构
// @Description API统一响应格式
type APIResponse struct {
	Code    int         `json:"code" example:"0"`                    // 响应码，0表示成功
	Message string      `json:"message" example:"success"`           // 响应消息
	Data    interface{} `json:"data,omitempty" swaggertype:"object"` // 响应数据
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	DeviceID    uint32 `json:"deviceId" example:"65537"`
	Connections int    `json:"connections" example:"1"`
}

// ConnectionInfo 协议连接信息
type ConnectionInfo struct {
	SessionID     string    `json:"sessionId"`
	ConnID        uint64    `json:"connId"`
	RemoteAddr    string    `json:"remoteAddr" example:"192.168.1.100:12345"`
	ConnectedAt   time.Time `json:"connectedAt"`
	LastActivity  time.Time `json:"lastActivity"`
	BytesIn       int64     `json:"bytesIn"`
	FramesIn      int64     `json:"framesIn"`
	FramesHandled int64     `json:"framesHandled"`
	DroppedBytes  int64     `json:"droppedBytes"`
}

// StatusResponse 终端状态
// @Description 终端运行状态
type StatusResponse struct {
	DeviceID      uint32           `json:"deviceId" example:"65537"`
	DeviceIDHex   string           `json:"deviceIdHex" example:"00010001"`
	Firmware      string           `json:"firmware" example:"V1.0.0"`
	Users         int              `json:"users"`
	UserCapacity  int              `json:"userCapacity"`
	Records       int              `json:"records"`
	NewRecords    int              `json:"newRecords"`
	RecordCap     int              `json:"recordCapacity"`
	Clock         string           `json:"clock" example:"2025-03-04 05:06:07"`
	DateFormat    string           `json:"dateFormat" example:"YYYY-MM-DD 12h"`
	Language      string           `json:"language" example:"english"`
	Unlocked      bool             `json:"unlocked"`
	Uptime        string           `json:"uptime" example:"1h2m3s"`
	RebootEnabled bool             `json:"rebootEnabled"`
	Connections   []ConnectionInfo `json:"connections"`
}

// UserInfo 登记用户
type UserInfo struct {
	ID         string `json:"id" example:"12345"` // 十进制用户ID
	Name       string `json:"name" example:"Li"`
	CardID     uint32 `json:"cardId"`
	Department uint8  `json:"department"`
	Active     bool   `json:"active"`
}

// RecordInfo 考勤记录
type RecordInfo struct {
	UserID    string `json:"userId" example:"12345"`
	UserName  string `json:"userName" example:"unknown"`
	Time      string `json:"time" example:"2025-03-04 05:06:07"`
	Direction string `json:"direction" example:"in"`
	Method    string `json:"method" example:"card"`
}

// RecordListResponse 记录列表响应
type RecordListResponse struct {
	Records []RecordInfo `json:"records"`
	Count   int          `json:"count"`
}

// PinsInfo GPIO引脚
type PinsInfo struct {
	D0    int `json:"d0"`
	D1    int `json:"d1"`
	Relay int `json:"relay"`
	LED   int `json:"led"`
}

// RebootInfo 定时重启
type RebootInfo struct {
	Enabled bool `json:"enabled"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
}

// SettingsInfo 终端设置
type SettingsInfo struct {
	DeviceID        uint32     `json:"deviceId"`
	Pins            PinsInfo   `json:"pins"`
	RelayDurationMs int        `json:"relayDurationMs" example:"2000"`
	Reboot          RebootInfo `json:"reboot"`
}

// SettingsRequest 修改设置请求，未提供的字段保持不变
type SettingsRequest struct {
	DeviceID        *uint32     `json:"deviceId"`
	Pins            *PinsInfo   `json:"pins"`
	RelayDurationMs *int        `json:"relayDurationMs"`
	Reboot          *RebootInfo `json:"reboot"`
}

// SwipeRequest 刷卡请求
type SwipeRequest struct {
	CardID uint32 `json:"cardId" binding:"required" example:"123456"`
}

// SwipeResponse 刷卡结果
type SwipeResponse struct {
	Granted  bool        `json:"granted"`
	UserID   string      `json:"userId,omitempty"`
	UserName string      `json:"userName,omitempty"`
	Record   *RecordInfo `json:"record,omitempty"`
}

// EventListResponse 最近事件
type EventListResponse struct {
	Events      interface{} `json:"events" swaggertype:"array,object"`
	Count       int         `json:"count"`
	TotalSent   int64       `json:"totalSent"`
	TotalFailed int64       `json:"totalFailed"`
	Dropped     int64       `json:"dropped"`
}

// RouteInfo 路由信息
type RouteInfo struct {
	Method string `json:"method" example:"GET"`
	Path   string `json:"path" example:"/api/v1/status"`
}

// RoutesResponse 路由列表响应
type RoutesResponse struct {
	Routes []RouteInfo `json:"routes"`
	Count  int         `json:"count"`
}
