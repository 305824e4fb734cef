package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/app/service"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/errors"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	timeLayout          = "2006-01-02 15:04:05"
	defaultRecordsLimit = 50
	defaultEventsLimit  = 50
)

// HandleHealthCheck 健康检查
// @Summary 健康检查
// @Tags system
// @Produce json
// @Success 200 {object} APIResponse{data=HealthResponse}
// @Router /health [get]
func (h *HandlerContext) HandleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Code:    0,
		Message: "success",
		Data: HealthResponse{
			Status:      "ok",
			DeviceID:    h.Terminal.Settings().DeviceID,
			Connections: len(h.Sessions.List()),
		},
	})
}

// HandleStatus 终端状态
// @Summary 获取终端状态
// @Description 设备ID、固件、存储用量、终端时钟和当前协议连接
// @Tags terminal
// @Produce json
// @Success 200 {object} APIResponse{data=StatusResponse}
// @Router /api/v1/status [get]
func (h *HandlerContext) HandleStatus(c *gin.Context) {
	st := h.Terminal.Status()
	sessions := h.Sessions.List()
	conns := make([]ConnectionInfo, len(sessions))
	for i, s := range sessions {
		conns[i] = ConnectionInfo{
			SessionID:     s.SessionID,
			ConnID:        s.ConnID,
			RemoteAddr:    s.RemoteAddr,
			ConnectedAt:   s.ConnectedAt,
			LastActivity:  s.LastActivity,
			BytesIn:       s.BytesIn,
			FramesIn:      s.FramesIn,
			FramesHandled: s.FramesHandled,
			DroppedBytes:  s.DroppedBytes,
		}
	}

	c.JSON(http.StatusOK, APIResponse{
		Code:    0,
		Message: "success",
		Data: StatusResponse{
			DeviceID:      st.DeviceID,
			DeviceIDHex:   fmt.Sprintf("%08X", st.DeviceID),
			Firmware:      st.Firmware,
			Users:         st.Users,
			UserCapacity:  st.UserCapacity,
			Records:       st.Records,
			NewRecords:    st.NewRecords,
			RecordCap:     st.RecordCap,
			Clock:         st.Clock.Format(timeLayout),
			DateFormat:    st.DateFormat,
			Language:      st.Language,
			Unlocked:      st.Unlocked,
			Uptime:        time.Since(st.StartedAt).Round(time.Second).String(),
			RebootEnabled: st.RebootEnabled,
			Connections:   conns,
		},
	})
}

// HandleUserList 用户列表
// @Summary 获取登记用户
// @Tags users
// @Produce json
// @Success 200 {object} APIResponse{data=[]UserInfo}
// @Router /api/v1/users [get]
func (h *HandlerContext) HandleUserList(c *gin.Context) {
	users := h.Terminal.Users()
	list := make([]UserInfo, len(users))
	for i := range users {
		u := &users[i]
		list[i] = UserInfo{
			ID:         u.DecimalID(),
			Name:       u.DisplayName(),
			CardID:     u.CardID,
			Department: u.Department,
			Active:     u.Active,
		}
	}
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success", Data: list})
}

// HandleRecordList 最近的考勤记录
// @Summary 获取最近的考勤记录
// @Description 最新的在前
// @Tags records
// @Produce json
// @Param limit query int false "条数" default(50)
// @Success 200 {object} APIResponse{data=RecordListResponse}
// @Failure 400 {object} APIResponse
// @Router /api/v1/records [get]
func (h *HandlerContext) HandleRecordList(c *gin.Context) {
	limit, ok := parseLimit(c, defaultRecordsLimit)
	if !ok {
		return
	}
	views := h.Terminal.LatestRecords(limit)
	records := make([]RecordInfo, len(views))
	for i, v := range views {
		records[i] = recordInfoFromView(v)
	}
	c.JSON(http.StatusOK, APIResponse{
		Code:    0,
		Message: "success",
		Data:    RecordListResponse{Records: records, Count: len(records)},
	})
}

// HandleRecordExport 导出全部考勤记录
// @Summary 导出考勤记录为Excel
// @Tags records
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} APIResponse
// @Router /api/v1/records/export [get]
func (h *HandlerContext) HandleRecordExport(c *gin.Context) {
	views := h.Terminal.LatestRecords(0)
	data, err := GenerateRecordsExport(views)
	if err != nil {
		logger.WithField("error", err.Error()).Error("生成考勤记录导出文件失败")
		c.JSON(http.StatusInternalServerError, APIResponse{
			Code:    int(errors.ErrExportFailed),
			Message: "导出失败",
		})
		return
	}

	filename := fmt.Sprintf("records-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// HandleClearRecords 清空考勤记录
// @Summary 清空考勤记录
// @Tags records
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/v1/records [delete]
func (h *HandlerContext) HandleClearRecords(c *gin.Context) {
	h.Terminal.ClearRecords()
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success"})
}

// HandleGetSettings 当前设置
// @Summary 获取终端设置
// @Tags settings
// @Produce json
// @Success 200 {object} APIResponse{data=SettingsInfo}
// @Router /api/v1/settings [get]
func (h *HandlerContext) HandleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Code:    0,
		Message: "success",
		Data:    settingsInfo(h.Terminal.Settings()),
	})
}

// HandleUpdateSettings 修改设置
// @Summary 修改终端设置
// @Description 只修改请求中提供的字段，取值越界时整体不生效
// @Tags settings
// @Accept json
// @Produce json
// @Param request body SettingsRequest true "设置"
// @Success 200 {object} APIResponse{data=SettingsInfo}
// @Failure 400 {object} APIResponse
// @Router /api/v1/settings [put]
func (h *HandlerContext) HandleUpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Code:    int(errors.ErrInvalidParameter),
			Message: "参数错误: " + err.Error(),
		})
		return
	}

	update := service.SettingsUpdate{
		DeviceID:        req.DeviceID,
		RelayDurationMs: req.RelayDurationMs,
	}
	if req.Pins != nil {
		update.Pins = &storage.Pins{D0: req.Pins.D0, D1: req.Pins.D1, Relay: req.Pins.Relay, LED: req.Pins.LED}
	}
	if req.Reboot != nil {
		update.Reboot = &storage.RebootSchedule{Enabled: req.Reboot.Enabled, Hour: req.Reboot.Hour, Minute: req.Reboot.Minute}
	}

	cfg, err := h.Terminal.UpdateSettings(update)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Code:    int(errors.CodeOf(err)),
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success", Data: settingsInfo(cfg)})
}

// HandleUnlock 远程开门
// @Summary 远程开门
// @Tags terminal
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/v1/unlock [post]
func (h *HandlerContext) HandleUnlock(c *gin.Context) {
	h.Terminal.Unlock()
	logger.WithField("remoteAddr", c.ClientIP()).Info("管理接口开门")
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success"})
}

// HandleRestart 软重启终端
// @Summary 重启终端
// @Description 从存储重新加载配置、用户和记录，复位下载游标并释放门锁
// @Tags terminal
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/v1/restart [post]
func (h *HandlerContext) HandleRestart(c *gin.Context) {
	logger.WithField("remoteAddr", c.ClientIP()).Info("管理接口重启")
	h.Terminal.Restart()
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success"})
}

// HandleSwipe 模拟刷卡
// @Summary 模拟读卡器刷卡
// @Tags terminal
// @Accept json
// @Produce json
// @Param request body SwipeRequest true "卡号"
// @Success 200 {object} APIResponse{data=SwipeResponse}
// @Failure 400 {object} APIResponse
// @Router /api/v1/swipe [post]
func (h *HandlerContext) HandleSwipe(c *gin.Context) {
	var req SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Code:    int(errors.ErrInvalidParameter),
			Message: "参数错误: " + err.Error(),
		})
		return
	}

	result := h.Terminal.Swipe(req.CardID)
	resp := SwipeResponse{Granted: result.Granted}
	if result.Granted {
		resp.UserID = result.User.DecimalID()
		resp.UserName = result.User.DisplayName()
		record := recordInfoFromView(service.RecordView{
			AccessRecord: result.Record,
			UserName:     resp.UserName,
			Time:         recordTime(result.Record),
		})
		resp.Record = &record
	}
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success", Data: resp})
}

// HandleEventList 最近发布的事件
// @Summary 获取最近的门禁事件
// @Tags events
// @Produce json
// @Param limit query int false "条数" default(50)
// @Success 200 {object} APIResponse{data=EventListResponse}
// @Router /api/v1/events [get]
func (h *HandlerContext) HandleEventList(c *gin.Context) {
	limit, ok := parseLimit(c, defaultEventsLimit)
	if !ok {
		return
	}
	if h.Events == nil {
		c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success", Data: EventListResponse{Events: []interface{}{}}})
		return
	}

	events := h.Events.Recent(limit)
	stats := h.Events.GetStats()
	c.JSON(http.StatusOK, APIResponse{
		Code:    0,
		Message: "success",
		Data: EventListResponse{
			Events:      events,
			Count:       len(events),
			TotalSent:   stats.TotalSent,
			TotalFailed: stats.TotalFailed,
			Dropped:     stats.TotalDropped,
		},
	})
}

// HandleMetrics 协议命令指标
// @Summary 获取协议命令统计
// @Tags status
// @Produce json
// @Success 200 {object} APIResponse{data=metrics.Summary}
// @Router /api/v1/metrics [get]
func (h *HandlerContext) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success", Data: h.Metrics.Snapshot()})
}

// parseLimit 解析limit查询参数，非法时直接写出400
func parseLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		logger.WithFields(logrus.Fields{"limit": raw}).Debug("非法的limit参数")
		c.JSON(http.StatusBadRequest, APIResponse{
			Code:    int(errors.ErrInvalidParameter),
			Message: "limit必须为正整数",
		})
		return 0, false
	}
	return limit, true
}

func recordInfoFromView(v service.RecordView) RecordInfo {
	return RecordInfo{
		UserID:    storage.FormatUserID(v.UserID),
		UserName:  v.UserName,
		Time:      v.Time.Format(timeLayout),
		Direction: v.Direction(),
		Method:    v.Method(),
	}
}

func settingsInfo(cfg storage.BasicConfig) SettingsInfo {
	return SettingsInfo{
		DeviceID: cfg.DeviceID,
		Pins: PinsInfo{
			D0:    cfg.Pins.D0,
			D1:    cfg.Pins.D1,
			Relay: cfg.Pins.Relay,
			LED:   cfg.Pins.LED,
		},
		RelayDurationMs: cfg.RelayDurationMs,
		Reboot: RebootInfo{
			Enabled: cfg.Reboot.Enabled,
			Hour:    cfg.Reboot.Hour,
			Minute:  cfg.Reboot.Minute,
		},
	}
}
