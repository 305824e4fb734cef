package ports

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	api "github.com/bujia-iot/iot-terminal/internal/adapter/http"
	"github.com/bujia-iot/iot-terminal/internal/app/service"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/hardware"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/persistence"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/zinx_server"
	"github.com/bujia-iot/iot-terminal/pkg/metrics"
	"github.com/bujia-iot/iot-terminal/pkg/notification"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type apiFixture struct {
	router   *gin.Engine
	terminal *service.TerminalService
	store    *persistence.Store
	events   *notification.NotificationService
	metrics  *metrics.CommandMetrics
}

func newAPIFixture(t *testing.T, auth config.AuthConfig) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := persistence.Open(context.Background(),
		config.StorageConfig{Backend: "file", DataDir: t.TempDir()}, config.RedisConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	user := storage.User{ID: [5]byte{0, 0, 0, 0x30, 0x39}, CardID: 123456, Active: true}
	user.SetName("Li")
	require.True(t, store.SaveUsers([]storage.User{user}))

	events, err := notification.NewNotificationService(notification.DefaultNotificationConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, events.Start(context.Background()))
	t.Cleanup(func() { _ = events.Stop(context.Background()) })

	terminal := service.NewTerminalService(service.Dependencies{
		Persistence: store,
		Actuator:    hardware.NewLogActuator(storage.DefaultBasicConfig().Pins),
		Clock:       hardware.NewOffsetClock(time.UTC),
		Notifier:    events,
	})
	t.Cleanup(terminal.Close)

	monitor := zinx_server.NewSessionMonitor()
	monitor.OnConnectionEstablished(1, "session-1", "10.0.0.8:40000", time.Now())

	hctx := api.NewHandlerContext(terminal, monitor, events)
	commandMetrics := metrics.NewCommandMetrics()
	hctx.Metrics = commandMetrics

	r := gin.New()
	registerHTTPHandlers(r, hctx, auth)
	return &apiFixture{router: r, terminal: terminal, store: store, events: events, metrics: commandMetrics}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, auth ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if len(auth) == 2 {
		req.SetBasicAuth(auth[0], auth[1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) api.APIResponse {
	t.Helper()
	var resp struct {
		api.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if v != nil {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return resp.APIResponse
}

func TestHTTPAPI_StatusAndUsers(t *testing.T) {
	f := newAPIFixture(t, config.AuthConfig{})

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health api.HealthResponse
	decodeData(t, w, &health)
	assert.Equal(t, storage.DefaultDeviceID, health.DeviceID)
	assert.Equal(t, 1, health.Connections)

	w = f.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status api.StatusResponse
	decodeData(t, w, &status)
	assert.Equal(t, "00010001", status.DeviceIDHex)
	assert.Equal(t, "V1.0.0", status.Firmware)
	assert.Equal(t, 1, status.Users)
	assert.Equal(t, "YYYY-MM-DD 12h", status.DateFormat)
	require.Len(t, status.Connections, 1)
	assert.Equal(t, "10.0.0.8:40000", status.Connections[0].RemoteAddr)

	w = f.do(t, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []api.UserInfo
	decodeData(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "12345", users[0].ID)
	assert.Equal(t, "Li", users[0].Name)
	assert.Equal(t, uint32(123456), users[0].CardID)
}

func TestHTTPAPI_SwipeAndRecords(t *testing.T) {
	f := newAPIFixture(t, config.AuthConfig{})

	t.Run("已登记的卡开门并记录", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/swipe", api.SwipeRequest{CardID: 123456})
		require.Equal(t, http.StatusOK, w.Code)
		var result api.SwipeResponse
		decodeData(t, w, &result)
		assert.True(t, result.Granted)
		assert.Equal(t, "12345", result.UserID)
		require.NotNil(t, result.Record)
		assert.Equal(t, "in", result.Record.Direction)
		assert.Equal(t, "card", result.Record.Method)
	})

	t.Run("未登记的卡拒绝", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/swipe", api.SwipeRequest{CardID: 42})
		require.Equal(t, http.StatusOK, w.Code)
		var result api.SwipeResponse
		decodeData(t, w, &result)
		assert.False(t, result.Granted)
		assert.Nil(t, result.Record)
	})

	t.Run("缺少卡号", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/swipe", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("记录列表", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/records?limit=10", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list api.RecordListResponse
		decodeData(t, w, &list)
		require.Equal(t, 1, list.Count)
		assert.Equal(t, "Li", list.Records[0].UserName)

		w = f.do(t, http.MethodGet, "/api/v1/records?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("导出Excel", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/records/export", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

		book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer book.Close()
		rows, err := book.GetRows("Records")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, api.RecordsExportHeader, rows[0])
		assert.Equal(t, "12345", rows[1][0])
		assert.Equal(t, "Li", rows[1][1])
	})

	t.Run("事件列表", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/events", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var events struct {
			Events []notification.NotificationEvent `json:"events"`
			Count  int                              `json:"count"`
		}
		decodeData(t, w, &events)
		require.Equal(t, 2, events.Count)
		assert.Equal(t, notification.EventTypeAccessGranted, events.Events[0].EventType)
		assert.Equal(t, notification.EventTypeAccessDenied, events.Events[1].EventType)
	})

	t.Run("清空记录", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/v1/records", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, f.terminal.LatestRecords(0))
		records, _ := f.store.LoadRecords()
		assert.Empty(t, records)
	})
}

func TestHTTPAPI_Settings(t *testing.T) {
	f := newAPIFixture(t, config.AuthConfig{})

	relay := 3000
	deviceID := uint32(0x00020002)
	w := f.do(t, http.MethodPut, "/api/v1/settings", api.SettingsRequest{
		DeviceID:        &deviceID,
		RelayDurationMs: &relay,
		Reboot:          &api.RebootInfo{Enabled: true, Hour: 4, Minute: 30},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var settings api.SettingsInfo
	decodeData(t, w, &settings)
	assert.Equal(t, deviceID, settings.DeviceID)
	assert.Equal(t, 3000, settings.RelayDurationMs)
	assert.Equal(t, storage.DefaultPinRelay, settings.Pins.Relay)

	saved := f.store.LoadConfig()
	assert.Equal(t, deviceID, saved.DeviceID)
	assert.True(t, saved.Reboot.Enabled)

	bad := 0
	w = f.do(t, http.MethodPut, "/api/v1/settings", api.SettingsRequest{RelayDurationMs: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &settings)
	assert.Equal(t, 3000, settings.RelayDurationMs, "rejected update must not apply")
}

func TestHTTPAPI_BasicAuth(t *testing.T) {
	f := newAPIFixture(t, config.AuthConfig{Username: "admin", Password: "secret"})

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/status", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/v1/unlock", nil, "admin", "wrong").Code)

	w := f.do(t, http.MethodPost, "/api/v1/unlock", nil, "admin", "secret")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.terminal.Unlocked())
}

func TestHTTPAPI_Metrics(t *testing.T) {
	f := newAPIFixture(t, config.AuthConfig{})
	f.metrics.RecordCommand(0x40, false, time.Millisecond)
	f.metrics.RecordCommand(0x5E, true, time.Millisecond)
	f.metrics.RecordInvalidFrame(9)

	w := f.do(t, http.MethodGet, "/api/v1/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary metrics.Summary
	decodeData(t, w, &summary)
	require.Len(t, summary.Commands, 2)
	assert.Equal(t, "0x40", summary.Commands[0].Command)
	assert.Equal(t, uint64(2), summary.TotalCommands)
	assert.Equal(t, uint64(1), summary.TotalFailures)
	assert.Equal(t, uint64(1), summary.InvalidFrames)
	assert.Equal(t, uint64(9), summary.DroppedBytes)
}

func TestHTTPAPI_Restart(t *testing.T) {
	f := newAPIFixture(t, config.AuthConfig{})

	// 开锁后在存储中追加用户，重启应重新加载并释放门锁
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/unlock", nil).Code)
	require.True(t, f.terminal.Unlocked())
	users := f.store.LoadUsers()
	extra := storage.User{ID: [5]byte{0, 0, 0, 0, 9}, CardID: 900, Active: true}
	require.True(t, f.store.SaveUsers(append(users, extra)))

	w := f.do(t, http.MethodPost, "/api/v1/restart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeData(t, w, nil).Code)
	assert.False(t, f.terminal.Unlocked())
	assert.Len(t, f.terminal.Users(), 2)

	recent := f.events.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, notification.EventTypeRestart, recent[0].EventType)
	assert.Equal(t, "admin", recent[0].Data["source"])
}
