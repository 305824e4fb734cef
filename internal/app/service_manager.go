package app

import (
	"context"
	"fmt"
	"time"

	api "github.com/bujia-iot/iot-terminal/internal/adapter/http"
	"github.com/bujia-iot/iot-terminal/internal/app/service"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/hardware"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/persistence"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/zinx_server"
	"github.com/bujia-iot/iot-terminal/internal/ports"
	"github.com/bujia-iot/iot-terminal/pkg/notification"
	"github.com/bujia-iot/iot-terminal/pkg/storage"
	"github.com/sirupsen/logrus"
)

// ServiceManager 服务管理器，负责创建、启动和关闭各个组件
type ServiceManager struct {
	cfg *config.Config

	Store         *persistence.Store
	Notifications *notification.NotificationService
	Terminal      *service.TerminalService
	Monitor       *zinx_server.SessionMonitor

	tcpServer  *ports.TCPServer
	httpServer *ports.HTTPServer
}

// NewServiceManager 创建服务管理器
func NewServiceManager(cfg *config.Config) *ServiceManager {
	return &ServiceManager{
		cfg:     cfg,
		Monitor: zinx_server.GetGlobalMonitor(),
	}
}

// Init 初始化存储、事件发布和终端服务
func (m *ServiceManager) Init(ctx context.Context) error {
	store, err := persistence.Open(ctx, m.cfg.Storage, m.cfg.Redis)
	if err != nil {
		return fmt.Errorf("打开持久化存储失败: %w", err)
	}
	m.Store = store

	m.Notifications, err = m.newNotificationService()
	if err != nil {
		return err
	}

	// 引脚在服务加载配置后设置
	actuator := hardware.NewLogActuator(storage.Pins{})
	m.Terminal = service.NewTerminalService(service.Dependencies{
		Persistence: m.Store,
		Actuator:    actuator,
		Clock:       hardware.NewOffsetClock(time.Local),
		Notifier:    m.Notifications,
	})
	return nil
}

// newNotificationService 创建事件发布服务，MQTT连接失败时退化为只记录
func (m *ServiceManager) newNotificationService() (*notification.NotificationService, error) {
	mqttCfg := m.cfg.MQTT
	cfg := notification.DefaultNotificationConfig()
	cfg.Enabled = mqttCfg.Enabled
	cfg.TopicPrefix = mqttCfg.TopicPrefix
	cfg.QoS = mqttCfg.QoS

	var publisher notification.Publisher
	if mqttCfg.Enabled {
		p, err := notification.NewMQTTPublisher(mqttCfg)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"broker": mqttCfg.Broker,
				"error":  err.Error(),
			}).Warn("MQTT连接失败，事件只记录不发布")
		} else {
			publisher = p
		}
	}
	return notification.NewNotificationService(cfg, publisher)
}

// Start 启动全部组件
func (m *ServiceManager) Start(ctx context.Context) error {
	if err := m.Notifications.Start(ctx); err != nil {
		return fmt.Errorf("启动事件发布服务失败: %w", err)
	}
	m.Terminal.Start(ctx)

	m.tcpServer = ports.NewTCPServer(m.cfg, m.Terminal, m.Monitor)
	if err := m.tcpServer.Start(); err != nil {
		return err
	}

	if m.cfg.HTTPAPIServer.Enabled {
		hctx := api.NewHandlerContext(m.Terminal, m.Monitor, m.Notifications)
		m.httpServer = ports.NewHTTPServer(m.cfg.HTTPAPIServer, hctx)
		m.httpServer.Start()
	}
	return nil
}

// Shutdown 按启动的逆序关闭组件
func (m *ServiceManager) Shutdown(ctx context.Context) error {
	if m.httpServer != nil {
		if err := m.httpServer.Shutdown(ctx); err != nil {
			logger.WithField("error", err.Error()).Error("关闭HTTP API服务器失败")
		}
	}
	if m.tcpServer != nil {
		m.tcpServer.Stop()
	}
	if m.Terminal != nil {
		m.Terminal.Close()
	}
	if m.Notifications != nil {
		if err := m.Notifications.Stop(ctx); err != nil {
			logger.WithField("error", err.Error()).Error("停止事件发布服务失败")
		}
	}
	if m.Store != nil {
		return m.Store.Close()
	}
	return nil
}
