// Package main 门禁终端模拟器
// @title 门禁终端管理接口
// @version 1.0
// @description 门禁终端模拟器的状态查询、用户与记录管理、设置和远程开门接口

// @BasePath /

// @tag.name terminal "终端"
// @tag.description "终端状态、远程开门和刷卡"

// @tag.name records "考勤记录"
// @tag.description "记录查询、导出和清空"

// @tag.name system "系统监控"
// @tag.description "健康检查和路由列表"

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bujia-iot/iot-terminal/internal/app"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/pkg/utils"
	"github.com/sirupsen/logrus"
)

var configFile = flag.String("config", "configs/terminal.yaml", "配置文件路径")

const shutdownTimeout = 10 * time.Second

func loadConfigOrExit() *config.Config {
	if err := config.Load(*configFile); err != nil {
		logger.Error("加载配置文件失败: " + err.Error())
		os.Exit(1)
	}
	return config.GetConfig()
}

func setupLoggerOrExit(cfg *config.Config) {
	if err := logger.Init(&cfg.Logger); err != nil {
		logger.Error("初始化日志系统失败: " + err.Error())
		os.Exit(1)
	}
}

func main() {
	flag.Parse()

	cfg := loadConfigOrExit()
	setupLoggerOrExit(cfg)

	// 设置Zinx框架日志
	utils.SetupZinxLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := app.NewServiceManager(cfg)
	if err := manager.Init(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("初始化失败")
		os.Exit(1)
	}
	if err := manager.Start(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("启动失败")
		shutdown(manager)
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"deviceId": manager.Terminal.DeviceID(),
		"tcp":      config.FormatTCPAddress(),
		"http":     cfg.HTTPAPIServer.Enabled,
		"storage":  cfg.Storage.Backend,
		"mqtt":     cfg.MQTT.Enabled,
	}).Info("门禁终端已启动")

	// 等待中断信号
	<-ctx.Done()
	logger.Info("接收到停止信号，开始关闭...")
	shutdown(manager)
}

func shutdown(manager *app.ServiceManager) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := manager.Shutdown(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("关闭存储失败")
		return
	}
	logger.Info("门禁终端已停止")
}
