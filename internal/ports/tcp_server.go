package ports

import (
	"fmt"
	"net"
	"time"

	"github.com/aceld/zinx/zconf"
	"github.com/aceld/zinx/ziface"
	"github.com/aceld/zinx/znet"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/zinx_server"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/zinx_server/handlers"
	"github.com/sirupsen/logrus"
)

// TCPServer 封装终端协议TCP服务器
type TCPServer struct {
	server  ziface.IServer
	cfg     *config.Config
	engine  handlers.Engine
	monitor *zinx_server.SessionMonitor
}

// NewTCPServer 创建新的TCP服务器实例
func NewTCPServer(cfg *config.Config, engine handlers.Engine, monitor *zinx_server.SessionMonitor) *TCPServer {
	if monitor == nil {
		monitor = zinx_server.GetGlobalMonitor()
	}
	return &TCPServer{
		cfg:     cfg,
		engine:  engine,
		monitor: monitor,
	}
}

// Start 配置并启动服务器，监听就绪后返回
func (s *TCPServer) Start() error {
	if err := s.initialize(); err != nil {
		return err
	}
	s.registerRoutes()
	s.setupConnectionHooks()
	return s.startServer()
}

// Stop 停止服务器，断开全部连接
func (s *TCPServer) Stop() {
	if s.server != nil {
		s.server.Stop()
		logger.Info("TCP服务器已停止")
	}
}

// initialize 初始化服务器配置
func (s *TCPServer) initialize() error {
	tcpCfg := s.cfg.TCPServer
	zinxCfg := tcpCfg.Zinx

	zconf.GlobalObject.Name = zinxCfg.Name
	zconf.GlobalObject.Mode = zconf.ServerModeTcp
	zconf.GlobalObject.Host = tcpCfg.Host
	zconf.GlobalObject.TCPPort = tcpCfg.Port
	zconf.GlobalObject.Version = zinxCfg.Version
	zconf.GlobalObject.MaxConn = zinxCfg.MaxConn
	zconf.GlobalObject.MaxPacketSize = zinxCfg.MaxPacketSize
	zconf.GlobalObject.WorkerPoolSize = uint32(zinxCfg.WorkerPoolSize)
	zconf.GlobalObject.MaxWorkerTaskLen = uint32(zinxCfg.MaxWorkerTaskLen)

	s.server = znet.NewUserConfServer(zconf.GlobalObject)
	if s.server == nil {
		return fmt.Errorf("创建Zinx服务器实例失败")
	}

	s.server.SetDecoder(zinx_server.NewTerminalDecoder(s.frameTimeout(), tcpCfg.MaxPayloadLen, s.monitor))

	logger.WithFields(logrus.Fields{
		"name":           zinxCfg.Name,
		"address":        config.FormatTCPAddress(),
		"maxConn":        zinxCfg.MaxConn,
		"workerPoolSize": zinxCfg.WorkerPoolSize,
		"frameTimeout":   s.frameTimeout().String(),
		"maxPayloadLen":  tcpCfg.MaxPayloadLen,
	}).Info("TCP服务器配置完成")
	return nil
}

// registerRoutes 注册路由
func (s *TCPServer) registerRoutes() {
	handlers.RegisterRouters(s.server, s.engine, s.monitor)
}

// setupConnectionHooks 设置连接钩子
func (s *TCPServer) setupConnectionHooks() {
	hooks := zinx_server.NewConnectionHooks(s.frameTimeout(), s.cfg.TCPServer.MaxPayloadLen, s.monitor)
	s.server.SetOnConnStart(hooks.OnConnectionStart)
	s.server.SetOnConnStop(hooks.OnConnectionStop)
}

// startServer 先确认端口可以绑定，再交给zinx监听
// zinx在后台协程中监听，绑定失败不会返回错误
func (s *TCPServer) startServer() error {
	addr := listenAddress(s.cfg.TCPServer.Host, s.cfg.TCPServer.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("TCP服务器启动失败: %w", err)
	}
	if err := ln.Close(); err != nil {
		return fmt.Errorf("TCP服务器启动失败: %w", err)
	}

	s.server.Start()
	logger.Infof("TCP服务器启动在 %s", addr)
	return nil
}

func (s *TCPServer) frameTimeout() time.Duration {
	return time.Duration(s.cfg.TCPServer.FrameTimeoutMs) * time.Millisecond
}

func listenAddress(host string, port int) string {
	return net.JoinHostPort(host, fmt.Sprint(port))
}
