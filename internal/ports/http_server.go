package ports

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/bujia-iot/iot-terminal/docs" // Swagger文档
	api "github.com/bujia-iot/iot-terminal/internal/adapter/http"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HTTPServer 管理接口服务器
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer 创建管理接口服务器
func NewHTTPServer(cfg config.HTTPAPIServerConfig, hctx *api.HandlerContext) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	registerHTTPHandlers(r, hctx, cfg.Auth)

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &HTTPServer{
		srv: &http.Server{
			Addr:         config.FormatHTTPAddress(),
			Handler:      r,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

// Start 在后台启动监听
func (s *HTTPServer) Start() {
	go func() {
		logger.Infof("HTTP API服务器启动在 %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithField("error", err.Error()).Error("HTTP API服务器异常退出")
		}
	}()
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// registerHTTPHandlers 注册HTTP处理器
func registerHTTPHandlers(r *gin.Engine, h *api.HandlerContext, auth config.AuthConfig) {
	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查不需要认证
	r.GET("/health", h.HandleHealthCheck)

	var middleware []gin.HandlerFunc
	if auth.Username != "" {
		middleware = append(middleware, gin.BasicAuth(gin.Accounts{auth.Username: auth.Password}))
	}

	// @Summary 获取所有路由
	// @Tags system
	// @Produce json
	// @Success 200 {object} APIResponse{data=RoutesResponse} "路由列表"
	// @Router /routes [get]
	r.GET("/routes", append(middleware, func(c *gin.Context) {
		var routes []api.RouteInfo
		for _, routeInfo := range r.Routes() {
			routes = append(routes, api.RouteInfo{
				Method: routeInfo.Method,
				Path:   routeInfo.Path,
			})
		}
		c.JSON(http.StatusOK, api.APIResponse{
			Code:    0,
			Message: "success",
			Data: api.RoutesResponse{
				Routes: routes,
				Count:  len(routes),
			},
		})
	})...)

	// API路由组 v1版本
	v1 := r.Group("/api/v1", middleware...)
	{
		v1.GET("/status", h.HandleStatus)
		v1.GET("/users", h.HandleUserList)
		v1.GET("/records", h.HandleRecordList)
		v1.GET("/records/export", h.HandleRecordExport)
		v1.DELETE("/records", h.HandleClearRecords)
		v1.GET("/settings", h.HandleGetSettings)
		v1.PUT("/settings", h.HandleUpdateSettings)
		v1.POST("/unlock", h.HandleUnlock)
		v1.POST("/restart", h.HandleRestart)
		v1.POST("/swipe", h.HandleSwipe)
		v1.GET("/events", h.HandleEventList)
		v1.GET("/metrics", h.HandleMetrics)
	}
}

// requestLogger 请求日志中间件
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start).String()).
			Debug("HTTP请求")
	}
}
