package utils

import (
	"context"

	"github.com/aceld/zinx/zlog"
	"github.com/bujia-iot/iot-terminal/internal/infrastructure/logger"
	"github.com/sirupsen/logrus"
)

// zinxLogger 把zinx框架日志转发到logrus，统一打上component=zinx
type zinxLogger struct {
	entry *logrus.Entry
}

func newZinxLogger() *zinxLogger {
	return &zinxLogger{entry: logger.WithField("component", "zinx")}
}

func (z *zinxLogger) logf(ctx context.Context, level logrus.Level, format string, v ...interface{}) {
	z.entry.WithContext(ctx).Logf(level, format, v...)
}

func (z *zinxLogger) InfoF(format string, v ...interface{}) {
	z.logf(context.Background(), logrus.InfoLevel, format, v...)
}

func (z *zinxLogger) DebugF(format string, v ...interface{}) {
	z.logf(context.Background(), logrus.DebugLevel, format, v...)
}

func (z *zinxLogger) ErrorF(format string, v ...interface{}) {
	z.logf(context.Background(), logrus.ErrorLevel, format, v...)
}

func (z *zinxLogger) InfoFX(ctx context.Context, format string, v ...interface{}) {
	z.logf(ctx, logrus.InfoLevel, format, v...)
}

func (z *zinxLogger) DebugFX(ctx context.Context, format string, v ...interface{}) {
	z.logf(ctx, logrus.DebugLevel, format, v...)
}

func (z *zinxLogger) ErrorFX(ctx context.Context, format string, v ...interface{}) {
	z.logf(ctx, logrus.ErrorLevel, format, v...)
}

// SetupZinxLogger 让zinx框架使用logrus输出日志
func SetupZinxLogger() {
	zlog.SetLogger(newZinxLogger())
	logger.Info("zinx日志已接入logrus")
}
