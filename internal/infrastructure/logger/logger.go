package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bujia-iot/iot-terminal/internal/infrastructure/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02 15:04:05"

// 全局日志实例
var log = logrus.New()

// hexDumpEnabled 是否输出帧的十六进制内容
var hexDumpEnabled bool

// Init 初始化日志系统
// 配置了文件路径时写入按大小轮转的日志文件，enableConsole同时输出到控制台
func Init(cfg *config.LoggerConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %s, %w", cfg.Level, err)
	}

	out, err := newOutput(cfg)
	if err != nil {
		return err
	}

	log.SetLevel(level)
	log.SetFormatter(newFormatter(cfg.Format))
	log.SetOutput(out)
	hexDumpEnabled = cfg.LogHexDump

	log.WithFields(logrus.Fields{
		"level":         cfg.Level,
		"format":        cfg.Format,
		"file":          cfg.FilePath,
		"enableConsole": cfg.EnableConsole,
		"hexDump":       cfg.LogHexDump,
	}).Info("日志系统初始化完成")
	return nil
}

func newFormatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{TimestampFormat: timestampFormat}
	}
	return &logrus.TextFormatter{TimestampFormat: timestampFormat, FullTimestamp: true}
}

// newOutput 组装日志输出，文件和控制台都未配置时退回标准输出
func newOutput(cfg *config.LoggerConfig) (io.Writer, error) {
	var writers []io.Writer
	if cfg.EnableConsole {
		writers = append(writers, os.Stdout)
	}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	switch len(writers) {
	case 0:
		return os.Stdout, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

// Level 返回当前日志级别
func Level() logrus.Level {
	return log.GetLevel()
}

func Info(args ...interface{}) {
	log.Info(args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// WithField 添加字段到日志
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

// WithFields 添加多个字段到日志
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// HexDump 以Debug级别记录帧的十六进制内容，需要开启logHexDump
func HexDump(message string, data []byte, fields logrus.Fields) {
	if !hexDumpEnabled || !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	log.WithFields(fields).WithFields(logrus.Fields{
		"len": len(data),
		"hex": fmt.Sprintf("% X", data),
	}).Debug(message)
}
