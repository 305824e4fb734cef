package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 表示错误码类型
type ErrorCode int

// 定义应用程序的错误码
const (
	// 通用错误
	ErrUnknown ErrorCode = iota + 1000
	ErrInvalidParameter

	// 协议相关错误
	ErrProtocolParseFailed
	ErrProtocolInvalidHeader
	ErrProtocolInvalidChecksum
	ErrProtocolPackageTooLarge
	ErrProtocolFrameTimeout
	ErrProtocolInvalidCommand

	// 通信相关错误
	ErrCommandTimeout
	ErrConnectionFailed

	// 存储相关错误
	ErrStorageLoadFailed
	ErrStorageSaveFailed
	ErrStorageCorrupted
	ErrStorageNotFound

	// Redis缓存相关错误
	ErrRedisConnectionFailed
	ErrRedisOperationFailed

	// 事件发布相关错误
	ErrPublishFailed

	// 管理接口相关错误
	ErrExportFailed
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:                 "unknown",
	ErrInvalidParameter:        "invalid_parameter",
	ErrProtocolParseFailed:     "protocol_parse_failed",
	ErrProtocolInvalidHeader:   "protocol_invalid_header",
	ErrProtocolInvalidChecksum: "protocol_invalid_checksum",
	ErrProtocolPackageTooLarge: "protocol_package_too_large",
	ErrProtocolFrameTimeout:    "protocol_frame_timeout",
	ErrProtocolInvalidCommand:  "protocol_invalid_command",
	ErrCommandTimeout:          "command_timeout",
	ErrConnectionFailed:        "connection_failed",
	ErrStorageLoadFailed:       "storage_load_failed",
	ErrStorageSaveFailed:       "storage_save_failed",
	ErrStorageCorrupted:        "storage_corrupted",
	ErrStorageNotFound:         "storage_not_found",
	ErrRedisConnectionFailed:   "redis_connection_failed",
	ErrRedisOperationFailed:    "redis_operation_failed",
	ErrPublishFailed:           "publish_failed",
	ErrExportFailed:            "export_failed",
}

// String 返回错误码名称
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code_%d", int(c))
}

// AppError 应用程序自定义错误类型
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 支持Go 1.13+的错误包装
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New 创建一个新的AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装一个已有的错误
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsErrCode 检查错误链中是否存在指定错误码的AppError
func IsErrCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// CodeOf 返回错误链中第一个AppError的错误码，没有则返回ErrUnknown
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrUnknown
}
