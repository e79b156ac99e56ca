// Package errors 提供带错误码的应用错误，以及错误码到传输层状态码的映射。
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 预定义错误代码
const (
	// 通用错误代码
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// 业务错误代码
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicate  ErrorCode = "DUPLICATE_ERROR"

	// 基础设施错误代码
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrCodeCache    ErrorCode = "CACHE_ERROR"
	ErrCodeQueue    ErrorCode = "QUEUE_ERROR"
)

// AppError 应用错误实现
type AppError struct {
	code    ErrorCode
	message string
	cause   error
}

// NewError 创建新错误
func NewError(code ErrorCode, message string) *AppError {
	return &AppError{code: code, message: message}
}

// WrapError 包装错误，err 为 nil 时返回 nil
func WrapError(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{code: code, message: message, cause: err}
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Code 获取错误代码
func (e *AppError) Code() ErrorCode { return e.code }

// Message 获取错误消息
func (e *AppError) Message() string { return e.message }

// Unwrap 解包错误（支持 errors.Is / errors.As）
func (e *AppError) Unwrap() error { return e.cause }

// Is 同错误码的 AppError 视为同类错误
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if stdErrors.As(target, &appErr) {
		return e.code == appErr.code
	}
	return false
}

// IsErrorCode 检查错误链上是否存在指定错误码
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// IsNotFound 检查是否为未找到错误
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrCodeNotFound)
}

// GetErrorCode 获取错误代码，非 AppError 返回 ErrCodeInternal，nil 返回空串
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coded interface{ Code() ErrorCode }
	if stdErrors.As(err, &coded) {
		return coded.Code()
	}
	return ErrCodeInternal
}

// HTTPStatus 将错误码映射为传输层状态码
func HTTPStatus(code ErrorCode) int {
	switch code {
	case "":
		return http.StatusOK
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeDuplicate:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusRequestTimeout
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
