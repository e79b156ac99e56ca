package crud

import (
	"errors"
	"fmt"
	"net/http"

	"tourneycompanion/domain"
	apperrors "tourneycompanion/errors"
)

// ServiceError 服务层统一错误：消息、状态码与违规列表
//
// Error() 原样返回 Message，传输层可以直接展示。
type ServiceError struct {
	Code       apperrors.ErrorCode
	Status     int
	Message    string
	Violations []string
	Cause      error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError 创建 404 错误
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Code:       apperrors.ErrCodeNotFound,
		Status:     http.StatusNotFound,
		Message:    message,
		Violations: []string{},
	}
}

// NewValidationError 创建 400 错误，携带完整违规列表
func NewValidationError(message string, violations []string) *ServiceError {
	v := make([]string, len(violations))
	copy(v, violations)
	return &ServiceError{
		Code:       apperrors.ErrCodeValidation,
		Status:     http.StatusBadRequest,
		Message:    message,
		Violations: v,
	}
}

// NewInternalError 创建 500 错误，cause 可为 nil
func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{
		Code:       apperrors.ErrCodeInternal,
		Status:     http.StatusInternalServerError,
		Message:    message,
		Violations: []string{},
		Cause:      cause,
	}
}

const (
	msgValidationFailed = "Can't save item due to validation failures."
	msgSaveFailed       = "Failed to save supplied item."
)

func errRetrieveFailed(id *int64, cause error) *ServiceError {
	return NewInternalError(fmt.Sprintf("Failed to retrieve item with ID %s.", domain.FormatID(id)), cause)
}

func errNotFound(id *int64) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("Unable to find item with ID %s.", domain.FormatID(id)))
}

func errCannotDelete(id *int64) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("Item with ID %s doesn't exist. Cannot delete it.", domain.FormatID(id)))
}

func errDeleteFailed(id *int64, cause error) *ServiceError {
	return NewInternalError(fmt.Sprintf("Failed to delete item with ID %s.", domain.FormatID(id)), cause)
}

// AsServiceError 从错误链中取出 ServiceError
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// StatusOf 返回错误对应的状态码：nil 为 200，ServiceError 取其 Status，
// 带错误码的应用错误按错误码映射，其余一律 500
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if se, ok := AsServiceError(err); ok {
		return se.Status
	}
	return apperrors.HTTPStatus(apperrors.GetErrorCode(err))
}

// ViolationsOf 返回校验违规列表，非校验错误返回空切片
func ViolationsOf(err error) []string {
	if se, ok := AsServiceError(err); ok && se.Violations != nil {
		return se.Violations
	}
	return []string{}
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsValidation(err error) bool {
	return StatusOf(err) == http.StatusBadRequest
}
