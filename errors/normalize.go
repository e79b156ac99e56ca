package errors

import (
	"context"
	"database/sql"
	stdErrors "errors"
)

// Normalize 将标准库与驱动层的常见错误规范化为 AppError。
//
// 注意：
//   - 已经携带错误码的错误原样返回；
//   - 未识别的错误保持原样，不强行包装，交由调用方决定是否 Wrap。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var coded interface{ Code() ErrorCode }
	if stdErrors.As(err, &coded) {
		return err
	}

	switch {
	case stdErrors.Is(err, sql.ErrNoRows):
		return WrapError(err, ErrCodeNotFound, "record not found")
	case stdErrors.Is(err, context.DeadlineExceeded):
		return WrapError(err, ErrCodeTimeout, "operation timed out")
	case stdErrors.Is(err, sql.ErrConnDone):
		return WrapError(err, ErrCodeServiceUnavailable, "database connection closed")
	}

	return err
}
