package errors

import (
	"context"
	"fmt"
	"runtime"

	"tourneycompanion/logging"
)

// Wrap 包装错误并以 Debug 级别记录调用位置
// 建议：在 Service/Repository 边界使用，添加业务上下文
func Wrap(ctx context.Context, err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	logging.GetLogger().Debug(ctx, "error wrapped",
		logging.String("message", msg),
		logging.String("error_code", string(code)),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	)

	return WrapError(err, code, msg)
}

// WrapWithLog 包装错误并记录警告日志
func WrapWithLog(ctx context.Context, err error, code ErrorCode, msg string, fields ...logging.Field) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	allFields := append([]logging.Field{
		logging.Error(err),
		logging.String("error_code", string(code)),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	}, fields...)
	logging.GetLogger().Warn(ctx, msg, allFields...)

	return WrapError(err, code, msg)
}

// WrapDatabaseError 包装数据库错误
// 可归类的错误（未找到、唯一键冲突、超时、连接关闭）使用对应错误码，其余归为 DATABASE_ERROR 并记录日志
func WrapDatabaseError(ctx context.Context, err error, operation string, isUniqueViolation func(error) bool) error {
	if err == nil {
		return nil
	}

	if IsNotFound(err) {
		return WrapError(err, ErrCodeNotFound, operation)
	}
	if isUniqueViolation != nil && isUniqueViolation(err) {
		return WrapError(err, ErrCodeDuplicate, operation)
	}
	if normalized, ok := Normalize(err).(*AppError); ok {
		return WrapError(err, normalized.Code(), operation)
	}

	return WrapWithLog(ctx, err, ErrCodeDatabase,
		fmt.Sprintf("database operation failed: %s", operation),
		logging.String("operation", operation),
	)
}
