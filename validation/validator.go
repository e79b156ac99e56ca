// Package validation 提供 DTO 校验：基于 struct tag 的通用校验器，
// 以及供领域规则使用的字段校验函数与违规信息收集器。
package validation

import (
	stdErrors "errors"
	"fmt"
	"regexp"
	"strings"

	"tourneycompanion/errors"
)

var handleRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateRequired 验证必填字段
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s is required.", fieldName))
	}
	return nil
}

// ValidateStringLength 验证字符串长度（按字节计），max 为 0 表示不限
func ValidateStringLength(value, fieldName string, min, max int) error {
	length := len(value)
	if length < min {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s must be at least %d characters.", fieldName, min))
	}
	if max > 0 && length > max {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s must be at most %d characters.", fieldName, max))
	}
	return nil
}

// ValidateIntRange 验证整数范围
func ValidateIntRange(value int, fieldName string, min, max int) error {
	if value < min {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s must be at least %d.", fieldName, min))
	}
	if value > max {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s must be at most %d.", fieldName, max))
	}
	return nil
}

// ValidateEnum 验证枚举值
func ValidateEnum(value, fieldName string, validValues []string) error {
	for _, valid := range validValues {
		if value == valid {
			return nil
		}
	}
	return errors.NewError(errors.ErrCodeValidation,
		fmt.Sprintf("%s must be one of [%s].", fieldName, strings.Join(validValues, " ")))
}

// ValidateHandle 验证昵称：只允许字母、数字和下划线
func ValidateHandle(handle, fieldName string) error {
	if !handleRegex.MatchString(handle) {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s may only contain letters, digits and underscores.", fieldName))
	}
	return nil
}

// Violations 违规信息收集器，保持添加顺序
type Violations struct {
	items []string
}

// Add 追加一条违规信息，空串忽略
func (v *Violations) Add(msg string) {
	if msg == "" {
		return
	}
	v.items = append(v.items, msg)
}

// Addf 格式化后追加
func (v *Violations) Addf(format string, args ...any) {
	v.Add(fmt.Sprintf(format, args...))
}

// Check ok 为 false 时追加 msg
func (v *Violations) Check(ok bool, msg string) {
	if !ok {
		v.Add(msg)
	}
}

// AddError 追加校验函数返回的错误，nil 忽略
func (v *Violations) AddError(err error) {
	if err == nil {
		return
	}
	var appErr *errors.AppError
	if stdErrors.As(err, &appErr) {
		v.Add(appErr.Message())
		return
	}
	v.Add(err.Error())
}

// Len 违规数量
func (v *Violations) Len() int {
	return len(v.items)
}

// List 返回违规列表，没有违规时返回空切片而不是 nil
func (v *Violations) List() []string {
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}
