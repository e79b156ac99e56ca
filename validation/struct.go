package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
)

const (
	msgNoDTO          = "No DTO Provided."
	msgIDRequired     = "ID is required for update."
	handleTag         = "handle"
	defaultFieldLabel = "value"
)

// Rule 领域规则，在 struct tag 校验之后按注册顺序执行
type Rule[D domain.IRecord] func(dto D, op crud.Operation) []string

// Option 校验器选项
type Option[D domain.IRecord] func(*StructValidator[D])

// WithRule 追加领域规则
func WithRule[D domain.IRecord](rule Rule[D]) Option[D] {
	return func(v *StructValidator[D]) {
		if rule != nil {
			v.rules = append(v.rules, rule)
		}
	}
}

// WithValidate 使用外部构建的 *validator.Validate（需自行注册标签名函数）
func WithValidate[D domain.IRecord](validate *validator.Validate) Option[D] {
	return func(v *StructValidator[D]) {
		if validate != nil {
			v.validate = validate
		}
	}
}

// StructValidator 基于 go-playground/validator 的 DTO 校验器，实现 crud.IValidator
type StructValidator[D domain.IRecord] struct {
	validate *validator.Validate
	rules    []Rule[D]
}

var _ crud.IValidator[*domain.DTO] = (*StructValidator[*domain.DTO])(nil)

// NewStructValidator 创建校验器
func NewStructValidator[D domain.IRecord](opts ...Option[D]) *StructValidator[D] {
	v := &StructValidator[D]{validate: NewValidate()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewValidate 创建预置配置的 *validator.Validate：
// 字段名取 json 标签，并注册 handle 标签
func NewValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation(handleTag, validateHandle); err != nil {
		panic(fmt.Sprintf("failed to register %s validator: %v", handleTag, err))
	}
	return v
}

// Validate 实现 crud.IValidator
func (v *StructValidator[D]) Validate(dto D, op crud.Operation) []string {
	var zero D
	if dto == zero {
		return []string{msgNoDTO}
	}

	var out Violations
	if op == crud.OperationUpdate && dto.GetID() == nil {
		out.Add(msgIDRequired)
	}

	if err := v.validate.Struct(dto); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				out.Add(describe(fe))
			}
		} else {
			out.AddError(err)
		}
	}

	for _, rule := range v.rules {
		for _, msg := range rule(dto, op) {
			out.Add(msg)
		}
	}
	return out.List()
}

// describe 将字段错误渲染为可读句子
func describe(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		field = defaultFieldLabel
	}
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "min":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s.", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s.", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s].", field, fe.Param())
	case handleTag:
		return fmt.Sprintf("%s may only contain letters, digits and underscores.", field)
	default:
		return fmt.Sprintf("%s failed the '%s' check.", field, fe.Tag())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func validateHandle(fl validator.FieldLevel) bool {
	return handleRegex.MatchString(fl.Field().String())
}
