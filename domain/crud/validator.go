package crud

import "tourneycompanion/domain"

// Operation 保存操作类型，决定适用哪些校验规则
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
)

func (o Operation) String() string { return string(o) }

// IValidator 校验 DTO，返回按顺序排列的违规信息，空切片表示通过
type IValidator[D domain.IRecord] interface {
	Validate(dto D, op Operation) []string
}

// ValidatorFunc 函数适配器
type ValidatorFunc[D domain.IRecord] func(dto D, op Operation) []string

func (f ValidatorFunc[D]) Validate(dto D, op Operation) []string {
	return f(dto, op)
}

// NoValidation 不做任何校验
func NoValidation[D domain.IRecord]() IValidator[D] {
	return ValidatorFunc[D](func(D, Operation) []string { return nil })
}
