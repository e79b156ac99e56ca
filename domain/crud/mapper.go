package crud

import "tourneycompanion/domain"

// IMapper 实体与 DTO 之间的双向转换，除 ID 外两个方向应互为逆运算
type IMapper[E, D domain.IRecord] interface {
	ToEntity(dto D) E
	FromEntity(entity E) D
}

// MapperFuncs 用两个函数拼出 IMapper
type MapperFuncs[E, D domain.IRecord] struct {
	To   func(dto D) E
	From func(entity E) D
}

func (m MapperFuncs[E, D]) ToEntity(dto D) E {
	if m.To == nil {
		var zero E
		return zero
	}
	return m.To(dto)
}

func (m MapperFuncs[E, D]) FromEntity(entity E) D {
	if m.From == nil {
		var zero D
		return zero
	}
	return m.From(entity)
}
