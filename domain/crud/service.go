package crud

import (
	"context"

	"tourneycompanion/domain"
	"tourneycompanion/logging"
)

// IService 面向调用方的 CRUD 服务接口
type IService[D domain.IRecord] interface {
	GetByID(ctx context.Context, id *int64) (D, error)
	Create(ctx context.Context, dto D) (D, error)
	Update(ctx context.Context, dto D) (D, error)
	Delete(ctx context.Context, id *int64) error
}

// Option 服务选项
type Option func(*options)

type options struct {
	uow    IUnitOfWork
	logger logging.Logger
}

// WithUnitOfWork 每个公开操作都在 uow.Do 内执行
func WithUnitOfWork(uow IUnitOfWork) Option {
	return func(o *options) {
		if uow != nil {
			o.uow = uow
		}
	}
}

// WithLogger 指定日志记录器，默认使用全局 Logger
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// CRUDService 通用 CRUD 服务
//
// 只持有仓储、映射器与校验器，调用之间不保留任何状态，并发安全性取决于仓储。
type CRUDService[E, D domain.IRecord] struct {
	repository IRepository[E]
	mapper     IMapper[E, D]
	validator  IValidator[D]
	uow        IUnitOfWork
	logger     logging.Logger
}

var _ IService[*domain.DTO] = (*CRUDService[*domain.DTO, *domain.DTO])(nil)

// NewCRUDService 创建通用 CRUD 服务
func NewCRUDService[E, D domain.IRecord](repo IRepository[E], mapper IMapper[E, D], validator IValidator[D], opts ...Option) *CRUDService[E, D] {
	o := options{uow: directUnitOfWork{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Component("crud")
	}
	if validator == nil {
		validator = NoValidation[D]()
	}
	return &CRUDService[E, D]{
		repository: repo,
		mapper:     mapper,
		validator:  validator,
		uow:        o.uow,
		logger:     o.logger,
	}
}

// GetByID 按 ID 读取。id 为 nil 时不查询，直接返回 500。
func (s *CRUDService[E, D]) GetByID(ctx context.Context, id *int64) (D, error) {
	var result D
	if id == nil {
		return result, s.fail(ctx, "get", id, errRetrieveFailed(nil, nil))
	}
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		entity, found, err := s.repository.FindByID(ctx, *id)
		if err != nil {
			return errRetrieveFailed(id, err)
		}
		if !found {
			return errNotFound(id)
		}
		result = s.mapper.FromEntity(entity)
		var noDTO D
		if result == noDTO {
			return errRetrieveFailed(id, nil)
		}
		return nil
	})
	if err != nil {
		var zero D
		return zero, s.fail(ctx, "get", id, err)
	}
	return result, nil
}

// Create 清除调用方提供的 ID 后保存，返回的 ID 总是仓储分配的
func (s *CRUDService[E, D]) Create(ctx context.Context, dto D) (D, error) {
	var zero D
	if dto != zero {
		dto.SetID(nil)
	}
	return s.save(ctx, dto, OperationCreate)
}

// Update 按原样保留 ID 保存，插入还是更新由仓储决定
func (s *CRUDService[E, D]) Update(ctx context.Context, dto D) (D, error) {
	return s.save(ctx, dto, OperationUpdate)
}

// Delete 删除记录。id 为 nil 与记录不存在同样返回 404。
func (s *CRUDService[E, D]) Delete(ctx context.Context, id *int64) error {
	if id == nil {
		return s.fail(ctx, "delete", id, errCannotDelete(nil))
	}
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		entity, found, err := s.repository.FindByID(ctx, *id)
		if err != nil {
			return errDeleteFailed(id, err)
		}
		if !found {
			return errCannotDelete(id)
		}
		if err := s.repository.Delete(ctx, entity); err != nil {
			return errDeleteFailed(id, err)
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "delete", id, err)
	}
	s.logger.Debug(ctx, "item deleted", logging.String("id", domain.FormatID(id)))
	return nil
}

func (s *CRUDService[E, D]) save(ctx context.Context, dto D, op Operation) (D, error) {
	var zero D
	opName := "create"
	if op == OperationUpdate {
		opName = "update"
	}

	if violations := s.validator.Validate(dto, op); len(violations) > 0 {
		return zero, s.fail(ctx, opName, idOf(dto), NewValidationError(msgValidationFailed, violations))
	}
	if dto == zero {
		return zero, s.fail(ctx, opName, nil, NewInternalError(msgSaveFailed, nil))
	}

	var result D
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		entity := s.mapper.ToEntity(dto)
		var noEntity E
		if entity == noEntity {
			return NewInternalError(msgSaveFailed, nil)
		}
		persisted, err := s.repository.Save(ctx, entity)
		if err != nil {
			return NewInternalError(msgSaveFailed, err)
		}
		if persisted == noEntity {
			return NewInternalError(msgSaveFailed, nil)
		}
		result = s.mapper.FromEntity(persisted)
		if result == zero {
			return NewInternalError(msgSaveFailed, nil)
		}
		return nil
	})
	if err != nil {
		return zero, s.fail(ctx, opName, idOf(dto), err)
	}

	s.logger.Debug(ctx, "item saved",
		logging.String("operation", opName),
		logging.String("id", domain.FormatID(idOf(result))))
	return result, nil
}

// fail 记录失败并返回 ServiceError；非 ServiceError（例如工作单元提交失败）按 500 包装
func (s *CRUDService[E, D]) fail(ctx context.Context, operation string, id *int64, err error) error {
	se, ok := AsServiceError(err)
	if !ok {
		se = NewInternalError(msgSaveFailed, err)
		switch operation {
		case "get":
			se = errRetrieveFailed(id, err)
		case "delete":
			se = errDeleteFailed(id, err)
		}
	}
	fields := []logging.Field{
		logging.String("operation", operation),
		logging.String("id", domain.FormatID(id)),
		logging.Int("status", se.Status),
	}
	if len(se.Violations) > 0 {
		fields = append(fields, logging.Strings("violations", se.Violations))
	}
	if se.Cause != nil {
		fields = append(fields, logging.Error(se.Cause))
	}
	s.logger.Debug(ctx, se.Message, fields...)
	return se
}

func idOf[D domain.IRecord](dto D) *int64 {
	var zero D
	if dto == zero {
		return nil
	}
	return dto.GetID()
}
