// Package metrics 为 CRUD 服务提供 Prometheus 指标
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
)

const (
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Collectors 一组 CRUD 指标，可被多个资源共享
type Collectors struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewCollectors 创建并注册指标；已注册时复用已有的收集器
func NewCollectors(registerer prometheus.Registerer, namespace string) (*Collectors, error) {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crud_operations_total",
			Help:      "Total number of CRUD operations by outcome status",
		},
		[]string{"resource", "operation", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crud_operation_duration_seconds",
			Help:      "CRUD operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"resource", "operation"},
	)

	if registerer == nil {
		return &Collectors{Operations: operations, Duration: duration}, nil
	}

	var err error
	if operations, err = register(registerer, operations); err != nil {
		return nil, err
	}
	if duration, err = register(registerer, duration); err != nil {
		return nil, err
	}
	return &Collectors{Operations: operations, Duration: duration}, nil
}

func register[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Service 记录每个操作的次数与耗时
type Service[D domain.IRecord] struct {
	inner      crud.IService[D]
	resource   string
	collectors *Collectors
}

var _ crud.IService[*domain.DTO] = (*Service[*domain.DTO])(nil)

// NewService 包装服务，指标注册到 registerer（nil 时不注册）
func NewService[D domain.IRecord](inner crud.IService[D], registerer prometheus.Registerer, namespace, resource string) (*Service[D], error) {
	collectors, err := NewCollectors(registerer, namespace)
	if err != nil {
		return nil, err
	}
	return Wrap(inner, collectors, resource), nil
}

// Wrap 使用已有的指标包装服务
func Wrap[D domain.IRecord](inner crud.IService[D], collectors *Collectors, resource string) *Service[D] {
	return &Service[D]{inner: inner, resource: resource, collectors: collectors}
}

func (s *Service[D]) GetByID(ctx context.Context, id *int64) (D, error) {
	start := time.Now()
	dto, err := s.inner.GetByID(ctx, id)
	s.track(opGet, start, err)
	return dto, err
}

func (s *Service[D]) Create(ctx context.Context, dto D) (D, error) {
	start := time.Now()
	out, err := s.inner.Create(ctx, dto)
	s.track(opCreate, start, err)
	return out, err
}

func (s *Service[D]) Update(ctx context.Context, dto D) (D, error) {
	start := time.Now()
	out, err := s.inner.Update(ctx, dto)
	s.track(opUpdate, start, err)
	return out, err
}

func (s *Service[D]) Delete(ctx context.Context, id *int64) error {
	start := time.Now()
	err := s.inner.Delete(ctx, id)
	s.track(opDelete, start, err)
	return err
}

// track 状态标签取 crud.StatusOf(err)
func (s *Service[D]) track(operation string, start time.Time, err error) {
	s.collectors.Duration.WithLabelValues(s.resource, operation).Observe(time.Since(start).Seconds())
	s.collectors.Operations.WithLabelValues(s.resource, operation, strconv.Itoa(crud.StatusOf(err))).Inc()
}
