package messaging

import (
	"context"
	"time"

	"tourneycompanion/logging"
)

// RetryConfig 发布重试配置
type RetryConfig struct {
	MaxAttempts   int           // 最大尝试次数（包括首次）
	InitialDelay  time.Duration // 初始退避延迟
	BackoffFactor float64       // 指数退避倍数
	MaxDelay      time.Duration // 最大延迟
}

// DefaultRetryConfig 3 次尝试，10ms 起指数退避，上限 1s
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  10 * time.Millisecond,
		BackoffFactor: 2.0,
		MaxDelay:      time.Second,
	}
}

// delay 第 attempt 次失败后的等待时间
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= c.BackoffFactor
	}
	if c.MaxDelay > 0 && time.Duration(d) > c.MaxDelay {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// RetryPublisher 失败时按指数退避重试的发布者
type RetryPublisher struct {
	inner  IPublisher
	cfg    RetryConfig
	logger logging.Logger
}

var _ IPublisher = (*RetryPublisher)(nil)

// NewRetryPublisher MaxAttempts<=1 时不重试
func NewRetryPublisher(inner IPublisher, cfg RetryConfig) *RetryPublisher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryPublisher{inner: inner, cfg: cfg, logger: logging.Component("events.retry")}
}

func (p *RetryPublisher) Publish(ctx context.Context, evt Event) error {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = p.inner.Publish(ctx, evt)
		if lastErr == nil {
			return nil
		}
		if attempt == p.cfg.MaxAttempts {
			break
		}

		wait := p.cfg.delay(attempt)
		p.logger.Debug(ctx, "event publish retry",
			logging.String("event_id", evt.ID),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", wait),
			logging.Error(lastErr))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}
