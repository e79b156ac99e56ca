package messaging

import (
	"context"
	"sync"
)

// Handler 事件订阅回调
type Handler func(ctx context.Context, evt Event)

// MemoryPublisher 进程内发布者：记录所有事件并同步通知订阅者
type MemoryPublisher struct {
	mu       sync.RWMutex
	events   []Event
	handlers []Handler
}

var _ IPublisher = (*MemoryPublisher)(nil)

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Subscribe 注册订阅者
func (p *MemoryPublisher) Subscribe(h Handler) {
	if h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

func (p *MemoryPublisher) Publish(ctx context.Context, evt Event) error {
	p.mu.Lock()
	p.events = append(p.events, evt)
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	for _, h := range handlers {
		h(ctx, evt)
	}
	return nil
}

// Events 返回已发布事件的副本
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Reset 清空已记录的事件
func (p *MemoryPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
