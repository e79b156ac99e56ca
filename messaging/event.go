// Package messaging 发布记录生命周期事件（created / updated / deleted）
package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// EventType 生命周期事件类型
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event 生命周期事件
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Resource  string          `json:"resource"`
	EntityID  int64           `json:"entity_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEvent 创建事件，payload 为 nil 时不携带数据
func NewEvent(resource string, eventType EventType, entityID int64, payload any) (Event, error) {
	evt := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Resource:  resource,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		evt.Payload = data
	}
	return evt, nil
}

// Subject 事件主题：<prefix>.<resource>.<type>，prefix 为空时省略
func (e Event) Subject(prefix string) string {
	parts := make([]string, 0, 3)
	if p := strings.Trim(prefix, "."); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, e.Resource, string(e.Type))
	return strings.Join(parts, ".")
}

// IPublisher 事件发布者
type IPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// PublisherFunc 函数适配器
type PublisherFunc func(ctx context.Context, evt Event) error

func (f PublisherFunc) Publish(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}
