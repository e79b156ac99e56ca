package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourneycompanion/data/memory"
	"tourneycompanion/domain"
	"tourneycompanion/domain/entity"
	apperrors "tourneycompanion/errors"
)

type team struct {
	entity.Entity
	Name string `json:"name"`
}

// fakeConn 记录发布内容的 NATS 连接替身
type fakeConn struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("team", EventCreated, 7, map[string]string{"name": "blue"})
	require.NoError(t, err)

	_, err = uuid.Parse(evt.ID)
	assert.NoError(t, err)
	assert.Equal(t, EventCreated, evt.Type)
	assert.Equal(t, int64(7), evt.EntityID)
	assert.False(t, evt.Timestamp.IsZero())
	assert.JSONEq(t, `{"name":"blue"}`, string(evt.Payload))

	evt, err = NewEvent("team", EventDeleted, 7, nil)
	require.NoError(t, err)
	assert.Nil(t, evt.Payload)

	_, err = NewEvent("team", EventCreated, 1, make(chan int))
	assert.Error(t, err)
}

func TestEvent_Subject(t *testing.T) {
	evt := Event{Resource: "player", Type: EventUpdated}
	assert.Equal(t, "tourney.player.updated", evt.Subject("tourney"))
	assert.Equal(t, "tourney.player.updated", evt.Subject("tourney."))
	assert.Equal(t, "player.updated", evt.Subject(""))
}

func TestMemoryPublisher(t *testing.T) {
	pub := NewMemoryPublisher()
	var seen []EventType
	pub.Subscribe(func(_ context.Context, evt Event) { seen = append(seen, evt.Type) })
	pub.Subscribe(nil)

	ctx := context.Background()
	require.NoError(t, pub.Publish(ctx, Event{Type: EventCreated}))
	require.NoError(t, pub.Publish(ctx, Event{Type: EventDeleted}))

	assert.Len(t, pub.Events(), 2)
	assert.Equal(t, []EventType{EventCreated, EventDeleted}, seen)

	pub.Reset()
	assert.Empty(t, pub.Events())
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "tourney")

	evt, err := NewEvent("team", EventUpdated, 3, &team{Name: "red"})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), evt))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "tourney.team.updated", conn.subjects[0])

	var decoded Event
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, int64(3), decoded.EntityID)
	assert.NoError(t, pub.Close())
}

func TestNATSPublisher_Failures(t *testing.T) {
	conn := &fakeConn{err: errors.New("connection lost")}
	pub := NewNATSPublisher(conn, "tourney")

	err := pub.Publish(context.Background(), Event{Resource: "team", Type: EventCreated})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorCode(err, apperrors.ErrCodeQueue))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, Event{}), context.Canceled)

	assert.Error(t, NewNATSPublisher(nil, "").Publish(context.Background(), Event{}))
}

func TestRepository_PublishesLifecycle(t *testing.T) {
	ctx := context.Background()
	pub := NewMemoryPublisher()
	repo := NewRepository[*team](memory.NewRepository[*team](), pub, "team")

	created, err := repo.Save(ctx, &team{Name: "blue"})
	require.NoError(t, err)
	require.NotNil(t, created.ID)

	created.Name = "navy"
	_, err = repo.Save(ctx, created)
	require.NoError(t, err)

	got, found, err := repo.FindByID(ctx, *created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "navy", got.Name)

	require.NoError(t, repo.Delete(ctx, got))

	events := pub.Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventCreated, events[0].Type)
	assert.Equal(t, EventUpdated, events[1].Type)
	assert.Equal(t, EventDeleted, events[2].Type)
	for _, evt := range events {
		assert.Equal(t, "team", evt.Resource)
		assert.Equal(t, *created.ID, evt.EntityID)
	}
	assert.Contains(t, string(events[1].Payload), "navy")
}

func TestRepository_UpsertPublishesCreated(t *testing.T) {
	ctx := context.Background()
	pub := NewMemoryPublisher()
	repo := NewRepository[*team](memory.NewRepository[*team](), pub, "team")

	// 仓储按未知 ID 插入，事件应为 created
	fresh := &team{Name: "orange"}
	fresh.ID = domain.ID(42)
	_, err := repo.Save(ctx, fresh)
	require.NoError(t, err)

	again := &team{Name: "amber"}
	again.ID = domain.ID(42)
	_, err = repo.Save(ctx, again)
	require.NoError(t, err)

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventCreated, events[0].Type)
	assert.Equal(t, int64(42), events[0].EntityID)
	assert.Equal(t, EventUpdated, events[1].Type)
}

func TestRepository_NoEventOnFailure(t *testing.T) {
	ctx := context.Background()
	pub := NewMemoryPublisher()
	repo := NewRepository[*team](memory.NewRepository[*team](), pub, "team")

	missing := &team{}
	missing.ID = domain.ID(99)
	assert.Error(t, repo.Delete(ctx, missing))

	_, err := repo.Save(ctx, nil)
	assert.Error(t, err)
	assert.Empty(t, pub.Events())
}

func TestRepository_PublishFailureIgnored(t *testing.T) {
	ctx := context.Background()
	failing := PublisherFunc(func(context.Context, Event) error { return errors.New("broker down") })
	repo := NewRepository[*team](memory.NewRepository[*team](), failing, "team")

	saved, err := repo.Save(ctx, &team{Name: "green"})
	require.NoError(t, err)
	require.NotNil(t, saved.ID)
	assert.NoError(t, repo.Delete(ctx, saved))
}
