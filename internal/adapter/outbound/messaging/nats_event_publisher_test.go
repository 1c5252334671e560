package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"userapi/internal/config"
	"userapi/internal/domain/entity"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu         sync.Mutex
	published  []*nats.Msg
	publishErr error
	connected  bool
	drained    int
}

func (f *fakeConn) PublishMsg(msg *nats.Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeConn) IsConnected() bool { return f.connected }

func (f *fakeConn) Drain() error {
	f.drained++
	f.connected = false
	return nil
}

func newTestPublisher(t *testing.T, prefix string) (*NATSEventPublisher, *fakeConn) {
	t.Helper()
	publisher, err := NewNATSEventPublisher(config.NATSConfig{URL: "nats://localhost:4222", SubjectPrefix: prefix})
	require.NoError(t, err)
	conn := &fakeConn{connected: true}
	publisher.conn = conn
	return publisher, conn
}

func TestNewNATSEventPublisher_InvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      config.NATSConfig
		expectedErr string
	}{
		{name: "empty_url", config: config.NATSConfig{}, expectedErr: "NATS URL cannot be empty"},
		{name: "wrong_scheme", config: config.NATSConfig{URL: "http://localhost:4222"}, expectedErr: "invalid NATS URL scheme"},
		{
			name:        "negative_reconnects",
			config:      config.NATSConfig{URL: "nats://localhost:4222", MaxReconnects: -1},
			expectedErr: "max reconnects cannot be negative",
		},
		{
			name:        "negative_reconnect_wait",
			config:      config.NATSConfig{URL: "nats://localhost:4222", ReconnectWait: -time.Second},
			expectedErr: "reconnect wait cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher, err := NewNATSEventPublisher(tt.config)
			assert.Nil(t, publisher)
			assert.EqualError(t, err, tt.expectedErr)
		})
	}
}

func TestNATSEventPublisher_PublishUserCreated(t *testing.T) {
	publisher, conn := newTestPublisher(t, "userapi")
	user := entity.RestoreUser(7, "ada@example.com", nil, time.Now())

	require.NoError(t, publisher.PublishUserCreated(context.Background(), user))

	require.Len(t, conn.published, 1)
	msg := conn.published[0]
	assert.Equal(t, "userapi.users.created", msg.Subject)

	var event UserCreatedEvent
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, int64(7), event.UserID)
	assert.Equal(t, "ada@example.com", event.Email)
	assert.Equal(t, event.MessageID, msg.Header.Get(nats.MsgIdHdr))
	assert.Len(t, event.MessageID, 36)
}

func TestNATSEventPublisher_PublishPostAndDelete(t *testing.T) {
	publisher, conn := newTestPublisher(t, "")
	post := entity.RestorePost(3, "hello", nil, 7, time.Now())

	require.NoError(t, publisher.PublishPostCreated(context.Background(), post))
	require.NoError(t, publisher.PublishUserDeleted(context.Background(), 7))

	require.Len(t, conn.published, 2)
	assert.Equal(t, SubjectPostCreated, conn.published[0].Subject)
	assert.Equal(t, SubjectUserDeleted, conn.published[1].Subject)

	var event PostCreatedEvent
	require.NoError(t, json.Unmarshal(conn.published[0].Data, &event))
	assert.Equal(t, int64(3), event.PostID)
	assert.Equal(t, int64(7), event.AuthorID)
}

func TestNATSEventPublisher_PublishErrors(t *testing.T) {
	t.Run("publish_failure_is_wrapped", func(t *testing.T) {
		publisher, conn := newTestPublisher(t, "")
		conn.publishErr = errors.New("nats: connection closed")

		err := publisher.PublishUserDeleted(context.Background(), 1)

		assert.ErrorIs(t, err, conn.publishErr)
		assert.Contains(t, err.Error(), "users.deleted")
	})

	t.Run("cancelled_context", func(t *testing.T) {
		publisher, conn := newTestPublisher(t, "")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, publisher.PublishUserDeleted(ctx, 1), context.Canceled)
		assert.Empty(t, conn.published)
	})

	t.Run("not_connected", func(t *testing.T) {
		publisher, err := NewNATSEventPublisher(config.NATSConfig{URL: "nats://localhost:4222"})
		require.NoError(t, err)

		assert.EqualError(t, publisher.PublishUserDeleted(context.Background(), 1), "publish failed: not connected to NATS")
		assert.False(t, publisher.IsConnected())
	})
}

func TestNATSEventPublisher_Close(t *testing.T) {
	publisher, conn := newTestPublisher(t, "")
	assert.True(t, publisher.IsConnected())

	require.NoError(t, publisher.Close())
	require.NoError(t, publisher.Close())

	assert.Equal(t, 1, conn.drained)
	assert.False(t, publisher.IsConnected())
}

func TestNATSEventPublisher_CallbackPanics(t *testing.T) {
	t.Run("routed to the panic handler", func(t *testing.T) {
		publisher, _ := newTestPublisher(t, "")
		var got any
		publisher.SetPanicHandler(func(v any) { got = v })

		assert.NotPanics(t, func() {
			publisher.runCallback(func() { panic("handler exploded") })
		})
		assert.Equal(t, "handler exploded", got)
	})

	t.Run("re-raised without a handler", func(t *testing.T) {
		publisher, _ := newTestPublisher(t, "")

		assert.PanicsWithValue(t, "handler exploded", func() {
			publisher.runCallback(func() { panic("handler exploded") })
		})
	})

	t.Run("quiet callback does not call the handler", func(t *testing.T) {
		publisher, _ := newTestPublisher(t, "")
		called := false
		publisher.SetPanicHandler(func(any) { called = true })

		publisher.runCallback(func() {})
		assert.False(t, called)
	})
}

func TestLogEventPublisher(t *testing.T) {
	publisher := LogEventPublisher{}
	ctx := context.Background()

	assert.NoError(t, publisher.PublishUserCreated(ctx, entity.RestoreUser(1, "a@b.c", nil, time.Now())))
	assert.NoError(t, publisher.PublishUserDeleted(ctx, 1))
	assert.NoError(t, publisher.PublishPostCreated(ctx, entity.RestorePost(1, "t", nil, 1, time.Now())))
}
