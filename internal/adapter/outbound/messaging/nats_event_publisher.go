// Package messaging publishes domain events over NATS.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"userapi/internal/application/common/slogger"
	"userapi/internal/config"
	"userapi/internal/domain/entity"
	"userapi/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const natsConnectionTimeout = 5 * time.Second

// Event subjects, relative to the configured prefix.
const (
	SubjectUserCreated = "users.created"
	SubjectUserDeleted = "users.deleted"
	SubjectPostCreated = "posts.created"
)

// UserCreatedEvent is published after a user row is inserted.
type UserCreatedEvent struct {
	MessageID  string    `json:"message_id"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserDeletedEvent is published after a user and its posts are removed.
type UserDeletedEvent struct {
	MessageID  string    `json:"message_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PostCreatedEvent is published after a post row is inserted.
type PostCreatedEvent struct {
	MessageID  string    `json:"message_id"`
	PostID     int64     `json:"post_id"`
	AuthorID   int64     `json:"author_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

// natsConn is the subset of *nats.Conn the publisher uses.
type natsConn interface {
	PublishMsg(msg *nats.Msg) error
	IsConnected() bool
	Drain() error
}

// NATSEventPublisher implements outbound.EventPublisher on a core NATS connection.
type NATSEventPublisher struct {
	config  config.NATSConfig
	mu      sync.RWMutex
	conn    natsConn
	onPanic func(any)
}

var (
	_ outbound.EventPublisher       = (*NATSEventPublisher)(nil)
	_ outbound.EventPublisherHealth = (*NATSEventPublisher)(nil)
)

// NewNATSEventPublisher validates cfg and returns an unconnected publisher.
func NewNATSEventPublisher(cfg config.NATSConfig) (*NATSEventPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.URL, "nats://") {
		return nil, errors.New("invalid NATS URL scheme")
	}
	if cfg.MaxReconnects < 0 {
		return nil, errors.New("max reconnects cannot be negative")
	}
	if cfg.ReconnectWait < 0 {
		return nil, errors.New("reconnect wait cannot be negative")
	}
	return &NATSEventPublisher{config: cfg}, nil
}

// SetPanicHandler routes panics raised in connection callbacks, which run on goroutines
// owned by the NATS client, to fn. Must be called before Connect.
func (n *NATSEventPublisher) SetPanicHandler(fn func(any)) {
	n.onPanic = fn
}

func (n *NATSEventPublisher) runCallback(fn func()) {
	defer func() {
		if v := recover(); v != nil {
			if n.onPanic == nil {
				panic(v)
			}
			n.onPanic(v)
		}
	}()
	fn()
}

// Connect establishes the connection to the NATS server.
func (n *NATSEventPublisher) Connect() error {
	opts := []nats.Option{
		nats.Name("userapi"),
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(natsConnectionTimeout),
		nats.ReconnectHandler(func(c *nats.Conn) {
			n.runCallback(func() {
				slogger.InfoNoCtx("NATS connection restored", slogger.Field("url", c.ConnectedUrl()))
			})
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			n.runCallback(func() {
				if err != nil {
					slogger.ErrorWithErrorNoCtx(err, "NATS connection lost", nil)
				}
			})
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n.mu.Lock()
	n.conn = conn
	n.mu.Unlock()
	return nil
}

// Close drains pending publishes and closes the connection. Safe to call more than once.
func (n *NATSEventPublisher) Close() error {
	n.mu.Lock()
	conn := n.conn
	n.conn = nil
	n.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (n *NATSEventPublisher) IsConnected() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.conn != nil && n.conn.IsConnected()
}

// PublishUserCreated publishes a UserCreatedEvent.
func (n *NATSEventPublisher) PublishUserCreated(ctx context.Context, user *entity.User) error {
	id := uuid.New().String()
	return n.publish(ctx, SubjectUserCreated, id, UserCreatedEvent{
		MessageID:  id,
		UserID:     user.ID(),
		Email:      user.Email(),
		OccurredAt: time.Now().UTC(),
	})
}

// PublishUserDeleted publishes a UserDeletedEvent.
func (n *NATSEventPublisher) PublishUserDeleted(ctx context.Context, userID int64) error {
	id := uuid.New().String()
	return n.publish(ctx, SubjectUserDeleted, id, UserDeletedEvent{
		MessageID:  id,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishPostCreated publishes a PostCreatedEvent.
func (n *NATSEventPublisher) PublishPostCreated(ctx context.Context, post *entity.Post) error {
	id := uuid.New().String()
	return n.publish(ctx, SubjectPostCreated, id, PostCreatedEvent{
		MessageID:  id,
		PostID:     post.ID(),
		AuthorID:   post.AuthorID(),
		Title:      post.Title(),
		OccurredAt: time.Now().UTC(),
	})
}

// Subject returns the fully qualified subject for an event name.
func (n *NATSEventPublisher) Subject(event string) string {
	if n.config.SubjectPrefix == "" {
		return event
	}
	return n.config.SubjectPrefix + "." + event
}

func (n *NATSEventPublisher) publish(ctx context.Context, event, messageID string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.RLock()
	conn := n.conn
	n.mu.RUnlock()
	if conn == nil {
		return errors.New("publish failed: not connected to NATS")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event, err)
	}

	msg := nats.NewMsg(n.Subject(event))
	msg.Header.Set(nats.MsgIdHdr, messageID)
	msg.Data = data

	if err := conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event, err)
	}

	slogger.Debug(ctx, "Event published", slogger.Fields{
		"subject":    msg.Subject,
		"message_id": messageID,
	})
	return nil
}
