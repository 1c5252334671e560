package outbound

import (
	"context"

	"userapi/internal/domain/entity"
)

// EventPublisher defines the outbound port for publishing domain events.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, user *entity.User) error
	PublishUserDeleted(ctx context.Context, userID int64) error
	PublishPostCreated(ctx context.Context, post *entity.Post) error
}

// EventPublisherHealth reports the state of the event connection.
type EventPublisherHealth interface {
	IsConnected() bool
}
