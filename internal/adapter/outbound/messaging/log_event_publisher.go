package messaging

import (
	"context"

	"userapi/internal/application/common/slogger"
	"userapi/internal/domain/entity"
	"userapi/internal/port/outbound"
)

// LogEventPublisher records events in the application log. It is used when NATS is disabled.
type LogEventPublisher struct{}

var _ outbound.EventPublisher = LogEventPublisher{}

// PublishUserCreated logs the event.
func (LogEventPublisher) PublishUserCreated(ctx context.Context, user *entity.User) error {
	slogger.Info(ctx, "User created", slogger.Fields{"subject": SubjectUserCreated, "user_id": user.ID()})
	return nil
}

// PublishUserDeleted logs the event.
func (LogEventPublisher) PublishUserDeleted(ctx context.Context, userID int64) error {
	slogger.Info(ctx, "User deleted", slogger.Fields{"subject": SubjectUserDeleted, "user_id": userID})
	return nil
}

// PublishPostCreated logs the event.
func (LogEventPublisher) PublishPostCreated(ctx context.Context, post *entity.Post) error {
	slogger.Info(ctx, "Post created", slogger.Fields{
		"subject":   SubjectPostCreated,
		"post_id":   post.ID(),
		"author_id": post.AuthorID(),
	})
	return nil
}
