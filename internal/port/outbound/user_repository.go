package outbound

import (
	"context"

	"userapi/internal/domain/entity"
)

// UserRepository defines the outbound port for user persistence.
// Failures are returned as *StorageFailure.
type UserRepository interface {
	Save(ctx context.Context, user *entity.User) error
	// FindByID returns (nil, nil) when no user has the ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}

// PostRepository defines the outbound port for post persistence.
type PostRepository interface {
	Save(ctx context.Context, post *entity.Post) error
	FindByAuthorID(ctx context.Context, authorID int64) ([]*entity.Post, error)
}

// DatabaseHealth reports whether the storage connection is usable.
type DatabaseHealth interface {
	IsHealthy(ctx context.Context) bool
}
