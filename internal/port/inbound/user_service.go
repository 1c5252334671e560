// Package inbound defines the inbound ports (interfaces) for the application layer.
// These ports represent the entry points into the application's core business logic.
package inbound

import (
	"context"

	"userapi/internal/application/dto"
)

// UserService defines the inbound port for user and post operations.
type UserService interface {
	// FindUser returns nil, nil when no user has the given id.
	FindUser(ctx context.Context, id int64) (*dto.UserResponse, error)
	ListUserPosts(ctx context.Context, userID int64) ([]dto.PostResponse, error)
	CreateUser(ctx context.Context, request dto.CreateUserRequest) (*dto.UserResponse, error)
	CreatePost(ctx context.Context, userID int64, request dto.CreatePostRequest) (*dto.PostResponse, error)
	DeleteUser(ctx context.Context, id int64) error
}

// HealthService defines the inbound port for health check operations.
type HealthService interface {
	GetHealth(ctx context.Context) (*dto.HealthResponse, error)
}
