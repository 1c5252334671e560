package service

import (
	"context"

	"userapi/internal/application/common"
	"userapi/internal/application/common/slogger"
	"userapi/internal/application/dto"
	"userapi/internal/domain/entity"
	"userapi/internal/port/inbound"
	"userapi/internal/port/outbound"
)

// UserService handles user and post operations. Storage failures are returned wrapped in
// common.ServiceError and left for the HTTP layer to translate.
type UserService struct {
	users     outbound.UserRepository
	posts     outbound.PostRepository
	publisher outbound.EventPublisher
}

var _ inbound.UserService = (*UserService)(nil)

// NewUserService creates a new instance of UserService.
func NewUserService(
	users outbound.UserRepository,
	posts outbound.PostRepository,
	publisher outbound.EventPublisher,
) *UserService {
	if users == nil {
		panic("users repository cannot be nil")
	}
	if posts == nil {
		panic("posts repository cannot be nil")
	}
	if publisher == nil {
		panic("publisher cannot be nil")
	}
	return &UserService{users: users, posts: posts, publisher: publisher}
}

// FindUser returns the user without posts, or nil when it does not exist.
func (s *UserService) FindUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, common.WrapServiceError(common.OpRetrieveUser, err)
	}
	if user == nil {
		return nil, nil
	}
	return common.EntityToUserResponse(user), nil
}

// ListUserPosts returns the posts authored by userID, oldest first.
func (s *UserService) ListUserPosts(ctx context.Context, userID int64) ([]dto.PostResponse, error) {
	posts, err := s.posts.FindByAuthorID(ctx, userID)
	if err != nil {
		return nil, common.WrapServiceError(common.OpRetrievePosts, err)
	}
	return common.EntitiesToPostResponses(posts), nil
}

// CreateUser validates and stores a new user, then announces it.
func (s *UserService) CreateUser(ctx context.Context, request dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := common.ValidateCreateUserRequest(request); err != nil {
		return nil, err
	}

	user := entity.NewUser(request.Email, request.Name)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, common.WrapServiceError(common.OpSaveUser, err)
	}

	if err := s.publisher.PublishUserCreated(ctx, user); err != nil {
		s.logPublishFailure(ctx, err, "user_id", user.ID())
	}

	return common.EntityToUserResponse(user), nil
}

// CreatePost validates and stores a post for userID. A missing author surfaces as the
// storage layer's foreign-key failure.
func (s *UserService) CreatePost(
	ctx context.Context,
	userID int64,
	request dto.CreatePostRequest,
) (*dto.PostResponse, error) {
	if err := common.ValidateCreatePostRequest(request); err != nil {
		return nil, err
	}

	post := entity.NewPost(request.Title, request.Content, userID)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, common.WrapServiceError(common.OpSavePost, err)
	}

	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		s.logPublishFailure(ctx, err, "post_id", post.ID())
	}

	return common.EntityToPostResponse(post), nil
}

// DeleteUser removes the user and, by cascade, its posts.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return common.WrapServiceError(common.OpDeleteUser, err)
	}

	if err := s.publisher.PublishUserDeleted(ctx, id); err != nil {
		s.logPublishFailure(ctx, err, "user_id", id)
	}
	return nil
}

// Events are announced after the row is committed, so a publish failure is logged rather
// than reported to the client.
func (s *UserService) logPublishFailure(ctx context.Context, err error, key string, id int64) {
	slogger.ErrorWithError(ctx, common.WrapServiceError(common.OpPublishEvent, err), "Failed to publish event",
		slogger.Field(key, id))
}
