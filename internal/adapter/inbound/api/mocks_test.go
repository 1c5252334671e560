package api

import (
	"context"
	"net/http"
	"sync"

	"userapi/internal/application/dto"

	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of inbound.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) ListUserPosts(ctx context.Context, userID int64) ([]dto.PostResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PostResponse), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, request dto.CreateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) CreatePost(
	ctx context.Context,
	userID int64,
	request dto.CreatePostRequest,
) (*dto.PostResponse, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostResponse), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHealthService is a mock implementation of inbound.HealthService.
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) GetHealth(ctx context.Context) (*dto.HealthResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HealthResponse), args.Error(1)
}

// recordingErrorHandler records every error it is handed and answers 599.
type recordingErrorHandler struct {
	mu     sync.Mutex
	errors []error
}

func (h *recordingErrorHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	h.mu.Lock()
	h.errors = append(h.errors, err)
	h.mu.Unlock()
	w.WriteHeader(599)
}

func (h *recordingErrorHandler) recorded() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errors...)
}
