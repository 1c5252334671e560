package api

import (
	"net/http"

	"userapi/internal/application/common"
	"userapi/internal/application/dto"
	"userapi/internal/domain/errors/domain"
	"userapi/internal/port/inbound"
)

// MsgUserNotFound is returned when GET /api/users/{id} finds nothing.
const MsgUserNotFound = "User not found"

// DefaultMaxBodyBytes limits JSON request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 10 * 1024

// UserHandler handles the user and post endpoints.
type UserHandler struct {
	service      inbound.UserService
	boundary     *Boundary
	maxBodyBytes int64
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service inbound.UserService, boundary *Boundary, maxBodyBytes int64) *UserHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &UserHandler{service: service, boundary: boundary, maxBodyBytes: maxBodyBytes}
}

type userWithPosts struct {
	*dto.UserResponse
	Posts []dto.PostResponse `json:"posts"`
}

// GetUser handles GET /api/users/{id}. The user and its posts are loaded concurrently.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) error {
	id, err := common.ParseUserID(r.PathValue("id"))
	if err != nil {
		return err
	}

	var (
		user  *dto.UserResponse
		posts []dto.PostResponse
	)
	g, ctx := h.boundary.Group(r.Context())
	g.Go(func() error {
		var err error
		user, err = h.service.FindUser(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = h.service.ListUserPosts(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if user == nil {
		return domain.Wrap(domain.ErrUserNotFound, MsgUserNotFound, http.StatusNotFound)
	}
	if posts == nil {
		posts = []dto.PostResponse{}
	}

	return WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"user": userWithPosts{UserResponse: user, Posts: posts},
	})
}

// CreateUser handles POST /api/users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var request dto.CreateUserRequest
	if err := DecodeJSONBody(w, r, h.maxBodyBytes, &request); err != nil {
		return err
	}

	user, err := h.service.CreateUser(r.Context(), request)
	if err != nil {
		return err
	}

	return WriteSuccess(w, http.StatusCreated, map[string]interface{}{"user": user})
}

// CreatePost handles POST /api/users/{id}/posts.
func (h *UserHandler) CreatePost(w http.ResponseWriter, r *http.Request) error {
	id, err := common.ParseUserID(r.PathValue("id"))
	if err != nil {
		return err
	}

	var request dto.CreatePostRequest
	if err := DecodeJSONBody(w, r, h.maxBodyBytes, &request); err != nil {
		return err
	}

	post, err := h.service.CreatePost(r.Context(), id, request)
	if err != nil {
		return err
	}

	return WriteSuccess(w, http.StatusCreated, map[string]interface{}{"post": post})
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := common.ParseUserID(r.PathValue("id"))
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		return err
	}

	return WriteSuccess(w, http.StatusNoContent, nil)
}
