package common

import (
	"net/http"
	"strconv"
	"strings"

	"userapi/internal/application/dto"
	"userapi/internal/domain/errors/domain"
)

// Client-facing validation messages.
const (
	MsgEmailRequired  = "Email is required"
	MsgTitleRequired  = "Title is required"
	MsgInvalidUserID  = "Invalid input data. Please check your request."
	MsgInvalidPayload = "Invalid request body"
)

// ValidateCreateUserRequest checks the fields the user table cannot default.
func ValidateCreateUserRequest(request dto.CreateUserRequest) error {
	if strings.TrimSpace(request.Email) == "" {
		return domain.Wrap(domain.ErrInvalidInput, MsgEmailRequired, http.StatusBadRequest)
	}
	return nil
}

// ValidateCreatePostRequest checks the fields the post table cannot default.
func ValidateCreatePostRequest(request dto.CreatePostRequest) error {
	if strings.TrimSpace(request.Title) == "" {
		return domain.Wrap(domain.ErrInvalidInput, MsgTitleRequired, http.StatusBadRequest)
	}
	return nil
}

// ParseUserID parses a path id. Only a non-integer is rejected here, with 400; zero and
// negative ids reach storage and come back as not found.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Wrap(domain.ErrInvalidInput, MsgInvalidUserID, http.StatusBadRequest)
	}
	return id, nil
}
