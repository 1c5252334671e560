package common

import (
	"userapi/internal/application/dto"
	"userapi/internal/domain/entity"
)

// EntityToUserResponse converts a user entity, including any attached posts, to a response DTO.
func EntityToUserResponse(user *entity.User) *dto.UserResponse {
	response := &dto.UserResponse{
		ID:        user.ID(),
		Email:     user.Email(),
		Name:      user.Name(),
		CreatedAt: user.CreatedAt(),
	}
	if posts := user.Posts(); len(posts) > 0 {
		response.Posts = EntitiesToPostResponses(posts)
	}
	return response
}

// EntityToPostResponse converts a post entity to a response DTO.
func EntityToPostResponse(post *entity.Post) *dto.PostResponse {
	return &dto.PostResponse{
		ID:        post.ID(),
		Title:     post.Title(),
		Content:   post.Content(),
		AuthorID:  post.AuthorID(),
		CreatedAt: post.CreatedAt(),
	}
}

// EntitiesToPostResponses converts a slice of post entities.
func EntitiesToPostResponses(posts []*entity.Post) []dto.PostResponse {
	responses := make([]dto.PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, *EntityToPostResponse(post))
	}
	return responses
}
