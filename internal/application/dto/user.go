package dto

import "time"

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

// CreatePostRequest is the body of POST /api/users/{id}/posts.
type CreatePostRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content,omitempty"`
}

// UserResponse represents a user with the posts loaded alongside it.
type UserResponse struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	Name      *string        `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	Posts     []PostResponse `json:"posts,omitempty"`
}

// PostResponse represents a single post.
type PostResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}
