package repository

import (
	"context"
	"time"

	"userapi/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLPostRepository implements the PostRepository interface.
type PostgreSQLPostRepository struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLPostRepository creates a new PostgreSQL post repository.
func NewPostgreSQLPostRepository(pool *pgxpool.Pool) *PostgreSQLPostRepository {
	return &PostgreSQLPostRepository{
		pool: pool,
	}
}

// Save inserts the post. An unknown author surfaces as a foreign-key violation.
func (r *PostgreSQLPostRepository) Save(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return ErrInvalidArgument
	}

	query := `
		INSERT INTO posts (title, content, author_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	var id int64
	var createdAt time.Time

	qi := querierFor(ctx, r.pool)
	err := qi.QueryRow(ctx, query, post.Title(), post.Content(), post.AuthorID(), post.CreatedAt()).Scan(&id, &createdAt)
	if err != nil {
		return ClassifyError(err, "save post")
	}

	post.AssignID(id, createdAt)
	return nil
}

// FindByAuthorID lists the posts of a user, oldest first.
func (r *PostgreSQLPostRepository) FindByAuthorID(ctx context.Context, authorID int64) ([]*entity.Post, error) {
	query := `
		SELECT id, title, content, author_id, created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at, id`

	qi := querierFor(ctx, r.pool)
	rows, err := qi.Query(ctx, query, authorID)
	if err != nil {
		return nil, ClassifyError(err, "find posts by author")
	}
	defer rows.Close()

	posts := make([]*entity.Post, 0)
	for rows.Next() {
		var (
			id        int64
			title     string
			content   *string
			author    int64
			createdAt time.Time
		)
		if err := rows.Scan(&id, &title, &content, &author, &createdAt); err != nil {
			return nil, ClassifyError(err, "scan post")
		}
		posts = append(posts, entity.RestorePost(id, title, content, author, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, ClassifyError(err, "iterate posts")
	}

	return posts, nil
}
