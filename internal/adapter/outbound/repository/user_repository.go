package repository

import (
	"context"
	"time"

	"userapi/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLUserRepository implements the UserRepository interface.
type PostgreSQLUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLUserRepository creates a new PostgreSQL user repository.
func NewPostgreSQLUserRepository(pool *pgxpool.Pool) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		pool: pool,
	}
}

// Save inserts the user and assigns the generated ID.
func (r *PostgreSQLUserRepository) Save(ctx context.Context, user *entity.User) error {
	if user == nil {
		return ErrInvalidArgument
	}

	query := `
		INSERT INTO users (email, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	var id int64
	var createdAt time.Time

	qi := querierFor(ctx, r.pool)
	if err := qi.QueryRow(ctx, query, user.Email(), user.Name(), user.CreatedAt()).Scan(&id, &createdAt); err != nil {
		return ClassifyError(err, "save user")
	}

	user.AssignID(id, createdAt)
	return nil
}

// FindByID finds a user by its ID. A missing user is not an error.
func (r *PostgreSQLUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `
		SELECT id, email, name, created_at
		FROM users
		WHERE id = $1`

	var email string
	var name *string
	var createdAt time.Time

	qi := querierFor(ctx, r.pool)
	err := qi.QueryRow(ctx, query, id).Scan(&id, &email, &name, &createdAt)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, ClassifyError(err, "find user by id")
	}

	return entity.RestoreUser(id, email, name, createdAt), nil
}

// Delete removes the user. Posts are removed by the ON DELETE CASCADE constraint.
func (r *PostgreSQLUserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	qi := querierFor(ctx, r.pool)
	tag, err := qi.Exec(ctx, query, id)
	if err != nil {
		return ClassifyError(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return NotFoundFailure("delete user")
	}

	return nil
}
