package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

const (
	UserResource = "user"

	pgErrUniqueViolation = "23505"

	userColumns = "id, name, email, roll_no, is_admin, password_hash"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a user. A duplicate email is reported as a ConflictError.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := "INSERT INTO users (" + userColumns + ") VALUES ($1, $2, $3, $4, $5, $6)"

	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.RollNo, user.IsAdmin, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return &repository.ConflictError{
				Resource: UserResource,
				ID:       user.Email,
				Reason:   "email already registered",
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email address, ignoring case.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	query := "SELECT " + userColumns + " FROM users WHERE lower(email) = lower($1)"

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("query user by email %s: %w", email, err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[domain.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: UserResource,
				Key:      "email",
				Value:    email,
			}
		}
		return nil, fmt.Errorf("scan user by email %s: %w", email, err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query user %s: %w", id, err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[domain.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: UserResource,
				Key:      "id",
				Value:    id.String(),
			}
		}
		return nil, fmt.Errorf("scan user %s: %w", id, err)
	}

	return user, nil
}

// ListUsers returns every user ordered by email
func (r *UserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY email")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.User])
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	return users, nil
}

// GetRoles returns the authorization roles of the user identified by subject.
// This method implements the infoprovider.InfoProvider interface.
func (r *UserRepository) GetRoles(ctx context.Context, subject string) ([]string, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject %q: %w", subject, err)
	}

	var isAdmin bool
	err = r.pool.QueryRow(ctx, "SELECT is_admin FROM users WHERE id = $1", id).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: UserResource,
				Key:      "id",
				Value:    subject,
			}
		}
		return nil, fmt.Errorf("query roles for user %s: %w", subject, err)
	}

	user := domain.User{IsAdmin: isAdmin}
	return user.Roles(), nil
}
