package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

const (
	CategoryResource = "category"
)

// CategoryRepository provides database operations for catalog categories
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository instance
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// CreateCategory inserts a category
func (r *CategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	_, err := r.pool.Exec(ctx, "INSERT INTO categories (id, name) VALUES ($1, $2)", category.ID, category.Name)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetCategoryByID retrieves a category by ID
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	err := r.pool.QueryRow(ctx, "SELECT id, name FROM categories WHERE id = $1", id).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: CategoryResource,
				Key:      "id",
				Value:    id.String(),
			}
		}
		return nil, fmt.Errorf("failed to retrieve category with id %s: %w", id, err)
	}

	return &category, nil
}

// ListCategories returns all categories ordered by name
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name FROM categories ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Category])
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}

	return categories, nil
}

// RenameCategory renames a category and rewrites the denormalised name on its items in one transaction.
// It returns the number of items updated.
func (r *CategoryRepository) RenameCategory(ctx context.Context, id uuid.UUID, name string) (int64, error) {
	var updated int64

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "UPDATE categories SET name = $2 WHERE id = $1", id, name)
		if err != nil {
			return fmt.Errorf("update category %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return &repository.NotFoundError{Resource: CategoryResource, Key: "id", Value: id.String()}
		}

		tag, err = tx.Exec(ctx, "UPDATE items SET category_name = $2 WHERE category_id = $1", id.String(), name)
		if err != nil {
			return fmt.Errorf("update items of category %s: %w", id, err)
		}
		updated = tag.RowsAffected()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

// DeleteCategory deletes a category together with all of its items in one transaction.
// It returns the number of items deleted.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	var deleted int64

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM items WHERE category_id = $1", id.String())
		if err != nil {
			return fmt.Errorf("delete items of category %s: %w", id, err)
		}
		deleted = tag.RowsAffected()

		tag, err = tx.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return &repository.NotFoundError{Resource: CategoryResource, Key: "id", Value: id.String()}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
