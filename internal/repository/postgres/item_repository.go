package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

const (
	ItemResource = "item"

	itemColumns = `id, name, description, price, category_id, category_name, image_url, quantity,
       default_order_status, is_available`
)

// ItemRepository provides database operations for catalog items
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository instance
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// CreateItem inserts a catalog item
func (r *ItemRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	query := `
INSERT INTO items (id, name, description, price, category_id, category_name, image_url, quantity,
                   default_order_status, is_available)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query, itemArgs(item)...)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetItemByID retrieves a catalog item by ID
func (r *ItemRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := "SELECT " + itemColumns + " FROM items WHERE id = $1"

	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: ItemResource,
				Key:      "id",
				Value:    id.String(),
			}
		}
		return nil, fmt.Errorf("failed to retrieve item with id %s: %w", id, err)
	}

	return item, nil
}

// ListItems returns all catalog items ordered by name
func (r *ItemRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	query := "SELECT " + itemColumns + " FROM items ORDER BY name, id"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Item, error) {
		item, err := scanItem(row)
		if err != nil {
			return domain.Item{}, err
		}
		return *item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}

	return items, nil
}

// UpdateItem overwrites every mutable field of an item
func (r *ItemRepository) UpdateItem(ctx context.Context, item *domain.Item) error {
	query := `
UPDATE items
SET name = $2, description = $3, price = $4, category_id = $5, category_name = $6, image_url = $7,
    quantity = $8, default_order_status = $9, is_available = $10
WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, itemArgs(item)...)
	if err != nil {
		return fmt.Errorf("update item %s: %w", item.ID, err)
	}

	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{Resource: ItemResource, Key: "id", Value: item.ID.String()}
	}

	return nil
}

// DeleteItem removes a catalog item
func (r *ItemRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{Resource: ItemResource, Key: "id", Value: id.String()}
	}

	return nil
}

func itemArgs(item *domain.Item) []any {
	return []any{
		item.ID,
		item.Name,
		item.Description,
		item.Price,
		item.CategoryID,
		item.CategoryName,
		item.ImageURL,
		item.Quantity,
		string(item.DefaultOrderStatus),
		item.IsAvailable,
	}
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item          domain.Item
		defaultStatus string
	)

	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.CategoryID,
		&item.CategoryName,
		&item.ImageURL,
		&item.Quantity,
		&defaultStatus,
		&item.IsAvailable,
	)
	if err != nil {
		return nil, err
	}

	item.DefaultOrderStatus = domain.NormalizeOrderStatus(defaultStatus)
	if item.CategoryID == "" && item.CategoryName != "" {
		item.CategoryID = NormalizeCategoryKey(item.CategoryName)
	}

	return &item, nil
}

// NormalizeCategoryKey derives a category key from its name for items imported without a category ID.
func NormalizeCategoryKey(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}
