// Package catalog manages the canteen products and their categories.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

const (
	AllCategories = "all"

	// LowStockThreshold is the quantity below which a product is flagged as running out.
	LowStockThreshold = 30

	AvailabilitySoldOut   = "Sold Out"
	AvailabilityFewStocks = "Few stocks"
	AvailabilityAvailable = "Available"

	invalidCategoryMessage = "Please select a valid category."
	emptyCategoryMessage   = "Category name cannot be empty."
)

// ItemRepository defines the storage operations for products
type ItemRepository interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItemByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines the storage operations for categories
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	RenameCategory(ctx context.Context, id uuid.UUID, name string) (int64, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error)
}

// ProductInput is the editable part of a product. Price accepts a JSON number or a numeric string.
type ProductInput struct {
	Name               string      `json:"name"`
	Description        string      `json:"description"`
	Price              json.Number `json:"price"`
	CategoryID         string      `json:"categoryId"`
	ImageURL           string      `json:"imageUrl"`
	Quantity           int         `json:"quantity"`
	DefaultOrderStatus string      `json:"defaultOrderStatus"`
}

// Service implements product and category management
type Service struct {
	items      ItemRepository
	categories CategoryRepository
	logger     *slog.Logger
}

// NewService creates a catalog Service
func NewService(items ItemRepository, categories CategoryRepository, logger *slog.Logger) *Service {
	return &Service{
		items:      items,
		categories: categories,
		logger:     logger,
	}
}

// GetProduct returns a single product
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.items.GetItemByID(ctx, id)
}

// ListProducts returns the products whose name contains query and that belong to categoryID.
func (s *Service) ListProducts(ctx context.Context, query, categoryID string) ([]domain.Item, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	return FilterProducts(items, query, categoryID), nil
}

// CreateProduct validates input and stores a new product
func (s *Service) CreateProduct(ctx context.Context, in *ProductInput) (*domain.Item, error) {
	item := &domain.Item{ID: uuid.New()}
	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product_created", "item_id", item.ID, "name", item.Name)
	return item, nil
}

// UpdateProduct validates input and overwrites an existing product.
// An empty image URL keeps the stored image.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, in *ProductInput) (*domain.Item, error) {
	item, err := s.items.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product_updated", "item_id", item.ID)
	return item, nil
}

// DeleteProduct removes a product
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.items.DeleteItem(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product_deleted", "item_id", id)
	return nil
}

// ListCategories returns all categories
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

// CreateCategory stores a new category
func (s *Service) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", emptyCategoryMessage)
	}

	category := &domain.Category{ID: uuid.New(), Name: name}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category_created", "category_id", category.ID, "name", name)
	return category, nil
}

// RenameCategory renames a category and the category name stored on its products
func (s *Service) RenameCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", emptyCategoryMessage)
	}

	updated, err := s.categories.RenameCategory(ctx, id, name)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category_renamed", "category_id", id, "name", name, "items_updated", updated)
	return &domain.Category{ID: id, Name: name}, nil
}

// DeleteCategory removes a category and all of its products. It returns the number of products removed.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	deleted, err := s.categories.DeleteCategory(ctx, id)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "category_deleted", "category_id", id, "items_deleted", deleted)
	return deleted, nil
}

// apply validates in and copies it onto item
func (s *Service) apply(ctx context.Context, item *domain.Item, in *ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.NewValidationError("name", "Product name is required.")
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return err
	}

	if in.Quantity < 0 {
		return domain.NewValidationError("quantity", "Quantity cannot be negative.")
	}

	defaultStatus := domain.StatusPreparing
	if in.DefaultOrderStatus != "" {
		defaultStatus, err = domain.ParseOrderStatus(in.DefaultOrderStatus)
		if err != nil {
			return domain.NewValidationError("defaultOrderStatus", err.Error())
		}
	}

	category, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return err
	}

	item.Name = name
	item.Description = strings.TrimSpace(in.Description)
	item.Price = price
	item.CategoryID = category.ID.String()
	item.CategoryName = category.Name
	item.Quantity = in.Quantity
	item.DefaultOrderStatus = defaultStatus
	item.IsAvailable = in.Quantity > 0

	switch {
	case in.ImageURL != "":
		item.ImageURL = in.ImageURL
	case item.ImageURL == "":
		item.ImageURL = PlaceholderImage(name)
	}

	return nil
}

func (s *Service) resolveCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	id, err := uuid.Parse(categoryID)
	if err != nil {
		return nil, domain.NewValidationError("categoryId", invalidCategoryMessage)
	}

	category, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, domain.NewValidationError("categoryId", invalidCategoryMessage)
		}
		return nil, err
	}

	return category, nil
}

func parsePrice(raw json.Number) (float64, error) {
	if strings.TrimSpace(raw.String()) == "" {
		return 0, domain.NewValidationError("price", "Price is required.")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(raw.String()), 64)
	if err != nil {
		return 0, domain.NewValidationError("price", "Price must be a number.")
	}

	if price < 0 {
		return 0, domain.NewValidationError("price", "Price cannot be negative.")
	}

	return price, nil
}

// componentUnescaper undoes the query escaping of characters that URI components keep literally
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// PlaceholderImage returns the image URL used for products saved without one
func PlaceholderImage(name string) string {
	return "/placeholder.svg?height=200&width=200&query=" + componentUnescaper.Replace(url.QueryEscape(name))
}

// Availability returns the stock label shown next to a product
func Availability(quantity int) string {
	switch {
	case quantity <= 0:
		return AvailabilitySoldOut
	case quantity < LowStockThreshold:
		return AvailabilityFewStocks
	default:
		return AvailabilityAvailable
	}
}

// FilterProducts keeps items whose name contains query (case-insensitive) and whose category matches.
// An empty categoryID or "all" matches every category.
func FilterProducts(items []domain.Item, query, categoryID string) []domain.Item {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		if categoryID != "" && categoryID != AllCategories && item.CategoryID != categoryID {
			continue
		}
		filtered = append(filtered, item)
	}

	return filtered
}
