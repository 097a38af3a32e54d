package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/beverage-storefront/domain/apperror"
	"gorm.io/gorm"
)

// Repository is the storage port for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindByIDs returns the products keyed by ID. Missing IDs are absent from
	// the map. Soft-deleted products are included when withDeleted is set.
	FindByIDs(ctx context.Context, ids []string, withDeleted bool) (map[string]*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, int64, error)
	// Update writes only the given columns, keyed by column name.
	Update(ctx context.Context, id string, changes map[string]any) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	// DecrementStock removes qty units, refusing to go below zero.
	DecrementStock(ctx context.Context, id string, qty int) error
	UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed product repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", id)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

func (r *gormRepository) FindByIDs(ctx context.Context, ids []string, withDeleted bool) (map[string]*Product, error) {
	result := make(map[string]*Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := r.db.WithContext(ctx)
	if withDeleted {
		q = q.Unscoped()
	}

	var products []Product
	if err := q.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&Product{})

	if !filter.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?)", pattern, pattern, pattern)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	if err := q.Order("created_at DESC").Order("id").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// editableColumns are the columns Update accepts. Stock decrements and the
// derived rating columns have their own conditional writes.
var editableColumns = map[string]bool{
	"name":        true,
	"description": true,
	"price":       true,
	"category":    true,
	"image":       true,
	"stock":       true,
	"volume":      true,
	"brand":       true,
	"is_active":   true,
}

func (r *gormRepository) Update(ctx context.Context, id string, changes map[string]any) error {
	if len(changes) == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	for column := range changes {
		if !editableColumns[column] {
			return apperror.InvalidInput("column %s is not editable", column)
		}
	}

	result := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", id).
		Updates(changes)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product %s not found", id)
	}
	return nil
}

// Delete soft-deletes a product so existing carts and orders can still
// resolve it.
func (r *gormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Product{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product %s not found", id)
	}
	return nil
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

func (r *gormRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return apperror.InvalidInput("quantity must be positive")
	}

	result := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	p, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return apperror.InvalidState("insufficient stock for %s: %d available, %d requested", p.Name, p.Stock, qty)
}

func (r *gormRepository) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	result := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":       rating,
			"review_count": reviewCount,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product %s not found", id)
	}
	return nil
}
