package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/beverage-storefront/domain/apperror"
	"gorm.io/gorm"
)

// Repository is the storage port for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	ExistsForUser(ctx context.Context, productID, userID string) (bool, error)
	ListByProduct(ctx context.Context, productID string, offset, limit int) ([]Review, int64, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
	// Aggregate rescans every review of a product.
	Aggregate(ctx context.Context, productID string) (Aggregate, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed review repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, rv *Review) error {
	if err := r.db.WithContext(ctx).Create(rv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("you have already reviewed this product")
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*Review, error) {
	var rv Review
	if err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("review %s not found", id)
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &rv, nil
}

func (r *gormRepository) ExistsForUser(ctx context.Context, productID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) ListByProduct(ctx context.Context, productID string, offset, limit int) ([]Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&Review{}).
		Where("product_id = ?", productID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []Review
	if err := q.Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *gormRepository) Update(ctx context.Context, rv *Review) error {
	result := r.db.WithContext(ctx).Model(&Review{}).
		Where("id = ?", rv.ID).
		Select("rating", "title", "comment", "updated_at").
		Updates(rv)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("review %s not found", rv.ID)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Review{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("review %s not found", id)
	}
	return nil
}

func (r *gormRepository) Aggregate(ctx context.Context, productID string) (Aggregate, error) {
	var row struct {
		Average float64
		Count   int
	}
	if err := r.db.WithContext(ctx).Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error; err != nil {
		return Aggregate{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return Aggregate{Rating: row.Average, Count: row.Count}, nil
}
