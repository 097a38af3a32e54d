package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/beverage-storefront/domain/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the storage port for carts.
type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*Cart, error)
	// GetOrCreate returns the user's cart, creating an empty one if absent.
	GetOrCreate(ctx context.Context, userID string) (*Cart, error)
	// Save persists items and total. It fails with a conflict when the cart
	// was modified since it was loaded, and bumps Version on success.
	Save(ctx context.Context, c *Cart) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed cart repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&c, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("cart for user %s not found", userID)
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &c, nil
}

func (r *gormRepository) GetOrCreate(ctx context.Context, userID string) (*Cart, error) {
	c, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	c = &Cart{
		ID:     uuid.New().String(),
		UserID: userID,
		Items:  []Item{},
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		// Lost a creation race; the other writer's cart is the user's cart.
		if existing, findErr := r.FindByUserID(ctx, userID); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return c, nil
}

func (r *gormRepository) Save(ctx context.Context, c *Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Cart{}).
			Where("id = ? AND version = ?", c.ID, c.Version).
			Updates(map[string]any{
				"total_price": c.TotalPrice,
				"version":     gorm.Expr("version + 1"),
			})
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		if result.RowsAffected == 0 {
			return apperror.Conflict("cart %s was modified concurrently", c.ID)
		}

		if err := tx.Where("cart_id = ?", c.ID).Delete(&Item{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}

		if len(c.Items) > 0 {
			items := make([]Item, len(c.Items))
			for i, item := range c.Items {
				items[i] = Item{
					CartID:    c.ID,
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					CreatedAt: item.CreatedAt,
				}
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to save cart items: %w", err)
			}
			c.Items = items
		}

		c.Version++
		return nil
	})
}
