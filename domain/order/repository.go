package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/beverage-storefront/domain/apperror"
	"gorm.io/gorm"
)

// Repository is the storage port for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByUserID(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	// UpdateStatus overwrites whichever of the two statuses is non-nil.
	UpdateStatus(ctx context.Context, id string, status *Status, payment *PaymentStatus) error
	Stats(ctx context.Context) (Stats, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (r *gormRepository) Create(ctx context.Context, o *Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("order number %s already exists", o.OrderNumber)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := withItems(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order %s not found", id)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &o, nil
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	if err := withItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	return orders, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&Order{})
	if filter.Status != "" {
		q = q.Where("order_status = ?", filter.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	if err := withItems(q).
		Order("created_at DESC").Order("id").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id string, status *Status, payment *PaymentStatus) error {
	updates := map[string]any{}
	if status != nil {
		updates["order_status"] = *status
	}
	if payment != nil {
		updates["payment_status"] = *payment
	}
	if len(updates) == 0 {
		return apperror.InvalidInput("no status provided")
	}

	result := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(updates)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("order %s not found", id)
	}
	return nil
}

// Stats counts every order and sums the totals of those not cancelled.
func (r *gormRepository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := r.db.WithContext(ctx)

	if err := db.Model(&Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := db.Model(&Order{}).
		Where("order_status <> ?", StatusCancelled).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return stats, nil
}
