package database

import (
	"context"

	"github.com/example/beverage-storefront/domain/cart"
	"github.com/example/beverage-storefront/domain/order"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/example/beverage-storefront/domain/review"
	"gorm.io/gorm"
)

// Store groups the repositories the storefront core depends on.
// Repositories obtained inside Transaction share one database transaction.
type Store interface {
	Products() product.Repository
	Carts() cart.Repository
	Orders() order.Repository
	Reviews() review.Repository
	// Transaction runs fn in a unit of work. All writes made through the
	// Store passed to fn commit together or not at all.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error
}

type gormStore struct {
	db       *gorm.DB
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	reviews  review.Repository
}

// NewStore builds a Store on top of db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:       db,
		products: product.NewRepository(db),
		carts:    cart.NewRepository(db),
		orders:   order.NewRepository(db),
		reviews:  review.NewRepository(db),
	}
}

func (s *gormStore) Products() product.Repository { return s.products }
func (s *gormStore) Carts() cart.Repository       { return s.carts }
func (s *gormStore) Orders() order.Repository     { return s.orders }
func (s *gormStore) Reviews() review.Repository   { return s.reviews }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
