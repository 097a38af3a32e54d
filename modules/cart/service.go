// Package cart maintains each user's cart and its derived total.
package cart

import (
	"context"
	"log"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/apperror"
	domain "github.com/example/beverage-storefront/domain/cart"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/moby/locker"
)

// Service implements the cart operations. Every mutation holds the owner's
// lock, which checkout shares, and runs in one transaction.
type Service struct {
	store database.Store
	locks *locker.Locker
}

// NewService creates a cart service. locks must be the same Locker the
// order module uses so cart edits and checkout never interleave.
func NewService(store database.Store, locks *locker.Locker) *Service {
	if locks == nil {
		locks = locker.New()
	}
	return &Service{
		store: store,
		locks: locks,
	}
}

// Get returns the user's cart, creating an empty one on first access. The
// total is computed from current product prices.
func (s *Service) Get(ctx context.Context, userID string) (*CartResponse, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("user id is required")
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	c, err := s.store.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	products, err := s.store.Products().FindByIDs(ctx, c.ProductIDs(), true)
	if err != nil {
		return nil, err
	}
	c.Recalculate(unitPrices(products))
	return toCartResponse(c, products), nil
}

// AddItem adds quantity units of a product, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, req AddItemRequest) (*CartResponse, error) {
	if req.Quantity <= 0 {
		return nil, apperror.InvalidInput("quantity must be greater than 0")
	}
	if req.ProductID == "" {
		return nil, apperror.InvalidInput("product_id is required")
	}

	return s.mutate(ctx, req.UserID, true, func(tx database.Store, c *domain.Cart) error {
		p, err := tx.Products().FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return apperror.InvalidState("product %s is not available", p.Name)
		}
		c.AddItem(req.ProductID, req.Quantity)
		return nil
	})
}

// UpdateItem overwrites a line's quantity. Zero removes the line.
func (s *Service) UpdateItem(ctx context.Context, req UpdateItemRequest) (*CartResponse, error) {
	if req.Quantity < 0 {
		return nil, apperror.InvalidInput("quantity must not be negative")
	}

	return s.mutate(ctx, req.UserID, false, func(_ database.Store, c *domain.Cart) error {
		if !c.SetQuantity(req.ProductID, req.Quantity) {
			return apperror.NotFound("product %s is not in the cart", req.ProductID)
		}
		return nil
	})
}

// RemoveItem drops a line. Removing an absent product leaves the cart unchanged.
func (s *Service) RemoveItem(ctx context.Context, req RemoveItemRequest) (*CartResponse, error) {
	return s.mutate(ctx, req.UserID, true, func(_ database.Store, c *domain.Cart) error {
		c.RemoveItem(req.ProductID)
		return nil
	})
}

// Clear empties the cart and resets its total.
func (s *Service) Clear(ctx context.Context, userID string) (*CartResponse, error) {
	return s.mutate(ctx, userID, true, func(_ database.Store, c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

// mutate loads the cart under the owner's lock, applies fn, recomputes the
// total from current prices and saves, all in one transaction. When create
// is false a missing cart is NotFound.
func (s *Service) mutate(ctx context.Context, userID string, create bool, fn func(tx database.Store, c *domain.Cart) error) (*CartResponse, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("user id is required")
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	var resp *CartResponse
	err := s.store.Transaction(ctx, func(tx database.Store) error {
		var (
			c   *domain.Cart
			err error
		)
		if create {
			c, err = tx.Carts().GetOrCreate(ctx, userID)
		} else {
			c, err = tx.Carts().FindByUserID(ctx, userID)
		}
		if err != nil {
			return err
		}

		if err := fn(tx, c); err != nil {
			return err
		}

		products, err := tx.Products().FindByIDs(ctx, c.ProductIDs(), true)
		if err != nil {
			return err
		}
		c.Recalculate(unitPrices(products))

		if err := tx.Carts().Save(ctx, c); err != nil {
			return err
		}
		resp = toCartResponse(c, products)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[cart] Cart of %s saved (%d lines, total %d)", userID, len(resp.Items), resp.TotalPrice)
	return resp, nil
}

func unitPrices(products map[string]*product.Product) map[string]int64 {
	prices := make(map[string]int64, len(products))
	for id, p := range products {
		prices[id] = p.Price
	}
	return prices
}
