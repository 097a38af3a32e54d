// Package order converts carts into orders and tracks their lifecycle.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/apperror"
	domain "github.com/example/beverage-storefront/domain/order"
	"github.com/example/beverage-storefront/domain/user"
	"github.com/example/beverage-storefront/pkg/pagination"
	"github.com/google/uuid"
	"github.com/moby/locker"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Service implements checkout and order management.
type Service struct {
	store   database.Store
	locks   *locker.Locker
	numbers *OrderNumberGenerator
}

// NewService creates an order service. locks must be shared with the cart
// module so checkout and cart edits of the same user are serialized.
func NewService(store database.Store, locks *locker.Locker) (*Service, error) {
	numbers, err := NewOrderNumberGenerator()
	if err != nil {
		return nil, err
	}
	if locks == nil {
		locks = locker.New()
	}
	return &Service{
		store:   store,
		locks:   locks,
		numbers: numbers,
	}, nil
}

// Checkout creates an order from the user's cart. The order insert, the stock
// decrements and the cart reset commit together; any failure leaves all three
// untouched.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	if req.UserID == "" {
		return nil, apperror.Unauthorized("user id is required")
	}
	addr, err := validateAddress(req.ShippingAddress)
	if err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperror.InvalidInput("unknown payment method %q", req.PaymentMethod)
	}

	s.locks.Lock(req.UserID)
	defer s.locks.Unlock(req.UserID)

	var placed *domain.Order
	err = s.store.Transaction(ctx, func(tx database.Store) error {
		c, err := tx.Carts().FindByUserID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.InvalidState("cart is empty")
			}
			return err
		}
		if c.IsEmpty() {
			return apperror.InvalidState("cart is empty")
		}

		products, err := tx.Products().FindByIDs(ctx, c.ProductIDs(), false)
		if err != nil {
			return err
		}

		o := &domain.Order{
			ID:              uuid.New().String(),
			OrderNumber:     s.numbers.Next(),
			UserID:          req.UserID,
			Items:           make([]domain.Item, 0, len(c.Items)),
			ShippingAddress: addr,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   domain.PaymentPending,
			Status:          domain.StatusPending,
			Notes:           strings.TrimSpace(req.Notes),
		}
		for _, line := range c.Items {
			p, ok := products[line.ProductID]
			if !ok {
				return apperror.InvalidState("product %s is no longer available", line.ProductID)
			}
			if !p.IsActive {
				return apperror.InvalidState("product %s is not available", p.Name)
			}
			item := domain.Item{
				ProductID:   p.ID,
				ProductName: p.Name,
				Price:       p.Price,
				Quantity:    line.Quantity,
			}
			o.Items = append(o.Items, item)
			o.TotalPrice += item.Subtotal()
		}

		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := tx.Products().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		c.Clear()
		if err := tx.Carts().Save(ctx, c); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[order] Order %s placed by %s (%d items, total %d)", placed.OrderNumber, placed.UserID, len(placed.Items), placed.TotalPrice)
	return placed, nil
}

// GetByID returns an order to its owner or to an admin.
func (s *Service) GetByID(ctx context.Context, req GetOrderRequest) (*domain.Order, error) {
	o, err := s.store.Orders().FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != req.UserID && req.Role != user.RoleAdmin {
		return nil, apperror.Forbidden("not allowed to view order %s", req.OrderID)
	}
	return o, nil
}

// GetMine returns the caller's orders, newest first.
func (s *Service) GetMine(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("user id is required")
	}
	orders, err := s.store.Orders().FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// ListAll returns a page of every order, optionally filtered by status. Admin only.
func (s *Service) ListAll(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	if req.Role != user.RoleAdmin {
		return nil, apperror.Forbidden("admin role required")
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, apperror.InvalidInput("unknown order status %q", req.Status)
	}

	p := pagination.New(req.Page, req.Limit, defaultListLimit, maxListLimit)
	orders, total, err := s.store.Orders().List(ctx, domain.ListFilter{
		Status: req.Status,
		Offset: p.Offset(),
		Limit:  p.Limit,
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return &ListOrdersResponse{
		Orders:     orders,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}, nil
}

// UpdateStatus sets the provided statuses. Any transition between known
// values is accepted. Admin only.
func (s *Service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*domain.Order, error) {
	if req.Role != user.RoleAdmin {
		return nil, apperror.Forbidden("admin role required")
	}
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, apperror.InvalidInput("order_status or payment_status is required")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperror.InvalidInput("unknown order status %q", *req.Status)
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return nil, apperror.InvalidInput("unknown payment status %q", *req.PaymentStatus)
	}

	if err := s.store.Orders().UpdateStatus(ctx, req.OrderID, req.Status, req.PaymentStatus); err != nil {
		return nil, err
	}
	o, err := s.store.Orders().FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	log.Printf("[order] Order %s is now %s / payment %s", o.OrderNumber, o.Status, o.PaymentStatus)
	return o, nil
}

// Stats returns the order count and revenue. Admin only.
func (s *Service) Stats(ctx context.Context, role user.Role) (*domain.Stats, error) {
	if role != user.RoleAdmin {
		return nil, apperror.Forbidden("admin role required")
	}
	stats, err := s.store.Orders().Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return &stats, nil
}

func validateAddress(a domain.ShippingAddress) (domain.ShippingAddress, error) {
	a = domain.ShippingAddress{
		Street:   strings.TrimSpace(a.Street),
		City:     strings.TrimSpace(a.City),
		Province: strings.TrimSpace(a.Province),
		ZipCode:  strings.TrimSpace(a.ZipCode),
		Country:  strings.TrimSpace(a.Country),
	}
	switch {
	case a.Street == "":
		return a, apperror.InvalidInput("shipping_address.street is required")
	case a.City == "":
		return a, apperror.InvalidInput("shipping_address.city is required")
	case a.ZipCode == "":
		return a, apperror.InvalidInput("shipping_address.zip_code is required")
	case a.Country == "":
		return a, apperror.InvalidInput("shipping_address.country is required")
	}
	return a, nil
}
