package order

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/beverage-storefront/domain/order"
	"github.com/example/beverage-storefront/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// OrderPort is the port other modules use for checkout and order queries.
type OrderPort interface {
	Checkout(ctx context.Context, req *CheckoutRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, req *GetOrderRequest) (*domain.Order, error)
	GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error)
	ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error)
	UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*domain.Order, error)
	Stats(ctx context.Context, role user.Role) (*domain.Stats, error)
}

// OrderAdapter implements OrderPort using the service container.
type OrderAdapter struct {
	container mono.ServiceContainer
}

var _ OrderPort = (*OrderAdapter)(nil)

// NewOrderAdapter creates a new OrderAdapter.
func NewOrderAdapter(container mono.ServiceContainer) *OrderAdapter {
	if container == nil {
		panic("order adapter requires non-nil ServiceContainer")
	}
	return &OrderAdapter{container: container}
}

// callService invokes a request-reply service and decodes its reply into resp.
func callService[T any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *T) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *OrderAdapter) Checkout(ctx context.Context, req *CheckoutRequest) (*domain.Order, error) {
	var resp domain.Order
	if err := callService(ctx, a.container, "checkout", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *OrderAdapter) GetOrder(ctx context.Context, req *GetOrderRequest) (*domain.Order, error) {
	var resp domain.Order
	if err := callService(ctx, a.container, "get-order", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *OrderAdapter) GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var resp OrdersResponse
	if err := callService(ctx, a.container, "get-my-orders", &GetMyOrdersRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (a *OrderAdapter) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	var resp ListOrdersResponse
	if err := callService(ctx, a.container, "list-orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *OrderAdapter) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*domain.Order, error) {
	var resp domain.Order
	if err := callService(ctx, a.container, "update-order-status", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *OrderAdapter) Stats(ctx context.Context, role user.Role) (*domain.Stats, error) {
	var resp domain.Stats
	if err := callService(ctx, a.container, "order-stats", &StatsRequest{Role: role}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
