package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CartPort is the port other modules use to reach the cart aggregator.
type CartPort interface {
	GetCart(ctx context.Context, userID string) (*CartResponse, error)
	AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error)
	UpdateItem(ctx context.Context, req *UpdateItemRequest) (*CartResponse, error)
	RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error)
	ClearCart(ctx context.Context, userID string) (*CartResponse, error)
}

type cartAdapter struct {
	container mono.ServiceContainer
}

// NewCartAdapter creates a new adapter for cart services.
func NewCartAdapter(container mono.ServiceContainer) CartPort {
	if container == nil {
		panic("cart adapter requires non-nil ServiceContainer")
	}
	return &cartAdapter{container: container}
}

func (a *cartAdapter) call(ctx context.Context, service string, req any) (*CartResponse, error) {
	var resp CartResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", service, err)
	}
	return &resp, nil
}

func (a *cartAdapter) GetCart(ctx context.Context, userID string) (*CartResponse, error) {
	return a.call(ctx, "get-cart", &GetCartRequest{UserID: userID})
}

func (a *cartAdapter) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	return a.call(ctx, "add-item", req)
}

func (a *cartAdapter) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*CartResponse, error) {
	return a.call(ctx, "update-item", req)
}

func (a *cartAdapter) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	return a.call(ctx, "remove-item", req)
}

func (a *cartAdapter) ClearCart(ctx context.Context, userID string) (*CartResponse, error) {
	return a.call(ctx, "clear-cart", &ClearCartRequest{UserID: userID})
}
