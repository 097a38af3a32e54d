package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/beverage-storefront/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/moby/locker"
)

// Module provides cart services as a mono module.
type Module struct {
	store   database.Store
	service *Service
}

var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a cart module sharing the per-user locks with checkout.
func NewModule(store database.Store, locks *locker.Locker) *Module {
	return &Module{
		store:   store,
		service: NewService(store, locks),
	}
}

func (m *Module) Name() string {
	return "cart"
}

func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-cart", json.Unmarshal, json.Marshal, m.getCart,
	); err != nil {
		return fmt.Errorf("failed to register get-cart service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "add-item", json.Unmarshal, json.Marshal, m.addItem,
	); err != nil {
		return fmt.Errorf("failed to register add-item service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-item", json.Unmarshal, json.Marshal, m.updateItem,
	); err != nil {
		return fmt.Errorf("failed to register update-item service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "remove-item", json.Unmarshal, json.Marshal, m.removeItem,
	); err != nil {
		return fmt.Errorf("failed to register remove-item service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "clear-cart", json.Unmarshal, json.Marshal, m.clearCart,
	); err != nil {
		return fmt.Errorf("failed to register clear-cart service: %w", err)
	}

	log.Printf("[cart] Registered services: get-cart, add-item, update-item, remove-item, clear-cart")
	return nil
}

func (m *Module) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("store not set")
	}
	log.Println("[cart] Module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	log.Println("[cart] Module stopped")
	return nil
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *Module) getCart(ctx context.Context, req GetCartRequest, _ *mono.Msg) (CartResponse, error) {
	return deref(m.service.Get(ctx, req.UserID))
}

func (m *Module) addItem(ctx context.Context, req AddItemRequest, _ *mono.Msg) (CartResponse, error) {
	return deref(m.service.AddItem(ctx, req))
}

func (m *Module) updateItem(ctx context.Context, req UpdateItemRequest, _ *mono.Msg) (CartResponse, error) {
	return deref(m.service.UpdateItem(ctx, req))
}

func (m *Module) removeItem(ctx context.Context, req RemoveItemRequest, _ *mono.Msg) (CartResponse, error) {
	return deref(m.service.RemoveItem(ctx, req))
}

func (m *Module) clearCart(ctx context.Context, req ClearCartRequest, _ *mono.Msg) (CartResponse, error) {
	return deref(m.service.Clear(ctx, req.UserID))
}

func deref(c *CartResponse, err error) (CartResponse, error) {
	if err != nil {
		return CartResponse{}, err
	}
	return *c, nil
}
