package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/beverage-storefront/database"
	domain "github.com/example/beverage-storefront/domain/order"
	"github.com/example/beverage-storefront/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/moby/locker"
)

// Module provides checkout and order services.
type Module struct {
	store    database.Store
	locks    *locker.Locker
	service  *Service
	eventBus mono.EventBus
}

var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the order module. locks is shared with the cart module.
func NewModule(store database.Store, locks *locker.Locker) *Module {
	return &Module{
		store: store,
		locks: locks,
	}
}

func (m *Module) Name() string {
	return "order"
}

func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.OrderPlacedV1.ToBase(),
		events.OrderStatusChangedV1.ToBase(),
	}
}

func (m *Module) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("store not set")
	}
	service, err := NewService(m.store, m.locks)
	if err != nil {
		return fmt.Errorf("failed to create order service: %w", err)
	}
	m.service = service
	log.Println("[order] Module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	log.Println("[order] Module stopped")
	return nil
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "checkout", json.Unmarshal, json.Marshal, m.checkout,
	); err != nil {
		return fmt.Errorf("failed to register checkout service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-order", json.Unmarshal, json.Marshal, m.getOrder,
	); err != nil {
		return fmt.Errorf("failed to register get-order service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-my-orders", json.Unmarshal, json.Marshal, m.getMyOrders,
	); err != nil {
		return fmt.Errorf("failed to register get-my-orders service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-orders", json.Unmarshal, json.Marshal, m.listOrders,
	); err != nil {
		return fmt.Errorf("failed to register list-orders service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-order-status", json.Unmarshal, json.Marshal, m.updateStatus,
	); err != nil {
		return fmt.Errorf("failed to register update-order-status service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "order-stats", json.Unmarshal, json.Marshal, m.stats,
	); err != nil {
		return fmt.Errorf("failed to register order-stats service: %w", err)
	}

	log.Printf("[order] Registered services: checkout, get-order, get-my-orders, list-orders, update-order-status, order-stats")
	return nil
}

func (m *Module) checkout(ctx context.Context, req CheckoutRequest, _ *mono.Msg) (domain.Order, error) {
	o, err := m.service.Checkout(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}

	if m.eventBus != nil {
		event := events.OrderPlacedEvent{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			TotalPrice:  o.TotalPrice,
			Items:       make([]events.OrderPlacedItem, 0, len(o.Items)),
			PlacedAt:    time.Now(),
		}
		for _, item := range o.Items {
			event.Items = append(event.Items, events.OrderPlacedItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if err := events.OrderPlacedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[order] Warning: failed to publish OrderPlaced event for %s: %v", o.OrderNumber, err)
		}
	}
	return *o, nil
}

func (m *Module) getOrder(ctx context.Context, req GetOrderRequest, _ *mono.Msg) (domain.Order, error) {
	o, err := m.service.GetByID(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	return *o, nil
}

func (m *Module) getMyOrders(ctx context.Context, req GetMyOrdersRequest, _ *mono.Msg) (OrdersResponse, error) {
	orders, err := m.service.GetMine(ctx, req.UserID)
	if err != nil {
		return OrdersResponse{}, err
	}
	return OrdersResponse{Orders: orders}, nil
}

func (m *Module) listOrders(ctx context.Context, req ListOrdersRequest, _ *mono.Msg) (ListOrdersResponse, error) {
	resp, err := m.service.ListAll(ctx, req)
	if err != nil {
		return ListOrdersResponse{}, err
	}
	return *resp, nil
}

func (m *Module) updateStatus(ctx context.Context, req UpdateStatusRequest, _ *mono.Msg) (domain.Order, error) {
	o, err := m.service.UpdateStatus(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}

	if m.eventBus != nil {
		event := events.OrderStatusChangedEvent{
			OrderID:       o.ID,
			OrderNumber:   o.OrderNumber,
			UserID:        o.UserID,
			OrderStatus:   string(o.Status),
			PaymentStatus: string(o.PaymentStatus),
			ChangedAt:     time.Now(),
		}
		if err := events.OrderStatusChangedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[order] Warning: failed to publish OrderStatusChanged event for %s: %v", o.OrderNumber, err)
		}
	}
	return *o, nil
}

func (m *Module) stats(ctx context.Context, req StatsRequest, _ *mono.Msg) (domain.Stats, error) {
	stats, err := m.service.Stats(ctx, req.Role)
	if err != nil {
		return domain.Stats{}, err
	}
	return *stats, nil
}
