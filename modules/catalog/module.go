package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/example/beverage-storefront/events"
	"github.com/example/beverage-storefront/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module provides catalog services as a mono module.
type Module struct {
	store       database.Store
	cachePlugin *cache.PluginModule
	service     *Service
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ mono.UsePluginModule       = (*Module)(nil)
)

// NewModule creates a new catalog module.
func NewModule(store database.Store) *Module {
	return &Module{
		store: store,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "catalog"
}

// SetPlugin receives plugin instances from the mono framework before Start.
func (m *Module) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias == "cache" {
		if cachePlugin, ok := plugin.(*cache.PluginModule); ok {
			m.cachePlugin = cachePlugin
			log.Println("[catalog] Cache plugin injected")
		}
	}
}

// Start creates the service. The cache port is resolved here because the
// plugin only builds it in its own Start.
func (m *Module) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("store not set")
	}
	if m.cachePlugin == nil || m.cachePlugin.Port() == nil {
		return fmt.Errorf("cache plugin not set - ensure 'cache' plugin is registered")
	}
	m.service = NewService(m.store.Products(), m.cachePlugin.Port())
	log.Println("[catalog] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[catalog] Module stopped")
	return nil
}

// Health returns the current health status.
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

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-products", json.Unmarshal, json.Marshal, m.listProducts,
	); err != nil {
		return fmt.Errorf("failed to register list-products service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-product", json.Unmarshal, json.Marshal, m.getProduct,
	); err != nil {
		return fmt.Errorf("failed to register get-product service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-product", json.Unmarshal, json.Marshal, m.createProduct,
	); err != nil {
		return fmt.Errorf("failed to register create-product service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-product", json.Unmarshal, json.Marshal, m.updateProduct,
	); err != nil {
		return fmt.Errorf("failed to register update-product service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-product", json.Unmarshal, json.Marshal, m.deleteProduct,
	); err != nil {
		return fmt.Errorf("failed to register delete-product service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "count-products", json.Unmarshal, json.Marshal, m.countProducts,
	); err != nil {
		return fmt.Errorf("failed to register count-products service: %w", err)
	}

	log.Printf("[catalog] Registered services: list-products, get-product, create-product, update-product, delete-product, count-products")
	return nil
}

// RegisterEventConsumers subscribes to the events that change cached products.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderPlacedV1, m.handleOrderPlaced, m); err != nil {
		return fmt.Errorf("failed to register OrderPlaced consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ReviewChangedV1, m.handleReviewChanged, m); err != nil {
		return fmt.Errorf("failed to register ReviewChanged consumer: %w", err)
	}

	log.Printf("[catalog] Registered event consumers: OrderPlaced, ReviewChanged")
	return nil
}

func (m *Module) handleOrderPlaced(ctx context.Context, event events.OrderPlacedEvent, _ *mono.Msg) error {
	ids := make([]string, 0, len(event.Items))
	for _, item := range event.Items {
		ids = append(ids, item.ProductID)
	}
	if m.service != nil {
		m.service.Invalidate(ctx, ids...)
	}
	log.Printf("[catalog] Stock changed by order %s, invalidated %d product(s)", event.OrderNumber, len(ids))
	return nil
}

func (m *Module) handleReviewChanged(ctx context.Context, event events.ReviewChangedEvent, _ *mono.Msg) error {
	if m.service != nil {
		m.service.Invalidate(ctx, event.ProductID)
	}
	log.Printf("[catalog] Rating of %s changed to %.2f (%d reviews)", event.ProductID, event.Rating, event.ReviewCount)
	return nil
}

func (m *Module) listProducts(ctx context.Context, req ListProductsRequest, _ *mono.Msg) (ListProductsResponse, error) {
	resp, err := m.service.List(ctx, req)
	if err != nil {
		return ListProductsResponse{}, err
	}
	return *resp, nil
}

func (m *Module) getProduct(ctx context.Context, req GetProductRequest, _ *mono.Msg) (product.Product, error) {
	p, err := m.service.Get(ctx, req)
	if err != nil {
		return product.Product{}, err
	}
	return *p, nil
}

func (m *Module) createProduct(ctx context.Context, req CreateProductRequest, _ *mono.Msg) (product.Product, error) {
	p, err := m.service.Create(ctx, req)
	if err != nil {
		return product.Product{}, err
	}
	return *p, nil
}

func (m *Module) updateProduct(ctx context.Context, req UpdateProductRequest, _ *mono.Msg) (product.Product, error) {
	p, err := m.service.Update(ctx, req)
	if err != nil {
		return product.Product{}, err
	}
	return *p, nil
}

func (m *Module) deleteProduct(ctx context.Context, req DeleteProductRequest, _ *mono.Msg) (DeleteProductResponse, error) {
	if err := m.service.Delete(ctx, req); err != nil {
		return DeleteProductResponse{}, err
	}
	return DeleteProductResponse{Deleted: true}, nil
}

func (m *Module) countProducts(ctx context.Context, _ CountProductsRequest, _ *mono.Msg) (CountProductsResponse, error) {
	total, err := m.service.Count(ctx)
	if err != nil {
		return CountProductsResponse{}, err
	}
	return CountProductsResponse{Total: total}, nil
}
