// Package api exposes the storefront over HTTP and WebSocket.
package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/beverage-storefront/middleware/ratelimit"
	"github.com/example/beverage-storefront/modules/auth"
	"github.com/example/beverage-storefront/modules/cart"
	"github.com/example/beverage-storefront/modules/catalog"
	"github.com/example/beverage-storefront/modules/order"
	"github.com/example/beverage-storefront/modules/review"
	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config configures the HTTP server.
type Config struct {
	Port              int
	Development       bool
	IPPerMinute       int
	CheckoutPerMinute int
}

// APIModule is the HTTP API module.
type APIModule struct {
	cfg           Config
	app           *fiber.App
	limiter       *ratelimit.Middleware
	notifications NotificationFeed
	checks        []HealthChecker

	authAdapter    auth.AuthPort
	catalogAdapter catalog.CatalogPort
	cartAdapter    cart.CartPort
	orderAdapter   order.OrderPort
	reviewAdapter  review.ReviewPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. limiter and notifications may be nil;
// checks are the modules reported by /health.
func NewModule(cfg Config, limiter *ratelimit.Middleware, notifications NotificationFeed, checks ...HealthChecker) *APIModule {
	if limiter == nil {
		limiter = ratelimit.NewMiddleware(nil)
	}
	return &APIModule{
		cfg:           cfg,
		limiter:       limiter,
		notifications: notifications,
		checks:        checks,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies. The notification
// module must be running before the order feed registers clients on its hub.
func (m *APIModule) Dependencies() []string {
	deps := []string{"auth", "catalog", "cart", "order", "review"}
	if m.notifications != nil {
		deps = append(deps, "notification")
	}
	return deps
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "catalog":
		m.catalogAdapter = catalog.NewCatalogAdapter(container)
	case "cart":
		m.cartAdapter = cart.NewCartAdapter(container)
	case "order":
		m.orderAdapter = order.NewOrderAdapter(container)
	case "review":
		m.reviewAdapter = review.NewReviewAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	switch {
	case m.authAdapter == nil:
		return fmt.Errorf("auth dependency not set")
	case m.catalogAdapter == nil:
		return fmt.Errorf("catalog dependency not set")
	case m.cartAdapter == nil:
		return fmt.Errorf("cart dependency not set")
	case m.orderAdapter == nil:
		return fmt.Errorf("order dependency not set")
	case m.reviewAdapter == nil:
		return fmt.Errorf("review dependency not set")
	}

	handlers := NewHandlers(
		m.authAdapter,
		m.catalogAdapter,
		m.cartAdapter,
		m.orderAdapter,
		m.reviewAdapter,
		m.notifications,
		m.cfg.Development,
		m.checks...,
	)
	m.app = newApp(handlers, m.limiter, m.cfg)

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// newApp builds the Fiber application with middleware and routes.
func newApp(h *Handlers, limiter *ratelimit.Middleware, cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	setupRoutes(app, h, limiter, cfg)
	return app
}

// setupRoutes configures all API routes.
func setupRoutes(app *fiber.App, h *Handlers, limiter *ratelimit.Middleware, cfg Config) {
	requireUser := AuthMiddleware(h.auth)
	optionalUser := OptionalAuthMiddleware(h.auth)
	adminOnly := AdminOnly()

	app.Get("/health", h.Health)

	app.Get("/ws/orders", h.UpgradeOrderFeed, websocket.New(h.OrderFeed))

	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth", limiter.Handler(ratelimit.Rule{
		Name:   "auth-ip",
		Limit:  cfg.IPPerMinute,
		Window: time.Minute,
		Key:    ratelimit.ByIP,
	}))
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)

	v1.Get("/profile", requireUser, h.Profile)
	v1.Get("/notifications", requireUser, h.Notifications)

	products := v1.Group("/products")
	products.Get("/", optionalUser, h.ListProducts)
	products.Get("/:id", optionalUser, h.GetProduct)
	products.Get("/:id/reviews", h.ListReviews)
	products.Post("/:id/reviews", requireUser, h.CreateReview)
	products.Post("/", requireUser, adminOnly, h.CreateProduct)
	products.Put("/:id", requireUser, adminOnly, h.UpdateProduct)
	products.Delete("/:id", requireUser, adminOnly, h.DeleteProduct)

	reviews := v1.Group("/reviews", requireUser)
	reviews.Put("/:id", h.UpdateReview)
	reviews.Delete("/:id", h.DeleteReview)

	carts := v1.Group("/cart", requireUser)
	carts.Get("/", h.GetCart)
	carts.Delete("/", h.ClearCart)
	carts.Post("/items", h.AddCartItem)
	carts.Put("/items/:productId", h.UpdateCartItem)
	carts.Delete("/items/:productId", h.RemoveCartItem)

	orders := v1.Group("/orders", requireUser)
	orders.Post("/", limiter.Handler(ratelimit.Rule{
		Name:   "checkout",
		Limit:  cfg.CheckoutPerMinute,
		Window: time.Minute,
		Key:    userKey,
	}), h.Checkout)
	orders.Get("/mine", h.MyOrders)
	orders.Get("/:id", h.GetOrder)

	admin := v1.Group("/admin", requireUser, adminOnly)
	admin.Get("/orders", h.ListOrders)
	admin.Put("/orders/:id/status", h.UpdateOrderStatus)
	admin.Get("/stats", h.AdminStats)
	admin.Get("/users", h.AdminUsers)
}
