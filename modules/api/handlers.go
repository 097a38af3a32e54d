package api

import (
	"context"
	"strconv"
	"strings"

	"github.com/example/beverage-storefront/domain/order"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/example/beverage-storefront/modules/auth"
	"github.com/example/beverage-storefront/modules/cart"
	"github.com/example/beverage-storefront/modules/catalog"
	"github.com/example/beverage-storefront/modules/notification"
	orders "github.com/example/beverage-storefront/modules/order"
	"github.com/example/beverage-storefront/modules/review"
	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// NotificationFeed is the part of the notification module the API serves.
type NotificationFeed interface {
	Notifications(userID string) []notification.Notification
	ServeOrderFeed(userID string, conn *websocket.Conn)
}

// HealthChecker is any module that reports its health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth          auth.AuthPort
	catalog       catalog.CatalogPort
	cart          cart.CartPort
	orders        orders.OrderPort
	reviews       review.ReviewPort
	notifications NotificationFeed
	checks        []HealthChecker
	development   bool
}

// NewHandlers creates a new Handlers instance. notifications may be nil.
func NewHandlers(
	authPort auth.AuthPort,
	catalogPort catalog.CatalogPort,
	cartPort cart.CartPort,
	orderPort orders.OrderPort,
	reviewPort review.ReviewPort,
	notifications NotificationFeed,
	development bool,
	checks ...HealthChecker,
) *Handlers {
	return &Handlers{
		auth:          authPort,
		catalog:       catalogPort,
		cart:          cartPort,
		orders:        orderPort,
		reviews:       reviewPort,
		notifications: notifications,
		checks:        checks,
		development:   development,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.auth.Register(c.UserContext(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	tokens, err := h.auth.Login(c.UserContext(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(tokens)
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req auth.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	tokens, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(tokens)
}

// Profile returns the caller's account.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	user, err := h.auth.GetUser(c.UserContext(), userKey(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(user)
}

// ListProducts handles GET /products. Query: category, search, min_price,
// max_price, include_inactive, page, limit.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	req := catalog.ListProductsRequest{
		Category:        product.Category(c.Query("category")),
		Search:          c.Query("search"),
		IncludeInactive: c.QueryBool("include_inactive"),
		Page:            c.QueryInt("page", 1),
		Limit:           c.QueryInt("limit", 0),
		Role:            roleOf(c),
	}

	var err error
	if req.MinPrice, err = queryInt64(c, "min_price"); err != nil {
		return badRequest(c, "min_price must be an integer")
	}
	if req.MaxPrice, err = queryInt64(c, "max_price"); err != nil {
		return badRequest(c, "max_price must be an integer")
	}

	resp, err := h.catalog.ListProducts(c.UserContext(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// GetProduct handles GET /products/:id.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	p, err := h.catalog.GetProduct(c.UserContext(), &catalog.GetProductRequest{
		ID:   c.Params("id"),
		Role: roleOf(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

// CreateProduct handles POST /products.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	var req catalog.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Role = roleOf(c)

	p, err := h.catalog.CreateProduct(c.UserContext(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// UpdateProduct handles PUT /products/:id.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	var req catalog.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.ID = c.Params("id")
	req.Role = roleOf(c)

	p, err := h.catalog.UpdateProduct(c.UserContext(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

// DeleteProduct handles DELETE /products/:id.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	err := h.catalog.DeleteProduct(c.UserContext(), &catalog.DeleteProductRequest{
		ID:   c.Params("id"),
		Role: roleOf(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCart handles GET /cart.
func (h *Handlers) GetCart(c *fiber.Ctx) error {
	resp, err := h.cart.GetCart(c.UserContext(), userKey(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// AddCartItem handles POST /cart/items.
func (h *Handlers) AddCartItem(c *fiber.Ctx) error {
	var req cart.AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.UserID = userKey(c)

	resp, err := h.cart.AddItem(c.UserContext(), &req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// UpdateCartItem handles PUT /cart/items/:productId.
func (h *Handlers) UpdateCartItem(c *fiber.Ctx) error {
	var body UpdateItemBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.cart.UpdateItem(c.UserContext(), &cart.UpdateItemRequest{
		UserID:    userKey(c),
		ProductID: c.Params("productId"),
		Quantity:  body.Quantity,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// RemoveCartItem handles DELETE /cart/items/:productId.
func (h *Handlers) RemoveCartItem(c *fiber.Ctx) error {
	resp, err := h.cart.RemoveItem(c.UserContext(), &cart.RemoveItemRequest{
		UserID:    userKey(c),
		ProductID: c.Params("productId"),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// ClearCart handles DELETE /cart.
func (h *Handlers) ClearCart(c *fiber.Ctx) error {
	resp, err := h.cart.ClearCart(c.UserContext(), userKey(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// Checkout handles POST /orders.
func (h *Handlers) Checkout(c *fiber.Ctx) error {
	var body CheckoutBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	o, err := h.orders.Checkout(c.UserContext(), &orders.CheckoutRequest{
		UserID:          userKey(c),
		ShippingAddress: body.ShippingAddress,
		PaymentMethod:   body.PaymentMethod,
		Notes:           body.Notes,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

// MyOrders handles GET /orders/mine.
func (h *Handlers) MyOrders(c *fiber.Ctx) error {
	list, err := h.orders.GetMyOrders(c.UserContext(), userKey(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(orders.OrdersResponse{Orders: list})
}

// GetOrder handles GET /orders/:id.
func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	o, err := h.orders.GetOrder(c.UserContext(), &orders.GetOrderRequest{
		OrderID: c.Params("id"),
		UserID:  userKey(c),
		Role:    roleOf(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(o)
}

// ListOrders handles GET /admin/orders.
func (h *Handlers) ListOrders(c *fiber.Ctx) error {
	resp, err := h.orders.ListOrders(c.UserContext(), &orders.ListOrdersRequest{
		Status: order.Status(c.Query("status")),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 0),
		Role:   roleOf(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status.
func (h *Handlers) UpdateOrderStatus(c *fiber.Ctx) error {
	var body UpdateOrderStatusBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	o, err := h.orders.UpdateStatus(c.UserContext(), &orders.UpdateStatusRequest{
		OrderID:       c.Params("id"),
		Status:        body.OrderStatus,
		PaymentStatus: body.PaymentStatus,
		Role:          roleOf(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(o)
}

// AdminStats handles GET /admin/stats. The three counts are fetched concurrently.
func (h *Handlers) AdminStats(c *fiber.Ctx) error {
	var (
		resp  AdminStatsResponse
		stats *order.Stats
		role  = roleOf(c)
	)

	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		n, err := h.auth.CountUsers(ctx)
		resp.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := h.catalog.CountProducts(ctx)
		resp.TotalProducts = n
		return err
	})
	g.Go(func() error {
		s, err := h.orders.Stats(ctx, role)
		stats = s
		return err
	})
	if err := g.Wait(); err != nil {
		return h.writeError(c, err)
	}

	resp.TotalOrders = stats.TotalOrders
	resp.TotalRevenue = stats.TotalRevenue
	return c.JSON(resp)
}

// AdminUsers handles GET /admin/users.
func (h *Handlers) AdminUsers(c *fiber.Ctx) error {
	resp, err := h.auth.ListUsers(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// ListReviews handles GET /products/:id/reviews.
func (h *Handlers) ListReviews(c *fiber.Ctx) error {
	resp, err := h.reviews.ListReviews(c.UserContext(), &review.ListReviewsRequest{
		ProductID: c.Params("id"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 0),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// CreateReview handles POST /products/:id/reviews.
func (h *Handlers) CreateReview(c *fiber.Ctx) error {
	var body CreateReviewBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	r, err := h.reviews.CreateReview(c.UserContext(), &review.CreateReviewRequest{
		ProductID: c.Params("id"),
		UserID:    userKey(c),
		Rating:    body.Rating,
		Title:     body.Title,
		Comment:   body.Comment,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// UpdateReview handles PUT /reviews/:id.
func (h *Handlers) UpdateReview(c *fiber.Ctx) error {
	var body UpdateReviewBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	r, err := h.reviews.UpdateReview(c.UserContext(), &review.UpdateReviewRequest{
		ReviewID: c.Params("id"),
		UserID:   userKey(c),
		Rating:   body.Rating,
		Title:    body.Title,
		Comment:  body.Comment,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(r)
}

// DeleteReview handles DELETE /reviews/:id.
func (h *Handlers) DeleteReview(c *fiber.Ctx) error {
	resp, err := h.reviews.DeleteReview(c.UserContext(), &review.DeleteReviewRequest{
		ReviewID: c.Params("id"),
		UserID:   userKey(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(resp)
}

// Notifications handles GET /notifications.
func (h *Handlers) Notifications(c *fiber.Ctx) error {
	list := []notification.Notification{}
	if h.notifications != nil {
		list = h.notifications.Notifications(userKey(c))
	}
	return c.JSON(fiber.Map{"notifications": list})
}

// UpgradeOrderFeed authenticates /ws/orders with the token query parameter,
// since browsers cannot set headers on WebSocket requests.
func (h *Handlers) UpgradeOrderFeed(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if h.notifications == nil {
		return fiber.ErrServiceUnavailable
	}

	token := c.Query("token")
	if token == "" {
		return unauthorized(c, "token query parameter is required")
	}
	claims, err := h.auth.ValidateToken(c.UserContext(), token)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	c.Locals("user_id", claims.UserID)
	return c.Next()
}

// OrderFeed serves an upgraded /ws/orders connection.
func (h *Handlers) OrderFeed(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	h.notifications.ServeOrderFeed(userID, conn)
}

// Health reports the health of every registered module. Any unhealthy
// module degrades the response to 503.
func (h *Handlers) Health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "healthy",
		Modules: make(map[string]mono.HealthStatus, len(h.checks)),
	}
	for _, check := range h.checks {
		status := check.Health(c.UserContext())
		resp.Modules[check.Name()] = status
		if !status.Healthy {
			resp.Status = "degraded"
		}
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
