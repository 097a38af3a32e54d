package order

import (
	"context"
	"sync"
	"testing"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/apperror"
	domain "github.com/example/beverage-storefront/domain/order"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/example/beverage-storefront/domain/user"
	"github.com/google/uuid"
	"github.com/moby/locker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buyerID = "buyer-1"

func setupService(t *testing.T) (*Service, database.Store) {
	t.Helper()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	store := database.NewStore(db)
	svc, err := NewService(store, locker.New())
	require.NoError(t, err)
	return svc, store
}

func seedProduct(t *testing.T, store database.Store, name string, price int64, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: name,
		Price:       price,
		Category:    product.CategorySoftDrink,
		Stock:       stock,
		Volume:      "330ml",
		Brand:       "Acme",
		IsActive:    true,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func fillCart(t *testing.T, store database.Store, userID string, lines map[string]int) {
	t.Helper()
	ctx := context.Background()
	c, err := store.Carts().GetOrCreate(ctx, userID)
	require.NoError(t, err)
	for productID, qty := range lines {
		c.AddItem(productID, qty)
	}
	require.NoError(t, store.Carts().Save(ctx, c))
}

func validCheckout(userID string) CheckoutRequest {
	return CheckoutRequest{
		UserID: userID,
		ShippingAddress: domain.ShippingAddress{
			Street:  "Jl. Merdeka 1",
			City:    "Jakarta",
			ZipCode: "10110",
			Country: "Indonesia",
		},
		PaymentMethod: domain.PaymentBankTransfer,
	}
}

func TestService_Checkout(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	a := seedProduct(t, store, "Cola", 10000, 10)
	b := seedProduct(t, store, "Lemonade", 5000, 10)
	fillCart(t, store, buyerID, map[string]int{a.ID: 2, b.ID: 1})

	o, err := svc.Checkout(ctx, validCheckout(buyerID))
	require.NoError(t, err)

	assert.True(t, IsValidOrderNumber(o.OrderNumber))
	assert.Equal(t, int64(25000), o.TotalPrice)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
	require.Len(t, o.Items, 2)

	got, err := store.Products().FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)
	got, err = store.Products().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)

	c, err := store.Carts().FindByUserID(ctx, buyerID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.TotalPrice)
}

func TestService_CheckoutSnapshotsPrices(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Cold Brew", 30000, 5)
	fillCart(t, store, buyerID, map[string]int{p.ID: 1})

	o, err := svc.Checkout(ctx, validCheckout(buyerID))
	require.NoError(t, err)

	require.NoError(t, store.Products().Update(ctx, p.ID, map[string]any{
		"price": int64(45000),
		"name":  "Cold Brew Reserve",
	}))

	stored, err := store.Orders().FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(30000), stored.Items[0].Price)
	assert.Equal(t, "Cold Brew", stored.Items[0].ProductName)
	assert.Equal(t, int64(30000), stored.TotalPrice)
}

func TestService_CheckoutEmptyCart(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, validCheckout(buyerID))
	assert.ErrorIs(t, err, apperror.ErrInvalidState, "missing cart")

	_, err = store.Carts().GetOrCreate(ctx, buyerID)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, validCheckout(buyerID))
	assert.ErrorIs(t, err, apperror.ErrInvalidState, "empty cart")

	stats, err := store.Orders().Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
}

func TestService_CheckoutValidation(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		name   string
		modify func(r *CheckoutRequest)
	}{
		{"missing street", func(r *CheckoutRequest) { r.ShippingAddress.Street = " " }},
		{"missing city", func(r *CheckoutRequest) { r.ShippingAddress.City = "" }},
		{"missing zip code", func(r *CheckoutRequest) { r.ShippingAddress.ZipCode = "" }},
		{"missing country", func(r *CheckoutRequest) { r.ShippingAddress.Country = "" }},
		{"unknown payment method", func(r *CheckoutRequest) { r.PaymentMethod = "barter" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCheckout(buyerID)
			tt.modify(&req)
			_, err := svc.Checkout(context.Background(), req)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
}

func TestService_CheckoutInsufficientStockRollsBack(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	plenty := seedProduct(t, store, "Water", 3000, 10)
	scarce := seedProduct(t, store, "Limited Tea", 8000, 1)
	fillCart(t, store, buyerID, map[string]int{plenty.ID: 3, scarce.ID: 2})

	_, err := svc.Checkout(ctx, validCheckout(buyerID))
	require.ErrorIs(t, err, apperror.ErrInvalidState)

	stats, err := store.Orders().Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)

	got, err := store.Products().FindByID(ctx, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	got, err = store.Products().FindByID(ctx, scarce.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	c, err := store.Carts().FindByUserID(ctx, buyerID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
}

func TestService_CheckoutInactiveProduct(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Seasonal Juice", 12000, 10)
	fillCart(t, store, buyerID, map[string]int{p.ID: 1})

	require.NoError(t, store.Products().Update(ctx, p.ID, map[string]any{"is_active": false}))

	_, err := svc.Checkout(ctx, validCheckout(buyerID))
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestService_ConcurrentCheckoutPlacesOneOrder(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Espresso", 20000, 10)
	fillCart(t, store, buyerID, map[string]int{p.ID: 1})

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Checkout(ctx, validCheckout(buyerID)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
}

func TestService_GetByIDOwnership(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Cola", 10000, 10)
	fillCart(t, store, buyerID, map[string]int{p.ID: 1})
	o, err := svc.Checkout(ctx, validCheckout(buyerID))
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, GetOrderRequest{OrderID: o.ID, UserID: buyerID, Role: user.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, got.OrderNumber)

	_, err = svc.GetByID(ctx, GetOrderRequest{OrderID: o.ID, UserID: "someone-else", Role: user.RoleUser})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.GetByID(ctx, GetOrderRequest{OrderID: o.ID, UserID: "admin-1", Role: user.RoleAdmin})
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, GetOrderRequest{OrderID: "missing", UserID: buyerID, Role: user.RoleUser})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_GetMine(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Cola", 10000, 10)

	for i := 0; i < 2; i++ {
		fillCart(t, store, buyerID, map[string]int{p.ID: 1})
		_, err := svc.Checkout(ctx, validCheckout(buyerID))
		require.NoError(t, err)
	}

	mine, err := svc.GetMine(ctx, buyerID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	others, err := svc.GetMine(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestService_UpdateStatus(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Cola", 10000, 10)
	fillCart(t, store, buyerID, map[string]int{p.ID: 1})
	o, err := svc.Checkout(ctx, validCheckout(buyerID))
	require.NoError(t, err)

	delivered := domain.StatusDelivered
	_, err = svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID, Status: &delivered, Role: user.RoleUser})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID, Status: &delivered, Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
	assert.Equal(t, domain.PaymentPending, updated.PaymentStatus)

	completed := domain.PaymentCompleted
	updated, err = svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID, PaymentStatus: &completed, Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
	assert.Equal(t, domain.PaymentCompleted, updated.PaymentStatus)

	bogus := domain.Status("lost")
	_, err = svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID, Status: &bogus, Role: user.RoleAdmin})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID, Role: user.RoleAdmin})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: "missing", Status: &delivered, Role: user.RoleAdmin})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_ListAllAndStats(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Cola", 10000, 50)

	var placed []*domain.Order
	for i := 0; i < 3; i++ {
		fillCart(t, store, buyerID, map[string]int{p.ID: 1})
		o, err := svc.Checkout(ctx, validCheckout(buyerID))
		require.NoError(t, err)
		placed = append(placed, o)
	}
	cancelled := domain.StatusCancelled
	_, err := svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: placed[0].ID, Status: &cancelled, Role: user.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ListAll(ctx, ListOrdersRequest{Role: user.RoleUser})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	page, err := svc.ListAll(ctx, ListOrdersRequest{Role: user.RoleAdmin, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, 2, page.TotalPages)

	pending, err := svc.ListAll(ctx, ListOrdersRequest{Role: user.RoleAdmin, Status: domain.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Total)
	assert.Equal(t, defaultListLimit, pending.Limit)

	_, err = svc.ListAll(ctx, ListOrdersRequest{Role: user.RoleAdmin, Status: "lost"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Stats(ctx, user.RoleUser)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	stats, err := svc.Stats(ctx, user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(20000), stats.TotalRevenue)
}
