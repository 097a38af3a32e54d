package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/apperror"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/google/uuid"
	"github.com/moby/locker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "user-1"

func setupService(t *testing.T) (*Service, database.Store) {
	t.Helper()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	store := database.NewStore(db)
	return NewService(store, locker.New()), store
}

func seedProduct(t *testing.T, store database.Store, name string, price int64, active bool) *product.Product {
	t.Helper()
	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: name,
		Price:       price,
		Category:    product.CategoryJuice,
		Stock:       100,
		Volume:      "1L",
		Brand:       "Acme",
		IsActive:    active,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func TestService_GetCreatesEmptyCart(t *testing.T) {
	svc, _ := setupService(t)

	c, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalPrice)

	again, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
}

func TestService_AddItemTotals(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	a := seedProduct(t, store, "Product A", 10000, true)
	b := seedProduct(t, store, "Product B", 5000, true)

	_, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)
	c, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, c.Items, 2, "adding an existing product merges lines")
	assert.Equal(t, a.ID, c.Items[0].ProductID)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, int64(20000), c.Items[0].Subtotal)
	assert.Equal(t, int64(25000), c.TotalPrice)
	assert.Equal(t, 3, c.ItemCount)
}

func TestService_AddItemErrors(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	active := seedProduct(t, store, "Active", 1000, true)
	inactive := seedProduct(t, store, "Retired", 1000, false)

	tests := []struct {
		name    string
		req     AddItemRequest
		wantErr error
	}{
		{name: "zero quantity", req: AddItemRequest{UserID: userID, ProductID: active.ID, Quantity: 0}, wantErr: apperror.ErrInvalidInput},
		{name: "negative quantity", req: AddItemRequest{UserID: userID, ProductID: active.ID, Quantity: -2}, wantErr: apperror.ErrInvalidInput},
		{name: "unknown product", req: AddItemRequest{UserID: userID, ProductID: "missing", Quantity: 1}, wantErr: apperror.ErrNotFound},
		{name: "inactive product", req: AddItemRequest{UserID: userID, ProductID: inactive.ID, Quantity: 1}, wantErr: apperror.ErrInvalidState},
		{name: "no user", req: AddItemRequest{ProductID: active.ID, Quantity: 1}, wantErr: apperror.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	c, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items, "failed adds leave the cart untouched")
}

func TestService_TotalFollowsCurrentPrices(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Lemonade", 4000, true)

	_, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, store.Products().Update(ctx, p.ID, map[string]any{"price": int64(5000)}))

	c, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), c.TotalPrice)
}

func TestService_UpdateItem(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	a := seedProduct(t, store, "A", 1000, true)
	b := seedProduct(t, store, "B", 2000, true)

	_, err := svc.UpdateItem(ctx, UpdateItemRequest{UserID: userID, ProductID: a.ID, Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound, "no cart yet")

	_, err = svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)

	c, err := svc.UpdateItem(ctx, UpdateItemRequest{UserID: userID, ProductID: a.ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), c.TotalPrice)

	_, err = svc.UpdateItem(ctx, UpdateItemRequest{UserID: userID, ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.UpdateItem(ctx, UpdateItemRequest{UserID: userID, ProductID: a.ID, Quantity: -1})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	c, err = svc.UpdateItem(ctx, UpdateItemRequest{UserID: userID, ProductID: a.ID, Quantity: 0})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, b.ID, c.Items[0].ProductID)
	assert.Equal(t, int64(2000), c.TotalPrice)
}

func TestService_UpdateToZeroMatchesRemove(t *testing.T) {
	svcA, storeA := setupService(t)
	svcB, storeB := setupService(t)
	ctx := context.Background()

	run := func(svc *Service, store database.Store, remove func(productID string) (*CartResponse, error)) *CartResponse {
		a := seedProduct(t, store, "A", 1500, true)
		b := seedProduct(t, store, "B", 2500, true)
		_, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: b.ID, Quantity: 1})
		require.NoError(t, err)
		c, err := remove(a.ID)
		require.NoError(t, err)
		return c
	}

	viaUpdate := run(svcA, storeA, func(id string) (*CartResponse, error) {
		return svcA.UpdateItem(ctx, UpdateItemRequest{UserID: userID, ProductID: id, Quantity: 0})
	})
	viaRemove := run(svcB, storeB, func(id string) (*CartResponse, error) {
		return svcB.RemoveItem(ctx, RemoveItemRequest{UserID: userID, ProductID: id})
	})

	assert.Equal(t, viaRemove.TotalPrice, viaUpdate.TotalPrice)
	assert.Equal(t, len(viaRemove.Items), len(viaUpdate.Items))
	assert.Equal(t, viaRemove.Items[0].Quantity, viaUpdate.Items[0].Quantity)
}

func TestService_RemoveAbsentItemIsNoop(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	a := seedProduct(t, store, "A", 1000, true)

	_, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)

	c, err := svc.RemoveItem(ctx, RemoveItemRequest{UserID: userID, ProductID: "not-there"})
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, int64(2000), c.TotalPrice)
}

func TestService_Clear(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	a := seedProduct(t, store, "A", 1000, true)

	_, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)

	c, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalPrice)

	c, err = svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestService_DeletedProductStaysPriced(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	a := seedProduct(t, store, "A", 1000, true)

	_, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, store.Products().Delete(ctx, a.ID))

	c, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.False(t, c.Items[0].Available)
	assert.Equal(t, int64(2000), c.TotalPrice)
}

func TestService_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	a := seedProduct(t, store, "A", 100, true)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, AddItemRequest{UserID: userID, ProductID: a.ID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	c, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, workers, c.Items[0].Quantity)
	assert.Equal(t, int64(workers*100), c.TotalPrice)
}
