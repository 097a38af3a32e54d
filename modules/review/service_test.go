package review

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/apperror"
	"github.com/example/beverage-storefront/domain/product"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, database.Store) {
	t.Helper()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	store := database.NewStore(db)
	return NewService(store), store
}

func seedProduct(t *testing.T, store database.Store) *product.Product {
	t.Helper()
	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        "Green Tea",
		Description: "Unsweetened",
		Price:       8000,
		Category:    product.CategoryTea,
		Stock:       20,
		Volume:      "500ml",
		Brand:       "Acme",
		IsActive:    true,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func review(productID, userID string, rating int) CreateReviewRequest {
	return CreateReviewRequest{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Title:     "Title",
		Comment:   "Comment",
	}
}

func TestService_CreateRecomputesRating(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	for i, rating := range []int{4, 5, 3} {
		res, err := svc.Create(ctx, review(p.ID, fmt.Sprintf("user-%d", i), rating))
		require.NoError(t, err)
		assert.True(t, res.Review.IsVerifiedPurchase)
		assert.Equal(t, i+1, res.ReviewCount)
	}

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)
	assert.Equal(t, 3, got.ReviewCount)
}

func TestService_CreateErrors(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	_, err := svc.Create(ctx, review(p.ID, "user-1", 5))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  CreateReviewRequest
		want error
	}{
		{"second review by same user", review(p.ID, "user-1", 4), apperror.ErrConflict},
		{"unknown product", review("missing", "user-2", 4), apperror.ErrNotFound},
		{"rating too low", review(p.ID, "user-2", 0), apperror.ErrInvalidInput},
		{"rating too high", review(p.ID, "user-2", 6), apperror.ErrInvalidInput},
		{"missing title", CreateReviewRequest{ProductID: p.ID, UserID: "user-2", Rating: 3, Comment: "c"}, apperror.ErrInvalidInput},
		{"missing user", review(p.ID, "", 3), apperror.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReviewCount)
}

func TestService_Update(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	first, err := svc.Create(ctx, review(p.ID, "user-1", 2))
	require.NoError(t, err)
	_, err = svc.Create(ctx, review(p.ID, "user-2", 4))
	require.NoError(t, err)

	rating := 5
	_, err = svc.Update(ctx, UpdateReviewRequest{ReviewID: first.Review.ID, UserID: "user-2", Rating: &rating})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	title := "Changed my mind"
	res, err := svc.Update(ctx, UpdateReviewRequest{ReviewID: first.Review.ID, UserID: "user-1", Rating: &rating, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Review.Rating)
	assert.Equal(t, "Changed my mind", res.Review.Title)
	assert.Equal(t, "Comment", res.Review.Comment)
	assert.InDelta(t, 4.5, res.Rating, 1e-9)
	assert.Equal(t, 2, res.ReviewCount)

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got.Rating, 1e-9)
	assert.Equal(t, 2, got.ReviewCount)

	bad := 9
	_, err = svc.Update(ctx, UpdateReviewRequest{ReviewID: first.Review.ID, UserID: "user-1", Rating: &bad})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Update(ctx, UpdateReviewRequest{ReviewID: "missing", UserID: "user-1", Rating: &rating})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_UpdateBlankTextKeepsStored(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	created, err := svc.Create(ctx, review(p.ID, "user-1", 3))
	require.NoError(t, err)

	rating := 4
	blank := "  "
	empty := ""
	res, err := svc.Update(ctx, UpdateReviewRequest{
		ReviewID: created.Review.ID,
		UserID:   "user-1",
		Rating:   &rating,
		Title:    &empty,
		Comment:  &blank,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Review.Rating)
	assert.Equal(t, "Title", res.Review.Title)
	assert.Equal(t, "Comment", res.Review.Comment)
}

func TestService_LengthLimitsCountCharacters(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	tests := []struct {
		name    string
		title   string
		comment string
		wantErr bool
	}{
		{"title at limit", strings.Repeat("ü", maxTitleLength), "Comment", false},
		{"title over limit", strings.Repeat("ü", maxTitleLength+1), "Comment", true},
		{"comment at limit", "Title", strings.Repeat("茶", maxCommentLength), false},
		{"comment over limit", "Title", strings.Repeat("茶", maxCommentLength+1), true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := review(p.ID, fmt.Sprintf("user-%d", i), 5)
			req.Title = tt.title
			req.Comment = tt.comment
			_, err := svc.Create(ctx, req)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestService_DeleteLastReviewResetsRating(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	res, err := svc.Create(ctx, review(p.ID, "user-1", 4))
	require.NoError(t, err)

	_, err = svc.Delete(ctx, DeleteReviewRequest{ReviewID: res.Review.ID, UserID: "user-2"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	deleted, err := svc.Delete(ctx, DeleteReviewRequest{ReviewID: res.Review.ID, UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Zero(t, deleted.Rating)
	assert.Zero(t, deleted.ReviewCount)

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Rating)
	assert.Zero(t, got.ReviewCount)

	_, err = svc.Delete(ctx, DeleteReviewRequest{ReviewID: res.Review.ID, UserID: "user-1"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// hard delete frees the (product, user) pair
	_, err = svc.Create(ctx, review(p.ID, "user-1", 3))
	assert.NoError(t, err)
}

func TestService_ConcurrentCreatesKeepAggregateExact(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	const reviewers = 10
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(ctx, review(p.ID, fmt.Sprintf("user-%d", i), i%5+1))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewers, got.ReviewCount)
	assert.InDelta(t, 3.0, got.Rating, 1e-9)
}

func TestService_ListByProduct(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, store)

	for i := 0; i < 7; i++ {
		_, err := svc.Create(ctx, review(p.ID, fmt.Sprintf("user-%d", i), 5))
		require.NoError(t, err)
	}

	page, err := svc.ListByProduct(ctx, ListReviewsRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Total)
	assert.Len(t, page.Reviews, defaultListLimit)
	assert.Equal(t, 2, page.TotalPages)

	second, err := svc.ListByProduct(ctx, ListReviewsRequest{ProductID: p.ID, Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Reviews, 2)

	empty, err := svc.ListByProduct(ctx, ListReviewsRequest{ProductID: "none"})
	require.NoError(t, err)
	assert.Empty(t, empty.Reviews)
	assert.NotNil(t, empty.Reviews)
}
