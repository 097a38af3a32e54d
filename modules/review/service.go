// Package review keeps product reviews and the rating derived from them.
package review

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/apperror"
	domain "github.com/example/beverage-storefront/domain/review"
	"github.com/example/beverage-storefront/pkg/pagination"
	"github.com/google/uuid"
	"github.com/moby/locker"
)

const (
	defaultListLimit = 5
	maxListLimit     = 50
	maxTitleLength   = 100
	maxCommentLength = 2000
)

// Service implements review operations. Every mutation holds the product's
// lock and recomputes the product rating in the same transaction.
type Service struct {
	store database.Store
	locks *locker.Locker
}

// NewService creates a review service.
func NewService(store database.Store) *Service {
	return &Service{
		store: store,
		locks: locker.New(),
	}
}

// Create stores the caller's first review of a product.
func (s *Service) Create(ctx context.Context, req CreateReviewRequest) (*Result, error) {
	if req.UserID == "" {
		return nil, apperror.Unauthorized("user id is required")
	}
	rv := &domain.Review{
		ID:                 uuid.New().String(),
		ProductID:          req.ProductID,
		UserID:             req.UserID,
		Rating:             req.Rating,
		Title:              strings.TrimSpace(req.Title),
		Comment:            strings.TrimSpace(req.Comment),
		IsVerifiedPurchase: true,
	}
	if err := validateReview(rv); err != nil {
		return nil, err
	}

	s.locks.Lock(req.ProductID)
	defer s.locks.Unlock(req.ProductID)

	var agg domain.Aggregate
	err := s.store.Transaction(ctx, func(tx database.Store) error {
		if _, err := tx.Products().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		exists, err := tx.Reviews().ExistsForUser(ctx, req.ProductID, req.UserID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict("you have already reviewed this product")
		}
		if err := tx.Reviews().Create(ctx, rv); err != nil {
			return err
		}
		agg, err = recompute(ctx, tx, req.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[review] %s reviewed %s with %d, rating now %.2f (%d)", rv.UserID, rv.ProductID, rv.Rating, agg.Rating, agg.Count)
	return &Result{Review: *rv, Rating: agg.Rating, ReviewCount: agg.Count}, nil
}

// Update applies the provided fields. Only the author may update a review.
func (s *Service) Update(ctx context.Context, req UpdateReviewRequest) (*Result, error) {
	current, err := s.store.Reviews().FindByID(ctx, req.ReviewID)
	if err != nil {
		return nil, err
	}
	if current.UserID != req.UserID {
		return nil, apperror.Forbidden("only the author may update this review")
	}

	s.locks.Lock(current.ProductID)
	defer s.locks.Unlock(current.ProductID)

	var (
		rv  *domain.Review
		agg domain.Aggregate
	)
	err = s.store.Transaction(ctx, func(tx database.Store) error {
		var err error
		rv, err = tx.Reviews().FindByID(ctx, req.ReviewID)
		if err != nil {
			return err
		}
		if req.Rating != nil {
			rv.Rating = *req.Rating
		}
		// blank title or comment keeps the stored text
		if req.Title != nil {
			if title := strings.TrimSpace(*req.Title); title != "" {
				rv.Title = title
			}
		}
		if req.Comment != nil {
			if comment := strings.TrimSpace(*req.Comment); comment != "" {
				rv.Comment = comment
			}
		}
		if err := validateReview(rv); err != nil {
			return err
		}
		rv.UpdatedAt = time.Now()

		if err := tx.Reviews().Update(ctx, rv); err != nil {
			return err
		}
		agg, err = recompute(ctx, tx, rv.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[review] Review %s updated, rating of %s now %.2f", rv.ID, rv.ProductID, agg.Rating)
	return &Result{Review: *rv, Rating: agg.Rating, ReviewCount: agg.Count}, nil
}

// Delete removes a review. Only the author may delete it.
func (s *Service) Delete(ctx context.Context, req DeleteReviewRequest) (*DeleteReviewResponse, error) {
	current, err := s.store.Reviews().FindByID(ctx, req.ReviewID)
	if err != nil {
		return nil, err
	}
	if current.UserID != req.UserID {
		return nil, apperror.Forbidden("only the author may delete this review")
	}

	s.locks.Lock(current.ProductID)
	defer s.locks.Unlock(current.ProductID)

	var agg domain.Aggregate
	err = s.store.Transaction(ctx, func(tx database.Store) error {
		if err := tx.Reviews().Delete(ctx, current.ID); err != nil {
			return err
		}
		var err error
		agg, err = recompute(ctx, tx, current.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[review] Review %s deleted, rating of %s now %.2f (%d)", current.ID, current.ProductID, agg.Rating, agg.Count)
	return &DeleteReviewResponse{
		Deleted:     true,
		ProductID:   current.ProductID,
		Rating:      agg.Rating,
		ReviewCount: agg.Count,
	}, nil
}

// ListByProduct returns a page of a product's reviews, newest first.
func (s *Service) ListByProduct(ctx context.Context, req ListReviewsRequest) (*ListReviewsResponse, error) {
	p := pagination.New(req.Page, req.Limit, defaultListLimit, maxListLimit)
	reviews, total, err := s.store.Reviews().ListByProduct(ctx, req.ProductID, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &ListReviewsResponse{
		Reviews:    reviews,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}, nil
}

// recompute rescans the product's reviews and stores the mean and count.
func recompute(ctx context.Context, tx database.Store, productID string) (domain.Aggregate, error) {
	agg, err := tx.Reviews().Aggregate(ctx, productID)
	if err != nil {
		return domain.Aggregate{}, err
	}
	if err := tx.Products().UpdateRating(ctx, productID, agg.Rating, agg.Count); err != nil {
		return domain.Aggregate{}, err
	}
	return agg, nil
}

func validateReview(rv *domain.Review) error {
	switch {
	case rv.ProductID == "":
		return apperror.InvalidInput("product_id is required")
	case rv.Rating < domain.MinRating || rv.Rating > domain.MaxRating:
		return apperror.InvalidInput("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	case rv.Title == "":
		return apperror.InvalidInput("title is required")
	case utf8.RuneCountInString(rv.Title) > maxTitleLength:
		return apperror.InvalidInput("title must be at most %d characters", maxTitleLength)
	case rv.Comment == "":
		return apperror.InvalidInput("comment is required")
	case utf8.RuneCountInString(rv.Comment) > maxCommentLength:
		return apperror.InvalidInput("comment must be at most %d characters", maxCommentLength)
	}
	return nil
}
