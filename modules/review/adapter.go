package review

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/beverage-storefront/domain/review"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ReviewPort is the port other modules use to reach the review aggregator.
type ReviewPort interface {
	CreateReview(ctx context.Context, req *CreateReviewRequest) (*domain.Review, error)
	UpdateReview(ctx context.Context, req *UpdateReviewRequest) (*domain.Review, error)
	DeleteReview(ctx context.Context, req *DeleteReviewRequest) (*DeleteReviewResponse, error)
	ListReviews(ctx context.Context, req *ListReviewsRequest) (*ListReviewsResponse, error)
}

// ReviewAdapter implements ReviewPort using the service container.
type ReviewAdapter struct {
	container mono.ServiceContainer
}

var _ ReviewPort = (*ReviewAdapter)(nil)

// NewReviewAdapter creates a new ReviewAdapter.
func NewReviewAdapter(container mono.ServiceContainer) *ReviewAdapter {
	if container == nil {
		panic("review adapter requires non-nil ServiceContainer")
	}
	return &ReviewAdapter{container: container}
}

// callService invokes a request-reply service and decodes its reply into resp.
func callService[T any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *T) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *ReviewAdapter) CreateReview(ctx context.Context, req *CreateReviewRequest) (*domain.Review, error) {
	var resp domain.Review
	if err := callService(ctx, a.container, "create-review", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *ReviewAdapter) UpdateReview(ctx context.Context, req *UpdateReviewRequest) (*domain.Review, error) {
	var resp domain.Review
	if err := callService(ctx, a.container, "update-review", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *ReviewAdapter) DeleteReview(ctx context.Context, req *DeleteReviewRequest) (*DeleteReviewResponse, error) {
	var resp DeleteReviewResponse
	if err := callService(ctx, a.container, "delete-review", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *ReviewAdapter) ListReviews(ctx context.Context, req *ListReviewsRequest) (*ListReviewsResponse, error) {
	var resp ListReviewsResponse
	if err := callService(ctx, a.container, "list-reviews", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
