package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/beverage-storefront/database"
	domain "github.com/example/beverage-storefront/domain/review"
	"github.com/example/beverage-storefront/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

const (
	actionCreated = "created"
	actionUpdated = "updated"
	actionDeleted = "deleted"
)

// Module provides review services.
type Module struct {
	store    database.Store
	service  *Service
	eventBus mono.EventBus
}

var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

func NewModule(store database.Store) *Module {
	return &Module{store: store}
}

func (m *Module) Name() string {
	return "review"
}

func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ReviewChangedV1.ToBase(),
	}
}

func (m *Module) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("store not set")
	}
	m.service = NewService(m.store)
	log.Println("[review] Module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	log.Println("[review] Module stopped")
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
		container, "create-review", json.Unmarshal, json.Marshal, m.createReview,
	); err != nil {
		return fmt.Errorf("failed to register create-review service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-review", json.Unmarshal, json.Marshal, m.updateReview,
	); err != nil {
		return fmt.Errorf("failed to register update-review service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-review", json.Unmarshal, json.Marshal, m.deleteReview,
	); err != nil {
		return fmt.Errorf("failed to register delete-review service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-reviews", json.Unmarshal, json.Marshal, m.listReviews,
	); err != nil {
		return fmt.Errorf("failed to register list-reviews service: %w", err)
	}

	log.Printf("[review] Registered services: create-review, update-review, delete-review, list-reviews")
	return nil
}

func (m *Module) createReview(ctx context.Context, req CreateReviewRequest, _ *mono.Msg) (domain.Review, error) {
	res, err := m.service.Create(ctx, req)
	if err != nil {
		return domain.Review{}, err
	}
	m.publish(res.Review.ID, res.Review.ProductID, res.Review.UserID, actionCreated, res.Rating, res.ReviewCount)
	return res.Review, nil
}

func (m *Module) updateReview(ctx context.Context, req UpdateReviewRequest, _ *mono.Msg) (domain.Review, error) {
	res, err := m.service.Update(ctx, req)
	if err != nil {
		return domain.Review{}, err
	}
	m.publish(res.Review.ID, res.Review.ProductID, res.Review.UserID, actionUpdated, res.Rating, res.ReviewCount)
	return res.Review, nil
}

func (m *Module) deleteReview(ctx context.Context, req DeleteReviewRequest, _ *mono.Msg) (DeleteReviewResponse, error) {
	res, err := m.service.Delete(ctx, req)
	if err != nil {
		return DeleteReviewResponse{}, err
	}
	m.publish(req.ReviewID, res.ProductID, req.UserID, actionDeleted, res.Rating, res.ReviewCount)
	return *res, nil
}

func (m *Module) listReviews(ctx context.Context, req ListReviewsRequest, _ *mono.Msg) (ListReviewsResponse, error) {
	resp, err := m.service.ListByProduct(ctx, req)
	if err != nil {
		return ListReviewsResponse{}, err
	}
	return *resp, nil
}

// publish is best-effort; the review write has already committed.
func (m *Module) publish(reviewID, productID, userID, action string, rating float64, count int) {
	if m.eventBus == nil {
		return
	}
	event := events.ReviewChangedEvent{
		ReviewID:    reviewID,
		ProductID:   productID,
		UserID:      userID,
		Action:      action,
		Rating:      rating,
		ReviewCount: count,
		ChangedAt:   time.Now(),
	}
	if err := events.ReviewChangedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[review] Warning: failed to publish ReviewChanged event for review %s: %v", reviewID, err)
	}
}
