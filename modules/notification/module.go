// Package notification records storefront events and pushes order updates
// to the owner's WebSocket connections.
package notification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/beverage-storefront/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const maxLogEntries = 1000

const (
	TypeOrderPlaced        = "order_placed"
	TypeOrderStatusChanged = "order_status_changed"
	TypeReviewChanged      = "review_changed"
)

// Notification is one recorded event addressed to a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderUpdate is the message written to WebSocket clients.
type OrderUpdate struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	OrderStatus   string    `json:"order_status,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	TotalPrice    int64     `json:"total_price,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NotificationModule consumes order and review events.
type NotificationModule struct {
	hub           *Hub
	cancelHub     context.CancelFunc
	notifications []Notification
	mu            sync.RWMutex
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.HealthCheckableModule = (*NotificationModule)(nil)

func NewModule() *NotificationModule {
	return &NotificationModule{
		hub:           NewHub(),
		notifications: make([]Notification, 0),
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[notification] Module started - listening for order and review events")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	clients := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[notification] Module stopped - %d clients were connected", clients)
	return nil
}

func (m *NotificationModule) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	recorded := len(m.notifications)
	m.mu.RUnlock()

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"notifications":     recorded,
		},
	}
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderPlacedV1, m.handleOrderPlaced, m); err != nil {
		return fmt.Errorf("failed to register OrderPlaced consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderStatusChangedV1, m.handleOrderStatusChanged, m); err != nil {
		return fmt.Errorf("failed to register OrderStatusChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ReviewChangedV1, m.handleReviewChanged, m); err != nil {
		return fmt.Errorf("failed to register ReviewChanged consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: OrderPlaced, OrderStatusChanged, ReviewChanged")
	return nil
}

func (m *NotificationModule) handleOrderPlaced(_ context.Context, event events.OrderPlacedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Order placed: %s by %s", event.OrderNumber, event.UserID)
	m.record(event.UserID, TypeOrderPlaced,
		fmt.Sprintf("Order %s received (%d items, total %d)", event.OrderNumber, len(event.Items), event.TotalPrice))

	m.hub.SendToUser(event.UserID, OrderUpdate{
		Type:        TypeOrderPlaced,
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		TotalPrice:  event.TotalPrice,
		Timestamp:   event.PlacedAt,
	})
	return nil
}

func (m *NotificationModule) handleOrderStatusChanged(_ context.Context, event events.OrderStatusChangedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Order %s is now %s / payment %s", event.OrderNumber, event.OrderStatus, event.PaymentStatus)
	m.record(event.UserID, TypeOrderStatusChanged,
		fmt.Sprintf("Order %s is %s, payment %s", event.OrderNumber, event.OrderStatus, event.PaymentStatus))

	m.hub.SendToUser(event.UserID, OrderUpdate{
		Type:          TypeOrderStatusChanged,
		OrderID:       event.OrderID,
		OrderNumber:   event.OrderNumber,
		OrderStatus:   event.OrderStatus,
		PaymentStatus: event.PaymentStatus,
		Timestamp:     event.ChangedAt,
	})
	return nil
}

func (m *NotificationModule) handleReviewChanged(_ context.Context, event events.ReviewChangedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Review %s %s for product %s", event.ReviewID, event.Action, event.ProductID)
	m.record(event.UserID, TypeReviewChanged,
		fmt.Sprintf("Your review was %s; product rating is now %.1f from %d reviews", event.Action, event.Rating, event.ReviewCount))
	return nil
}

func (m *NotificationModule) record(userID, notificationType, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications = append(m.notifications, Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		Timestamp: time.Now(),
	})
	if over := len(m.notifications) - maxLogEntries; over > 0 {
		m.notifications = append(m.notifications[:0:0], m.notifications[over:]...)
	}
}

// Notifications returns the recorded notifications of userID, newest first.
func (m *NotificationModule) Notifications(userID string) []Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Notification, 0)
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].UserID == userID {
			result = append(result, m.notifications[i])
		}
	}
	return result
}

// Hub returns the WebSocket hub.
func (m *NotificationModule) Hub() *Hub {
	return m.hub
}

// ServeOrderFeed keeps an authenticated connection registered until the peer
// goes away. Incoming messages are ignored.
func (m *NotificationModule) ServeOrderFeed(userID string, conn *websocket.Conn) {
	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
	}
	m.hub.Register(client)
	defer func() {
		m.hub.Unregister(client)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[notification] WebSocket error for client %s: %v", client.ID, err)
			}
			return
		}
	}
}
