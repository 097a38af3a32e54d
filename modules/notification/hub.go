package notification

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the part of a WebSocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live connection of an authenticated user.
type Client struct {
	ID     string
	UserID string
	Conn   Conn
}

type delivery struct {
	userID  string
	payload any
}

// Hub fans order updates out to the WebSocket connections of their owner.
type Hub struct {
	clients    map[string]*Client
	users      map[string]map[string]bool // userID -> set of clientIDs
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		users:      make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[notification] Hub shutting down")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case d := <-h.deliver:
			h.handleDeliver(d)
		}
	}
}

// Wait blocks until Run has returned.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues payload for every connection of userID. When the queue is
// full the update is dropped; clients can always re-read their orders.
func (h *Hub) SendToUser(userID string, payload any) {
	select {
	case h.deliver <- delivery{userID: userID, payload: payload}:
	case <-h.done:
	default:
		log.Printf("[notification] Warning: delivery queue full, dropping update for %s", userID)
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserClientCount returns the number of open connections of userID.
func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[string]bool)
	}
	h.users[client.UserID][client.ID] = true
	log.Printf("[notification] Client %s of user %s connected", client.ID, client.UserID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	if ids := h.users[client.UserID]; ids != nil {
		delete(ids, client.ID)
		if len(ids) == 0 {
			delete(h.users, client.UserID)
		}
	}
	log.Printf("[notification] Client %s of user %s disconnected", client.ID, client.UserID)
}

func (h *Hub) handleDeliver(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := h.users[d.userID]
	if len(ids) == 0 {
		return
	}

	data, err := json.Marshal(d.payload)
	if err != nil {
		log.Printf("[notification] Failed to marshal update: %v", err)
		return
	}
	for id := range ids {
		client := h.clients[id]
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[notification] Failed to send to client %s: %v", id, err)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.users = make(map[string]map[string]bool)
}
