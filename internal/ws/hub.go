// Package ws implements the task event feed. A single Hub fans task
// lifecycle events out to connected clients: owners receive events for
// their own tasks, admin clients receive every event.
package ws

import (
	"encoding/json"

	"taskhub/internal/models"
	"taskhub/pkg/logger"

	"go.uber.org/zap"
)

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// Event is the wire payload pushed to feed clients.
type Event struct {
	Event string       `json:"event"`
	Task  *models.Task `json:"task"`
}

// Client is one connected feed subscriber. Send carries marshaled
// events; the connection's write loop drains it until the hub closes
// the channel on unregister.
type Client struct {
	UserID  int
	IsAdmin bool
	Send    chan []byte
}

type envelope struct {
	ownerID int
	payload []byte
}

// Hub routes task events to subscribed clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.IsAdmin && client.UserID != msg.ownerID {
					continue
				}
				select {
				case client.Send <- msg.payload:
				default:
					// Slow consumer, drop it.
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish fans a task event out to the owner's clients and to admins.
func (h *Hub) Publish(event string, task *models.Task) {
	payload, err := json.Marshal(Event{Event: event, Task: task})
	if err != nil {
		logger.ErrorLogger.Error("Failed to marshal task event",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}
	h.broadcast <- envelope{ownerID: task.OwnerID, payload: payload}
}
