package websocket

import (
	"context"

	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Closed when Run returns.
	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns when ctx is done,
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer.
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish queues a message for all clients. It drops the message when the
// hub is backed up rather than block the caller.
func (h *Hub) Publish(msg Message) {
	raw := encode(msg)
	if raw == nil {
		return
	}
	select {
	case h.broadcast <- raw:
	default:
		log.Warn().Str("action", msg.Action).Msg("Websocket hub is busy, dropping message")
	}
}

// PublishEvent announces a stored activity event.
func (h *Hub) PublishEvent(event models.Event) {
	h.Publish(Message{Action: ActionEventCreated, Payload: event})
}

// Attach registers a client. It reports false once the hub has stopped.
func (h *Hub) Attach(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Detach unregisters a client unless the hub has already stopped.
func (h *Hub) Detach(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
