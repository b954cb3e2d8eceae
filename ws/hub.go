package ws

import (
	"context"
	"encoding/json"

	"ClinicDesk/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is broadcast to dashboard clients after a record changes.
type Event struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	ID         models.ID `json:"id"`
}

// Client is one websocket connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub keeps the connected clients and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is done, then closes every client.
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
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug().Int("clients", len(h.clients)).Msg("websocket client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug().Int("clients", len(h.clients)).Msg("websocket client unregistered")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// slow consumer
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues a change event. Events are dropped when the queue is full
// so a write request never waits on websocket clients.
func (h *Hub) Publish(collection, action string, id models.ID) {
	message, err := json.Marshal(Event{Collection: collection, Action: action, ID: id})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode change event")
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn().Str("collection", collection).Str("action", action).Msg("change event dropped")
	}
}
