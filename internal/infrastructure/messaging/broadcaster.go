package messaging

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
)

// TrackClient represents a single connected dashboard client watching the
// live analytics feed.
type TrackClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// TrackEvent is one tracking callback pushed to connected dashboards.
type TrackEvent struct {
	DrillID   string               `json:"drillId"`
	Type      string               `json:"type"` // "open" or "click"
	Status    entities.DrillStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	IPAddress string               `json:"ipAddress,omitempty"`
	UserAgent string               `json:"userAgent,omitempty"`
}

// TrackBroadcaster fans tracking events out to every connected dashboard.
type TrackBroadcaster struct {
	clients    map[*TrackClient]bool
	register   chan *TrackClient
	unregister chan *TrackClient
	events     chan TrackEvent
	done       chan struct{}
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewTrackBroadcaster creates a new broadcaster instance.
func NewTrackBroadcaster(logger *slog.Logger) *TrackBroadcaster {
	return &TrackBroadcaster{
		clients:    make(map[*TrackClient]bool),
		register:   make(chan *TrackClient),
		unregister: make(chan *TrackClient),
		events:     make(chan TrackEvent, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *TrackBroadcaster) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.Info("analytics feed client connected", "clients", b.clientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Info("analytics feed client disconnected", "clients", b.clientCount())

		case event := <-b.events:
			b.broadcast(event)

		case <-b.done:
			b.mu.Lock()
			for client := range b.clients {
				close(client.Send)
				delete(b.clients, client)
			}
			b.mu.Unlock()
			return
		}
	}
}

// Register queues a client for registration. After Stop the client is
// refused and its send channel closed so its write pump exits.
func (b *TrackBroadcaster) Register(client *TrackClient) {
	select {
	case b.register <- client:
	case <-b.done:
		close(client.Send)
	}
}

// Unregister queues a client for unregistration.
func (b *TrackBroadcaster) Unregister(client *TrackClient) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// Publish queues a tracking event for broadcast. Publishing never blocks the
// tracking handler; when the queue is full the event is dropped (dashboards
// reconcile from the store on refresh anyway).
func (b *TrackBroadcaster) Publish(event TrackEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn("analytics feed queue full, dropping event", "drillId", event.DrillID)
	}
}

// Stop shuts the broadcaster down and disconnects all clients.
func (b *TrackBroadcaster) Stop() {
	close(b.done)
}

func (b *TrackBroadcaster) broadcast(event TrackEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to marshal tracking event", "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
			// Slow client; skip rather than stall the feed.
		}
	}
}

func (b *TrackBroadcaster) clientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
