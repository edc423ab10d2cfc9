// Package notify pushes family invite events to connected users over websockets
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Event types
const (
	EventInviteReceived = "invite_received"
	EventInviteAccepted = "invite_accepted"
	EventInviteRejected = "invite_rejected"
)

// Event is one notification delivered to a user
type Event struct {
	Type     string    `json:"type"`
	InviteID int64     `json:"invite_id"`
	FromName string    `json:"from_name,omitempty"`
	Role     string    `json:"assigned_role,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

// Publisher delivers events to users. The family service depends on this
// rather than on the hub so tests can record events.
type Publisher interface {
	Publish(userID int64, ev Event)
}

type subscriber interface {
	sendChannel() chan []byte
}

type delivery struct {
	userID int64
	data   []byte
}

type registration struct {
	userID int64
	sub    subscriber
}

// Hub fans events out to each user's open connections
type Hub struct {
	clients    map[int64]map[subscriber]struct{}
	register   chan registration
	unregister chan registration
	deliver    chan delivery
	done       chan struct{}

	mu    sync.RWMutex
	count int
}

// NewHub creates a hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[subscriber]struct{}),
		register:   make(chan registration),
		unregister: make(chan registration),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case reg := <-h.register:
			subs, ok := h.clients[reg.userID]
			if !ok {
				subs = make(map[subscriber]struct{})
				h.clients[reg.userID] = subs
			}
			subs[reg.sub] = struct{}{}
			h.setCount(1)
			slog.Debug("Notification client connected", "user_id", reg.userID, "total", h.Connected())

		case reg := <-h.unregister:
			h.remove(reg.userID, reg.sub)

		case d := <-h.deliver:
			for sub := range h.clients[d.userID] {
				select {
				case sub.sendChannel() <- d.data:
				default:
					// Slow consumer
					h.remove(d.userID, sub)
				}
			}

		case <-ctx.Done():
			for userID, subs := range h.clients {
				for sub := range subs {
					h.remove(userID, sub)
				}
			}
			return
		}
	}
}

func (h *Hub) remove(userID int64, sub subscriber) {
	subs, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.clients, userID)
	}
	close(sub.sendChannel())
	h.setCount(-1)
}

func (h *Hub) setCount(delta int) {
	h.mu.Lock()
	h.count += delta
	h.mu.Unlock()
}

// Connected returns the number of open connections
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Publish queues an event for a user. Events for users with no open
// connection are dropped, and so are events arriving while the queue is full.
func (h *Hub) Publish(userID int64, ev Event) {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal notification", "error", err)
		return
	}

	select {
	case h.deliver <- delivery{userID: userID, data: data}:
	default:
		slog.Warn("Notification queue full, dropping event", "user_id", userID, "type", ev.Type)
	}
}

func (h *Hub) subscribe(ctx context.Context, userID int64, sub subscriber) bool {
	select {
	case h.register <- registration{userID: userID, sub: sub}:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) unsubscribe(userID int64, sub subscriber) {
	select {
	case h.unregister <- registration{userID: userID, sub: sub}:
	case <-h.done:
	}
}

type client struct {
	send chan []byte
}

func (c *client) sendChannel() chan []byte {
	return c.send
}

// Serve upgrades the request and streams userID's events until either
// side closes. It blocks for the life of the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int64, originPatterns []string) {
	// The server's write timeout must not end long-lived streams
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	// Incoming frames are ignored; CloseRead cancels ctx once the peer goes away
	ctx := conn.CloseRead(r.Context())

	c := &client{send: make(chan []byte, 16)}
	if !h.subscribe(ctx, userID, c) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.unsubscribe(userID, c)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

var _ Publisher = (*Hub)(nil)
