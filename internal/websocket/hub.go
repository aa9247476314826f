package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"idea-contract-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub fans session events out to every connected watcher of that session.
type Hub struct {
	// Registered clients: SessionID -> watchers (several tabs may follow one session)
	clients map[string][]*Watcher

	register   chan *Watcher
	unregister chan *Watcher

	// closed once Run returns, so watchers never block on a stopped hub
	done     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// instance id, used to skip our own messages coming back from Redis
	origin string

	logger logger.ILogger
}

type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Watcher),
		unregister: make(chan *Watcher),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Watcher),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case w := <-h.register:
			h.mu.Lock()
			h.clients[w.sessionID] = append(h.clients[w.sessionID], w)
			h.mu.Unlock()
			h.logger.Info("Hub", "Watcher registered", map[string]interface{}{"session_id": w.sessionID})

		case w := <-h.unregister:
			h.remove(w)
		}
	}
}

// join reports false when the hub has already stopped.
func (h *Hub) join(w *Watcher) bool {
	select {
	case h.register <- w:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(w *Watcher) {
	select {
	case h.unregister <- w:
	case <-h.done:
	}
}

func (h *Hub) remove(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watchers, ok := h.clients[w.sessionID]
	if !ok {
		return
	}
	for i, c := range watchers {
		if c == w {
			h.clients[w.sessionID] = append(watchers[:i], watchers[i+1:]...)
			close(w.send)
			break
		}
	}
	if len(h.clients[w.sessionID]) == 0 {
		delete(h.clients, w.sessionID)
		h.logger.Info("Hub", "Session has no more watchers", map[string]interface{}{"session_id": w.sessionID})
	}
}

// Send delivers payload to local watchers of sessionID and publishes it for other instances.
func (h *Hub) Send(sessionID string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "session_event",
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode session event", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}

	h.deliver(sessionID, data)

	if h.rdb != nil {
		msg, _ := json.Marshal(clusterMessage{Origin: h.origin, SessionID: sessionID, Message: data})
		h.rdb.Publish(context.Background(), clusterChannel, msg)
	}
}

// Watchers reports how many local clients follow sessionID.
func (h *Hub) Watchers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) deliver(sessionID string, data []byte) {
	// held for the whole loop so remove cannot close a channel mid-send
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, w := range h.clients[sessionID] {
		select {
		case w.send <- data:
		default:
			h.logger.Warn("Hub", "Watcher buffer full, dropping watcher", map[string]interface{}{"session_id": sessionID})
			go h.leave(w)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.origin || h.Watchers(payload.SessionID) == 0 {
			continue
		}
		h.deliver(payload.SessionID, payload.Message)
	}
}
