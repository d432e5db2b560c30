// Package live pushes fresh dashboard aggregates to open WebSocket
// connections whenever a user's session list changes. Every update is a
// full recompute from the current list; deltas are never applied, so
// consumers only ever see complete snapshots.
package live

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/dateutil"
	"github.com/Sh16coder/Trackitstudy/internal/service"
	"github.com/Sh16coder/Trackitstudy/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const changeChannelPrefix = "session_updates:"

// client pairs a connection with a write mutex. gorilla/websocket allows
// at most one concurrent writer per connection, so every outbound frame
// goes through writeJSON.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	cancelFuncs map[string]context.CancelFunc
	sessionRepo storage.SessionRepository
	redisClient *redis.Client // nil in single-instance deployments
	logger      internal.Logger
}

func NewHub(sessionRepo storage.SessionRepository, redisClient *redis.Client, logger internal.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*client),
		cancelFuncs: make(map[string]context.CancelFunc),
		sessionRepo: sessionRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// HandleConnection upgrades the request and keeps the connection
// registered until the peer goes away. The caller has already
// authenticated the user.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("live: websocket upgrade failed: %v", err)
		return
	}

	cl := &client{conn: conn}
	h.register(userID, cl)

	// Push the current snapshot immediately so a fresh connection does
	// not wait for the next change.
	h.pushSnapshot(context.Background(), userID)

	go func() {
		defer h.unregister(userID, cl)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifyChange is called after a session write. With redis configured
// the change fans out to every instance; otherwise the local
// connections are served directly. Safe on a nil hub.
func (h *Hub) NotifyChange(ctx context.Context, userID string) {
	if h == nil {
		return
	}
	if h.redisClient != nil {
		if err := h.redisClient.Publish(ctx, changeChannelPrefix+userID, "changed").Err(); err != nil {
			h.logger.Warnf("live: publish failed, falling back to local push: %v", err)
			h.pushSnapshot(ctx, userID)
		}
		return
	}
	h.pushSnapshot(ctx, userID)
}

func (h *Hub) register(userID string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[userID] = append(h.connections[userID], cl)

	if h.redisClient != nil && len(h.connections[userID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.relayChanges(ctx, userID)
	}

	h.logger.Debugf("live: connected user %s (total: %d)", userID, len(h.connections[userID]))
}

func (h *Hub) unregister(userID string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cl.conn.Close()

	conns := h.connections[userID]
	for i, c := range conns {
		if c == cl {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
			delete(h.cancelFuncs, userID)
		}
	}

	h.logger.Debugf("live: disconnected user %s", userID)
}

// relayChanges turns redis change notices into local pushes while the
// user has at least one open connection.
func (h *Hub) relayChanges(ctx context.Context, userID string) {
	pubsub := h.redisClient.Subscribe(ctx, changeChannelPrefix+userID)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			h.pushSnapshot(ctx, userID)
		}
	}
}

// pushSnapshot recomputes the owner's view from the full session list
// and writes it to every open connection. A newer snapshot simply
// supersedes earlier ones; partial results are never merged.
func (h *Hub) pushSnapshot(ctx context.Context, userID string) {
	view, err := service.LoadDashboard(ctx, h.sessionRepo, userID, dateutil.Today())
	if err != nil {
		h.logger.Errorf("live: failed to recompute view for %s: %v", userID, err)
		return
	}

	h.mu.RLock()
	conns := make([]*client, len(h.connections[userID]))
	copy(conns, h.connections[userID])
	h.mu.RUnlock()

	for _, cl := range conns {
		if err := cl.writeJSON(view); err != nil {
			h.logger.Warnf("live: write failed for %s: %v", userID, err)
		}
	}
}
