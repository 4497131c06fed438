package ws

import "sync"

// Conn is the minimal channel interface the hub needs; *websocket.Conn
// satisfies it and tests substitute fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub associates each user id with at most one live push channel. A new
// connection for a user replaces the previous one: last-connected-wins, no
// multi-device fan-out.
type Hub struct {
	mu    sync.Mutex
	conns map[string]Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Register stores the connection for the user, closing and replacing any
// previous one.
func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.conns[userID]; ok && old != conn {
		old.Close()
	}
	h.conns[userID] = conn
}

// Unregister removes the user's entry if it still refers to the given
// connection. A replaced connection's deferred unregister must not evict the
// replacement.
func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.conns[userID]; ok && cur == conn {
		delete(h.conns, userID)
	}
}

// Send pushes the event to the user's channel. Returns false when the user
// has no registered channel or the write fails; a failed write closes and
// removes the stale entry so the registry self-heals.
func (h *Hub) Send(userID string, event Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sendLocked(userID, event)
}

// SendToMany pushes the event to every listed user and returns the number of
// successful sends. Individual failures do not short-circuit the loop.
func (h *Hub) SendToMany(userIDs []string, event Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for _, id := range userIDs {
		if h.sendLocked(id, event) {
			sent++
		}
	}
	return sent
}

func (h *Hub) sendLocked(userID string, event Event) bool {
	conn, ok := h.conns[userID]
	if !ok {
		return false
	}
	if err := conn.WriteJSON(event); err != nil {
		conn.Close()
		delete(h.conns, userID)
		return false
	}
	return true
}

// Connected reports whether the user currently has a registered channel.
func (h *Hub) Connected(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.conns[userID]
	return ok
}
