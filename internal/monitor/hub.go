package monitor

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"crisp/interview/internal/session"
)

// Hub fans session lifecycle events out to recruiters watching a live
// interview over WebSocket. One session can have any number of
// watchers; a watcher follows exactly one session.
type Hub struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	watchers map[string]map[*websocket.Conn]bool // sessionID -> connections
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		watchers: make(map[string]map[*websocket.Conn]bool),
	}
}

// WsHandler upgrades the connection and registers it as a watcher of
// the session named in the sessionId query parameter. The read loop
// only detects disconnects; watchers never send data.
func (h *Hub) WsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	h.mu.Lock()
	if h.watchers[sessionID] == nil {
		h.watchers[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.watchers[sessionID][conn] = true
	h.mu.Unlock()
	log.Printf("Monitor connected for session: %s", sessionID)

	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.remove(sessionID, conn)
			conn.Close()
			log.Printf("Monitor for session %s disconnected", sessionID)
			break
		}
	}
}

// Publish is the session manager's event sink. Write failures drop the
// watcher.
func (h *Hub) Publish(ev session.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.watchers[ev.SessionID]))
	for conn := range h.watchers[ev.SessionID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("Error sending to session %s watcher: %v", ev.SessionID, err)
			h.remove(ev.SessionID, conn)
			conn.Close()
		}
	}
}

// WatcherCount reports how many connections watch a session.
func (h *Hub) WatcherCount(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[sessionID])
}

// Close disconnects every watcher. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, conns := range h.watchers {
		for conn := range conns {
			conn.Close()
		}
		delete(h.watchers, sessionID)
	}
}

func (h *Hub) remove(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.watchers[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.watchers, sessionID)
		}
	}
}
