package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"reminders-lite/internal/model"
)

type Writer interface {
	Write(message []byte) error
	Close() error
}

type Connection struct {
	ID     string
	UserID int64
	Writer Writer
}

func NewConnection(userID int64, w Writer) *Connection {
	return &Connection{ID: uuid.NewString(), UserID: userID, Writer: w}
}

// Hub fans reminder change events out to every live connection of a user.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64]map[*Connection]struct{}
}

func New() *Hub {
	return &Hub{connections: make(map[int64]map[*Connection]struct{})}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[conn.UserID] == nil {
		h.connections[conn.UserID] = make(map[*Connection]struct{})
	}
	h.connections[conn.UserID][conn] = struct{}{}
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.connections[conn.UserID]
	if set == nil {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.connections, conn.UserID)
	}
}

func (h *Hub) Count(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Publish satisfies handler.ChangePublisher.
func (h *Hub) Publish(userID, reminderID int64, op string) {
	out, err := json.Marshal(model.ChangeEvent{
		Type:       model.ChangeEventType,
		UserID:     userID,
		ReminderID: reminderID,
		Op:         op,
	})
	if err != nil {
		log.Printf("hub: marshal change event: %v", err)
		return
	}
	h.Broadcast(userID, out)
}

func (h *Hub) Broadcast(userID int64, message []byte) {
	h.mu.RLock()
	set := h.connections[userID]
	conns := make([]*Connection, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		log.Printf("hub: dropping connection %s for user %d", c.ID, c.UserID)
		_ = c.Writer.Close()
		h.Unregister(c)
	}
}
