package notification

import (
	"context"
	"sync"
	"time"

	"weddinghub/internal/domain"

	"github.com/gorilla/websocket"
)

// Hub fans events out to connected operator websocket clients. It implements
// the NotificationSender interfaces the financial modules consume.
type Hub struct {
	connections map[int64]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[userID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[userID] = conn
}

func (h *Hub) Unregister(userID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[userID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, userID)
	}
}

// Broadcast writes the event to every connected client, dropping connections
// that fail. Errors never propagate to the caller.
func (h *Hub) Broadcast(event Event) {
	h.mutex.RLock()
	conns := make(map[int64]*websocket.Conn, len(h.connections))
	for id, conn := range h.connections {
		conns[id] = conn
	}
	h.mutex.RUnlock()

	for id, conn := range conns {
		if conn == nil {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			h.Unregister(id)
		}
	}
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, userID)
	}
}

func (h *Hub) NotifyBookingCreated(_ context.Context, b *domain.Booking) error {
	h.Broadcast(Event{Type: EventBookingCreated, BookingID: b.ID, Payload: b, At: time.Now().UTC()})
	return nil
}

func (h *Hub) NotifyStatusChanged(_ context.Context, b *domain.Booking, previous domain.BookingStatus) error {
	h.Broadcast(Event{
		Type:      EventBookingStatusChanged,
		BookingID: b.ID,
		Payload:   map[string]any{"from": previous, "to": b.Status},
		At:        time.Now().UTC(),
	})
	return nil
}

func (h *Hub) NotifyEscrowReleased(_ context.Context, b *domain.Booking, rel *domain.EscrowRelease) error {
	h.Broadcast(Event{Type: EventEscrowReleased, BookingID: b.ID, Payload: rel, At: time.Now().UTC()})
	return nil
}

func (h *Hub) NotifyEscrowRefunded(_ context.Context, b *domain.Booking) error {
	h.Broadcast(Event{Type: EventEscrowRefunded, BookingID: b.ID, At: time.Now().UTC()})
	return nil
}

func (h *Hub) NotifyAcknowledgmentCreated(_ context.Context, a *domain.Acknowledgment) error {
	h.Broadcast(Event{
		Type:      EventAcknowledgmentCreated,
		BookingID: a.BookingID,
		Payload:   map[string]any{"id": a.ID, "type": a.Type, "hash": a.ContentHash},
		At:        time.Now().UTC(),
	})
	return nil
}
