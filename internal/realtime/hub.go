package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Publisher publishes room events for cross-instance broadcast.
type Publisher interface {
	PublishRoomEvent(roomSid, event string, payload []byte) error
}

// Subscriber subscribes to a room's event channel and invokes handler for incoming events.
type Subscriber interface {
	SubscribeRoom(roomSid string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains room sid -> set of connections and fans out status events.
// With Redis configured, events are published only and every instance (this one
// included) delivers them from its subscription.
type Hub struct {
	rooms  map[string]map[string]*Client
	subs   map[string]func()
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a hub. pub and sub may be nil for single-instance delivery.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[string]map[string]*Client),
		subs:   make(map[string]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to a room. Starts the Redis subscription on the first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.RoomSid] == nil {
		h.rooms[c.RoomSid] = make(map[string]*Client)
		if h.sub != nil {
			roomSid := c.RoomSid
			cancel, err := h.sub.SubscribeRoom(roomSid, func(event string, payload []byte) {
				h.Broadcast(roomSid, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("room subscription failed", zap.Error(err), zap.String("room_sid", roomSid))
			} else {
				h.subs[roomSid] = cancel
			}
		}
	}
	h.rooms[c.RoomSid][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client subscribed", zap.String("client_id", c.ID), zap.String("room_sid", c.RoomSid))
}

// Unregister removes a client. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.RoomSid]; ok {
		if _, ok := m[c.ID]; ok {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.rooms, c.RoomSid)
			if cancel, ok := h.subs[c.RoomSid]; ok {
				cancel()
				delete(h.subs, c.RoomSid)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client unsubscribed", zap.String("client_id", c.ID), zap.String("room_sid", c.RoomSid))
}

// Broadcast sends a message to local clients of a room.
func (h *Hub) Broadcast(roomSid, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[roomSid] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish delivers an event to every subscriber of the room on every instance.
func (h *Hub) Publish(roomSid, event string, payload interface{}) {
	if roomSid == "" {
		return
	}
	if h.pub == nil {
		h.Broadcast(roomSid, event, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := h.pub.PublishRoomEvent(roomSid, event, data); err != nil {
		h.logger.Warn("publish room event failed, delivering locally", zap.Error(err), zap.String("room_sid", roomSid))
		h.Broadcast(roomSid, event, json.RawMessage(data))
	}
}

// Stats is a snapshot of local WebSocket subscriptions.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Stats counts watched rooms and open connections on this instance.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	st := Stats{Rooms: len(h.rooms)}
	for _, m := range h.rooms {
		st.Connections += len(m)
	}
	return st
}
