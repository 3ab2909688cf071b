package realtime

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	published []string
	handlers  map[string]func(event string, payload []byte)
	cancelled []string
	pubErr    error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: map[string]func(string, []byte){}}
}

func (b *fakeBus) PublishRoomEvent(roomSid, event string, payload []byte) error {
	if b.pubErr != nil {
		return b.pubErr
	}
	b.published = append(b.published, roomSid+":"+event)
	if h, ok := b.handlers[roomSid]; ok {
		h(event, payload)
	}
	return nil
}

func (b *fakeBus) SubscribeRoom(roomSid string, handler func(event string, payload []byte)) (func(), error) {
	b.handlers[roomSid] = handler
	return func() {
		b.cancelled = append(b.cancelled, roomSid)
		delete(b.handlers, roomSid)
	}, nil
}

func recv(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatal("expected a queued message")
		return WSMessage{}
	}
}

func TestHub_LocalPublish(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	a := NewClient(hub, "RM1", nil, nil)
	b := NewClient(hub, "RM2", nil, nil)
	hub.Register(a)
	hub.Register(b)

	hub.Publish("RM1", "room-ended", map[string]string{"RoomSid": "RM1"})

	msg := recv(t, a)
	assert.Equal(t, "room-ended", msg.Event)
	var data map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "RM1", data["RoomSid"])
	assert.Empty(t, b.send)
}

func TestHub_RedisPublishDeliversOnce(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(nil, bus, bus)
	c := NewClient(hub, "RM1", nil, nil)
	hub.Register(c)

	hub.Publish("RM1", "recording-started", map[string]string{"RecordingSid": "RT1"})

	assert.Equal(t, []string{"RM1:recording-started"}, bus.published)
	msg := recv(t, c)
	assert.Equal(t, "recording-started", msg.Event)
	assert.Empty(t, c.send)
}

func TestHub_PublishFallsBackToLocal(t *testing.T) {
	bus := newFakeBus()
	bus.pubErr = errors.New("redis down")
	hub := NewHub(nil, bus, bus)
	c := NewClient(hub, "RM1", nil, nil)
	hub.Register(c)

	hub.Publish("RM1", "room-ended", nil)
	assert.Equal(t, "room-ended", recv(t, c).Event)
}

func TestHub_UnregisterCancelsSubscription(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(nil, bus, bus)
	a := NewClient(hub, "RM1", nil, nil)
	b := NewClient(hub, "RM1", nil, nil)
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, Stats{Rooms: 1, Connections: 2}, hub.Stats())

	hub.Unregister(a)
	assert.Empty(t, bus.cancelled)
	hub.Unregister(b)
	assert.Equal(t, []string{"RM1"}, bus.cancelled)
	assert.Equal(t, Stats{}, hub.Stats())

	_, open := <-a.send
	assert.False(t, open)
}

func TestHub_PublishIgnoresEmptyRoom(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(nil, bus, bus)
	hub.Publish("", "room-ended", nil)
	assert.Empty(t, bus.published)
}
