package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient creates a client without a real websocket connection
func mockClient(hub *Hub, outletID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		outletID: outletID,
		send:     make(chan []byte, 4),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := startHub(t)
	outletID := uuid.New()
	client := mockClient(hub, outletID)

	hub.register <- client
	assert.Eventually(t, func() bool { return hub.ClientCount(outletID) == 1 }, time.Second, 5*time.Millisecond)

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.ClientCount(outletID) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open, "send queue should be closed after unregister")
}

func TestHub_PublishReachesOnlyOutletRoom(t *testing.T) {
	hub := startHub(t)
	kitchenA := uuid.New()
	kitchenB := uuid.New()

	clientA := mockClient(hub, kitchenA)
	clientB := mockClient(hub, kitchenB)
	hub.register <- clientA
	hub.register <- clientB

	hub.Publish(kitchenA, EventKOTCreated, map[string]int{"kot_no": 3})

	ev := receive(t, clientA)
	assert.Equal(t, EventKOTCreated, ev.Type)
	assert.Equal(t, float64(3), ev.Payload.(map[string]interface{})["kot_no"])

	select {
	case <-clientB.send:
		t.Fatal("client of another outlet received the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	outletID := uuid.New()
	client := mockClient(hub, outletID)
	hub.register <- client

	// Fill the queue and overflow it by one
	for i := 0; i < cap(client.send)+1; i++ {
		hub.Publish(outletID, EventBillSettled, i)
	}

	assert.Eventually(t, func() bool { return hub.ClientCount(outletID) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	outletID := uuid.New()
	client := mockClient(hub, outletID)
	hub.register <- client
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.ClientCount(outletID))
}
