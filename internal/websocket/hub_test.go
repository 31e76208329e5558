package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(cancel)
	return hub, cancel, stopped
}

func newTestClient(hub *Hub, buffer int) *Client {
	return &Client{hub: hub, Send: make(chan []byte, buffer)}
}

// receive waits for the next value on ch; ok is false when ch was closed.
func receive(t *testing.T, ch <-chan []byte) (msg []byte, ok bool) {
	t.Helper()
	select {
	case msg, ok = <-ch:
		return msg, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting on client channel")
		return nil, false
	}
}

func actionOf(t *testing.T, raw []byte) string {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg.Action
}

func TestHub_BroadcastsToAttachedClients(t *testing.T) {
	hub, _, _ := startHub(t)
	a := newTestClient(hub, 4)
	b := newTestClient(hub, 4)
	require.True(t, hub.Attach(a))
	require.True(t, hub.Attach(b))

	hub.PublishEvent(models.Event{ID: "e1", Type: "vehicle.created", Level: "info", Message: "Vehicle 'AB-1' created."})

	for _, c := range []*Client{a, b} {
		raw, ok := receive(t, c.Send)
		require.True(t, ok)
		assert.Equal(t, ActionEventCreated, actionOf(t, raw))
	}
}

func TestHub_DisconnectsSlowClient(t *testing.T) {
	hub, _, _ := startHub(t)
	slow := newTestClient(hub, 1)
	fast := newTestClient(hub, 8)
	require.True(t, hub.Attach(slow))
	require.True(t, hub.Attach(fast))

	hub.Publish(Message{Action: "first"})
	hub.Publish(Message{Action: "second"})

	raw, ok := receive(t, fast.Send)
	require.True(t, ok)
	assert.Equal(t, "first", actionOf(t, raw))
	raw, ok = receive(t, fast.Send)
	require.True(t, ok)
	assert.Equal(t, "second", actionOf(t, raw))

	raw, ok = receive(t, slow.Send)
	require.True(t, ok, "buffered message is still delivered")
	assert.Equal(t, "first", actionOf(t, raw))
	_, ok = receive(t, slow.Send)
	assert.False(t, ok, "slow client channel is closed")

	// A closed Send still in the client set would panic on the next broadcast.
	hub.Publish(Message{Action: "third"})
	raw, ok = receive(t, fast.Send)
	require.True(t, ok)
	assert.Equal(t, "third", actionOf(t, raw))

	// Detaching an already dropped client is a no-op.
	hub.Detach(slow)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub() // not running, so nothing drains the broadcast queue

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.Publish(Message{Action: "flood"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full hub")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	clients := []*Client{newTestClient(hub, 1), newTestClient(hub, 1), newTestClient(hub, 1)}
	for _, c := range clients {
		require.True(t, hub.Attach(c))
	}

	cancel()

	for _, c := range clients {
		_, ok := receive(t, c.Send)
		assert.False(t, ok)
	}
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHub_AttachAfterStop(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	cancel()
	<-stopped

	c := newTestClient(hub, 1)
	assert.False(t, hub.Attach(c))

	detached := make(chan struct{})
	go func() {
		hub.Detach(c)
		close(detached)
	}()
	select {
	case <-detached:
	case <-time.After(2 * time.Second):
		t.Fatal("Detach blocked after the hub stopped")
	}
}
