package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/isdelr/fleet-admin-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStream_DeliversNewEvents(t *testing.T) {
	s := newTestServer(t, true)
	s.login("alice", "secret123")

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/stream"

	_, resp, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err, "the stream requires a token")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := gorilla.DefaultDialer.Dial(wsURL+"?access_token="+s.token, nil)
	require.NoError(t, err)
	defer conn.Close()

	type message struct {
		Action  string         `json:"action"`
		Payload map[string]any `json:"payload"`
	}
	received := make(chan message, 1)
	readErr := make(chan error, 1)
	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			readErr <- err
			return
		}
		received <- msg
	}()

	// The hub registers clients asynchronously, so keep producing events until one arrives.
	for i := 0; ; i++ {
		rec := s.do(http.MethodPost, "/api/vehicles", map[string]any{"licensePlate": fmt.Sprintf("WS-%d", i), "type": "Van"})
		require.Equal(t, http.StatusCreated, rec.Code)

		select {
		case msg := <-received:
			assert.Equal(t, websocket.ActionEventCreated, msg.Action)
			assert.Equal(t, "vehicle.created", msg.Payload["type"])
			return
		case err := <-readErr:
			t.Fatalf("reading from the event stream: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}
