package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pumpedConn upgrades one test connection and runs its write pump.
func pumpedConn(t *testing.T) (*clientConn, *websocket.Conn) {
	t.Helper()
	accepted := make(chan *clientConn, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := newClientConn("c1", raw)
		go c.writePump()
		accepted <- c
	}))
	t.Cleanup(ts.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	select {
	case c := <-accepted:
		return c, peer
	case <-time.After(2 * time.Second):
		t.Fatal("server side never accepted")
	}
	return nil, nil
}

func TestClientConnDeliversQueuedFrames(t *testing.T) {
	c, peer := pumpedConn(t)

	require.True(t, c.enqueue([]byte(`{"event":"game_started"}`)))

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := peer.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"game_started"}`, string(msg))
}

func TestClientConnCloseSendsNormalClosure(t *testing.T) {
	c, peer := pumpedConn(t)

	c.close()
	c.close()

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := peer.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.False(t, c.enqueue([]byte("late")))
}
