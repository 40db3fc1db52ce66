package ws

import (
	"encoding/json"
	"testing"
	"time"

	"buzzergo/internal/services/buzzer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConn(id string) *clientConn { return newClientConn(id, nil) }

func next(t *testing.T, c *clientConn) Envelope {
	t.Helper()
	select {
	case msg := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	case <-time.After(time.Second):
		t.Fatalf("no frame for %s", c.id)
	}
	return Envelope{}
}

func assertEmpty(t *testing.T, c *clientConn) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected frame for %s: %s", c.id, msg)
	default:
	}
}

func TestHubBroadcastReachesSubscribersOnly(t *testing.T) {
	hub := NewHub()
	a, b, outsider := testConn("a"), testConn("b"), testConn("x")
	for _, c := range []*clientConn{a, b, outsider} {
		hub.register(c)
	}
	hub.Subscribe("a", "ROOM01")
	hub.Subscribe("b", "ROOM01")

	hub.Broadcast("ROOM01", buzzer.EventLobbyUpdate, buzzer.LobbyUpdateBody{Players: []string{"Alice", "Bob"}})

	for _, c := range []*clientConn{a, b} {
		env := next(t, c)
		assert.Equal(t, buzzer.EventLobbyUpdate, env.Event)
		assert.JSONEq(t, `{"players":["Alice","Bob"]}`, string(env.Body))
	}
	assertEmpty(t, outsider)
	assert.Equal(t, 2, hub.Members("ROOM01"))
}

func TestHubSendTargetsOneConnection(t *testing.T) {
	hub := NewHub()
	a, b := testConn("a"), testConn("b")
	hub.register(a)
	hub.register(b)

	hub.Send("a", buzzer.EventRoomCreated, buzzer.RoomCreatedBody{RoomCode: "ROOM01"})
	hub.Send("missing", buzzer.EventRoomCreated, nil)

	env := next(t, a)
	assert.Equal(t, buzzer.EventRoomCreated, env.Event)
	assert.JSONEq(t, `{"roomCode":"ROOM01"}`, string(env.Body))
	assertEmpty(t, b)
}

func TestHubEventWithoutPayloadOmitsBody(t *testing.T) {
	hub := NewHub()
	a := testConn("a")
	hub.register(a)
	hub.Subscribe("a", "ROOM01")

	hub.Broadcast("ROOM01", buzzer.EventGameStarted, nil)

	msg := <-a.send
	assert.JSONEq(t, `{"event":"game_started"}`, string(msg))
}

func TestHubUnsubscribeAndDrop(t *testing.T) {
	hub := NewHub()
	a, b := testConn("a"), testConn("b")
	hub.register(a)
	hub.register(b)
	hub.Subscribe("a", "ROOM01")
	hub.Subscribe("b", "ROOM01")
	hub.Subscribe("b", "ROOM01")
	assert.Equal(t, 2, hub.Members("ROOM01"))

	hub.Unsubscribe("a", "ROOM01")
	hub.Broadcast("ROOM01", buzzer.EventRoundReset, nil)
	assertEmpty(t, a)
	assert.Equal(t, buzzer.EventRoundReset, next(t, b).Event)

	hub.DropRoom("ROOM01")
	assert.Equal(t, 0, hub.Members("ROOM01"))
	hub.Broadcast("ROOM01", buzzer.EventRoundReset, nil)
	assertEmpty(t, b)
}

func TestHubUnregisterLeavesAllGroups(t *testing.T) {
	hub := NewHub()
	a := testConn("a")
	hub.register(a)
	hub.Subscribe("a", "ROOM01")
	hub.Subscribe("a", "ROOM02")

	hub.unregister(a)

	assert.Equal(t, 0, hub.Members("ROOM01"))
	assert.Equal(t, 0, hub.Members("ROOM02"))
	assert.False(t, a.enqueue([]byte("late")))
}

func TestHubClosesSlowConnections(t *testing.T) {
	hub := NewHub()
	slow := testConn("slow")
	hub.register(slow)
	hub.Subscribe("slow", "ROOM01")

	for i := 0; i < sendBuffer+1; i++ {
		hub.Broadcast("ROOM01", buzzer.EventRoundReset, nil)
	}

	select {
	case <-slow.done:
	default:
		t.Fatal("slow connection was not closed")
	}
}
