package ws

import (
	"context"
	"sync"

	"buzzergo/internal/services/buzzer"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Hub tracks live connections and the room broadcast groups they belong to.
// It implements buzzer.Channel; none of its methods block on socket I/O.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*clientConn // connID -> conn
	rooms map[string]*room       // roomCode -> local subscribers

	fanout *redisFanout // nil: broadcasts are delivered in-process
}

var _ buzzer.Channel = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*clientConn),
		rooms: make(map[string]*room),
	}
}

// NewRedisHub routes room broadcasts through Redis pub/sub so every process
// subscribed to a room sees the same ordered stream.
func NewRedisHub(rdb *redis.Client) *Hub {
	h := NewHub()
	h.fanout = newRedisFanout(rdb, h)
	return h
}

// Run drives the Redis fan‑out worker until ctx is done. It returns at once
// for an in-process hub.
func (h *Hub) Run(ctx context.Context) {
	if h.fanout == nil {
		return
	}
	h.fanout.run(ctx)
}

func (h *Hub) register(c *clientConn) {
	h.mu.Lock()
	h.conns[c.id] = c
	n := len(h.conns)
	h.mu.Unlock()
	zap.L().Debug("ws.register", zap.String("conn", c.id), zap.Int("conns", n))
}

// unregister forgets c and removes it from every broadcast group.
func (h *Hub) unregister(c *clientConn) {
	h.mu.Lock()
	if cur, ok := h.conns[c.id]; ok && cur == c {
		delete(h.conns, c.id)
	}
	for code, r := range h.rooms {
		if r.remove(c) {
			h.fanoutUnsubscribe(code)
		}
		if len(r.conns) == 0 {
			delete(h.rooms, code)
		}
	}
	n := len(h.conns)
	h.mu.Unlock()

	c.close()
	zap.L().Debug("ws.unregister", zap.String("conn", c.id), zap.Int("conns", n))
}

func (h *Hub) Send(connID, event string, payload any) {
	msg, err := encode(event, payload)
	if err != nil {
		zap.L().Error("ws.encode", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if !c.enqueue(msg) {
		zap.L().Warn("ws.send_dropped", zap.String("conn", connID), zap.String("event", event))
		c.close()
	}
}

func (h *Hub) Broadcast(roomCode, event string, payload any) {
	msg, err := encode(event, payload)
	if err != nil {
		zap.L().Error("ws.encode", zap.String("event", event), zap.Error(err))
		return
	}
	if h.fanout != nil {
		h.fanout.publish(roomCode, msg)
		return
	}
	h.deliver(roomCode, msg)
}

func (h *Hub) Subscribe(connID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[connID]
	if !ok {
		return
	}
	r, ok := h.rooms[roomCode]
	if !ok {
		r = newRoom()
		h.rooms[roomCode] = r
	}
	if r.add(c) {
		h.fanoutSubscribe(roomCode)
	}
}

func (h *Hub) Unsubscribe(connID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[connID]
	if !ok {
		return
	}
	r, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	if r.remove(c) {
		h.fanoutUnsubscribe(roomCode)
	}
	if len(r.conns) == 0 {
		delete(h.rooms, roomCode)
	}
}

// DropRoom removes the group. With Redis the drop travels on the room's
// channel behind any broadcast published before it.
func (h *Hub) DropRoom(roomCode string) {
	if h.fanout != nil {
		h.fanout.publish(roomCode, dropFrame)
		return
	}
	h.dropLocal(roomCode)
}

func (h *Hub) dropLocal(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	delete(h.rooms, roomCode)
	for range r.conns {
		h.fanoutUnsubscribe(roomCode)
	}
}

// deliver hands msg to every local subscriber of roomCode. Connections that
// cannot keep up are closed.
func (h *Hub) deliver(roomCode string, msg []byte) {
	h.mu.RLock()
	r, ok := h.rooms[roomCode]
	var conns []*clientConn
	if ok {
		conns = r.snapshot()
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.enqueue(msg) {
			zap.L().Warn("ws.broadcast_dropped", zap.String("conn", c.id), zap.String("room", roomCode))
			c.close()
		}
	}
}

// Members returns the number of local subscribers of roomCode.
func (h *Hub) Members(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[roomCode]; ok {
		return len(r.conns)
	}
	return 0
}

// fanoutSubscribe and fanoutUnsubscribe run with h.mu held so Redis sees
// membership changes in the order the groups changed. enqueue does not block.
func (h *Hub) fanoutSubscribe(roomCode string) {
	if h.fanout != nil {
		h.fanout.subscribe(roomCode)
	}
}

func (h *Hub) fanoutUnsubscribe(roomCode string) {
	if h.fanout != nil {
		h.fanout.unsubscribe(roomCode)
	}
}
