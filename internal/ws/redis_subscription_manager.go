package ws

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultConfirmTimeout = 5 * time.Second

// subscriptionManager guarantees that we have **exactly one** Redis
// subscription per "buzz:<code>:events" channel ― no matter how many websocket
// clients are subscribed to the same room.
type subscriptionManager struct {
	rdb *redis.Client
	hub *Hub

	// confirmTimeout bounds SUBSCRIBE plus its confirmation.
	confirmTimeout time.Duration

	mu   sync.Mutex
	subs map[string]*subEntry // roomCode ➜ subscription data
}

type subEntry struct {
	refCnt int
	cancel context.CancelFunc // nil while the room has no live Redis SUB
}

func newSubscriptionManager(rdb *redis.Client, hub *Hub) *subscriptionManager {
	return &subscriptionManager{
		rdb:            rdb,
		hub:            hub,
		confirmTimeout: defaultConfirmTimeout,
		subs:           make(map[string]*subEntry),
	}
}

// Subscribe increments the room's ref‑counter and makes sure a live Redis
// subscription exists, (re)issuing SUBSCRIBE when the room has none.
func (sm *subscriptionManager) Subscribe(parent context.Context, roomCode string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	e, ok := sm.subs[roomCode]
	if !ok {
		e = &subEntry{}
		sm.subs[roomCode] = e
	}
	e.refCnt++
	if e.cancel == nil {
		sm.listen(parent, roomCode, e)
	}
}

// retry re-issues SUBSCRIBE for a room whose earlier attempt failed. Rooms
// with no local members or a live subscription are left alone.
func (sm *subscriptionManager) retry(parent context.Context, roomCode string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if e, ok := sm.subs[roomCode]; ok && e.cancel == nil {
		sm.listen(parent, roomCode, e)
	}
}

// listen expects sm.mu to be held. On failure e stays without a live SUB.
func (sm *subscriptionManager) listen(parent context.Context, roomCode string, e *subEntry) {
	confirmCtx, stop := context.WithTimeout(parent, sm.confirmTimeout)
	defer stop()

	ps := sm.rdb.Subscribe(confirmCtx, roomChannel(roomCode))
	if _, err := ps.Receive(confirmCtx); err != nil {
		zap.L().Error("ws.redis_subscribe", zap.String("room", roomCode), zap.Error(err))
		_ = ps.Close()
		return
	}

	ctx, cancel := context.WithCancel(parent)
	e.cancel = cancel
	go sm.pump(ctx, roomCode, ps)
}

func (sm *subscriptionManager) pump(ctx context.Context, roomCode string, ps *redis.PubSub) {
	defer ps.Close()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok { // Redis connection closed.
				return
			}
			if m.Payload == string(dropFrame) {
				sm.hub.dropLocal(roomCode)
				continue
			}
			sm.hub.deliver(roomCode, []byte(m.Payload))
		}
	}
}

// Unsubscribe decrements the ref‑counter and tears the Redis SUB down when the
// last local subscriber leaves the room.
func (sm *subscriptionManager) Unsubscribe(roomCode string) {
	sm.mu.Lock()
	e, ok := sm.subs[roomCode]
	if !ok {
		sm.mu.Unlock()
		return
	}
	e.refCnt--
	if e.refCnt > 0 {
		sm.mu.Unlock()
		return
	}
	delete(sm.subs, roomCode)
	sm.mu.Unlock()

	// Outside the lock → stop the fan‑out goroutine.
	if e.cancel != nil {
		e.cancel()
	}
}

func (sm *subscriptionManager) active(roomCode string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if e, ok := sm.subs[roomCode]; ok {
		return e.refCnt
	}
	return 0
}

func (sm *subscriptionManager) live(roomCode string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	e, ok := sm.subs[roomCode]
	return ok && e.cancel != nil
}

func (sm *subscriptionManager) closeAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for code, e := range sm.subs {
		if e.cancel != nil {
			e.cancel()
		}
		delete(sm.subs, code)
	}
}
