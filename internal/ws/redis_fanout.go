package ws

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// backlogWarn is the queue length at which a stalled Redis gets logged.
const backlogWarn = 4096

// dropFrame tells every subscribed process to drop its local group for the
// room. It never reaches a client.
var dropFrame = []byte(`{"event":"__drop_room"}`)

func roomChannel(roomCode string) string { return "buzz:" + roomCode + ":events" }

type opKind int

const (
	opPublish opKind = iota
	opSubscribe
	opUnsubscribe
)

type fanoutOp struct {
	kind opKind
	room string
	msg  []byte
}

// redisFanout applies publishes and subscription changes one at a time, in
// the order the hub queued them. A subscribe is confirmed by Redis before any
// publish queued after it is sent, so a joining client sees its own
// lobby_update. The queue is unbounded: enqueue never waits on Redis.
type redisFanout struct {
	rdb  *redis.Client
	subs *subscriptionManager

	mu      sync.Mutex
	queue   []fanoutOp
	stopped bool
	wake    chan struct{}
}

func newRedisFanout(rdb *redis.Client, hub *Hub) *redisFanout {
	return &redisFanout{
		rdb:  rdb,
		subs: newSubscriptionManager(rdb, hub),
		wake: make(chan struct{}, 1),
	}
}

func (f *redisFanout) enqueue(op fanoutOp) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.queue = append(f.queue, op)
	n := len(f.queue)
	f.mu.Unlock()

	if n == backlogWarn {
		zap.L().Warn("ws.redis_backlog", zap.Int("ops", n))
	}
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *redisFanout) next() (fanoutOp, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		f.queue = nil
		return fanoutOp{}, false
	}
	op := f.queue[0]
	f.queue[0] = fanoutOp{}
	f.queue = f.queue[1:]
	return op, true
}

func (f *redisFanout) publish(roomCode string, msg []byte) {
	f.enqueue(fanoutOp{kind: opPublish, room: roomCode, msg: msg})
}

func (f *redisFanout) subscribe(roomCode string) {
	f.enqueue(fanoutOp{kind: opSubscribe, room: roomCode})
}

func (f *redisFanout) unsubscribe(roomCode string) {
	f.enqueue(fanoutOp{kind: opUnsubscribe, room: roomCode})
}

func (f *redisFanout) run(ctx context.Context) {
	defer func() {
		f.mu.Lock()
		f.stopped = true
		f.queue = nil
		f.mu.Unlock()
		f.subs.closeAll()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.wake:
		}
		for ctx.Err() == nil {
			op, ok := f.next()
			if !ok {
				break
			}
			f.apply(ctx, op)
		}
	}
}

func (f *redisFanout) apply(ctx context.Context, op fanoutOp) {
	switch op.kind {
	case opPublish:
		f.subs.retry(ctx, op.room)
		if err := f.rdb.Publish(ctx, roomChannel(op.room), string(op.msg)).Err(); err != nil {
			zap.L().Warn("ws.redis_publish", zap.String("room", op.room), zap.Error(err))
		}
	case opSubscribe:
		f.subs.Subscribe(ctx, op.room)
	case opUnsubscribe:
		f.subs.Unsubscribe(op.room)
	}
}
