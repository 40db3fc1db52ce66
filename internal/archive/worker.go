package archive

import (
	"context"
	"time"

	"buzzergo/internal/services/buzzer"

	"go.uber.org/zap"
)

const (
	queueSize     = 1024
	maxBatch      = 100
	flushInterval = 2 * time.Second
	flushTimeout  = 5 * time.Second
)

type inserter interface {
	Insert(ctx context.Context, recs []buzzer.RoundRecord) error
}

// Worker buffers finished rounds and writes them in batches, off the room
// engine's critical path.
type Worker struct {
	store inserter
	queue chan buzzer.RoundRecord
	every time.Duration
}

var _ buzzer.Archiver = (*Worker)(nil)

func NewWorker(store inserter) *Worker {
	return &Worker{
		store: store,
		queue: make(chan buzzer.RoundRecord, queueSize),
		every: flushInterval,
	}
}

// Record never blocks; rounds are dropped when the queue is full.
func (w *Worker) Record(rec buzzer.RoundRecord) {
	select {
	case w.queue <- rec:
	default:
		zap.L().Warn("archive.queue_full", zap.String("room", rec.RoomCode), zap.Int("round", rec.Round))
	}
}

// Run drains the queue until ctx is done, then flushes what is left.
func (w *Worker) Run(ctx context.Context) {
	tk := time.NewTicker(w.every)
	defer tk.Stop()

	pending := make([]buzzer.RoundRecord, 0, maxBatch)
	for {
		select {
		case <-ctx.Done():
			w.flush(context.Background(), w.drain(pending))
			return
		case rec := <-w.queue:
			pending = append(pending, rec)
			if len(pending) >= maxBatch {
				pending = w.flush(ctx, pending)
			}
		case <-tk.C:
			pending = w.flush(ctx, pending)
		}
	}
}

func (w *Worker) drain(pending []buzzer.RoundRecord) []buzzer.RoundRecord {
	for {
		select {
		case rec := <-w.queue:
			pending = append(pending, rec)
		default:
			return pending
		}
	}
}

// flush hands pending to the store and returns a fresh buffer.
func (w *Worker) flush(parent context.Context, pending []buzzer.RoundRecord) []buzzer.RoundRecord {
	if len(pending) == 0 {
		return pending
	}
	ctx, cancel := context.WithTimeout(parent, flushTimeout)
	defer cancel()
	if err := w.store.Insert(ctx, pending); err != nil {
		zap.L().Error("archive.flush", zap.Int("rounds", len(pending)), zap.Error(err))
	} else {
		zap.L().Debug("archive.flush", zap.Int("rounds", len(pending)))
	}
	return make([]buzzer.RoundRecord, 0, maxBatch)
}
