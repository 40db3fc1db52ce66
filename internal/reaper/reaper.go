package reaper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type idleReaper interface {
	ReapIdle(ttl time.Duration) []string
}

// Run deletes rooms that are empty and idle for ttl, checking every interval.
func Run(ctx context.Context, rooms idleReaper, interval, ttl time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if reaped := rooms.ReapIdle(ttl); len(reaped) > 0 {
					zap.L().Info("reaper.rooms_deleted", zap.Strings("rooms", reaped))
				}
			}
		}
	}()
}
