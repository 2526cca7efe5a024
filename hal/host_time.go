//go:build !tinygo

package hal

import (
	"context"
	"time"
)

// hostTime is the periodic UI tick timer. Each value sent is the absolute
// tick count since start, so a consumer that falls behind loses no time: it
// only sees fewer, larger steps.
type hostTime struct {
	ch     chan uint64
	period time.Duration
}

func newHostTime(period time.Duration) *hostTime {
	return &hostTime{ch: make(chan uint64, 1), period: period}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) run(ctx context.Context) {
	start := time.Now()
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tk.C:
			t.publish(uint64(now.Sub(start) / t.period))
		}
	}
}

// publish replaces an unread count with seq.
func (t *hostTime) publish(seq uint64) {
	select {
	case <-t.ch:
	default:
	}
	select {
	case t.ch <- seq:
	default:
	}
}
