package observers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/askehill/covis2/pkg/metrics"
)

// CounterObserver tallies events by name for an end-of-run summary.
type CounterObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewCounterObserver() *CounterObserver {
	return &CounterObserver{counts: make(map[string]int)}
}

func (o *CounterObserver) RecordEvent(ev metrics.Event) {
	o.mu.Lock()
	o.counts[ev.Name]++
	o.mu.Unlock()
}

// Counts returns a copy of the per-event tallies.
func (o *CounterObserver) Counts() map[string]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]int, len(o.counts))
	for name, n := range o.counts {
		out[name] = n
	}
	return out
}

// Log writes the tallies as a single info record.
func (o *CounterObserver) Log(log *slog.Logger) {
	counts := o.Counts()
	if len(counts) == 0 {
		return
	}
	attrs := make([]slog.Attr, 0, len(counts))
	for name, n := range counts {
		attrs = append(attrs, slog.Int(name, n))
	}
	log.LogAttrs(context.TODO(), slog.LevelInfo, "conversation summary", attrs...)
}
