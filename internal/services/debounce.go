package services

import (
	"sync"
	"time"
)

// DebouncedWriter coalesces rapid edits to the same identity into one write
// per quiet period. Each Schedule resets the identity's timer; the most
// recent function fires once the delay elapses without further edits.
// Cancelling (identity change, teardown) drops the pending write.
type DebouncedWriter struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*time.Timer
	closed  bool
}

func NewDebouncedWriter(delay time.Duration) *DebouncedWriter {
	return &DebouncedWriter{delay: delay, pending: map[string]*time.Timer{}}
}

// Schedule arms (or re-arms) the write for id.
func (d *DebouncedWriter) Schedule(id string, write func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.pending[id]; ok {
		t.Stop()
	}
	d.pending[id] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()
		write()
	})
}

// Cancel drops any pending write for id without firing it.
func (d *DebouncedWriter) Cancel(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.pending[id]; ok {
		t.Stop()
		delete(d.pending, id)
	}
}

// Close cancels every pending write and rejects new ones.
func (d *DebouncedWriter) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, t := range d.pending {
		t.Stop()
		delete(d.pending, id)
	}
}
