package promo

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid re-validation triggers into a single delayed run.
// Each scheduled run carries a monotonic sequence number; callers compare it
// against Latest before applying a result, so responses computed for an
// outdated subtotal are discarded.
type Debouncer struct {
	Delay time.Duration

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
}

// Schedule arranges fn to run after the delay, replacing any run that is
// scheduled but has not fired yet. fn receives the sequence number of this
// schedule call.
func (d *Debouncer) Schedule(fn func(seq uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	delay := d.Delay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	d.timer = time.AfterFunc(delay, func() { fn(seq) })
	return seq
}

// Latest returns the most recently issued sequence number.
func (d *Debouncer) Latest() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Stale reports whether the given sequence number has been superseded.
func (d *Debouncer) Stale(seq uint64) bool {
	return seq != d.Latest()
}

// Stop cancels any pending run and invalidates in-flight sequence numbers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
