package inject

import (
	"sync"
	"time"
)

// Delayer blocks the calling thread. Injection delays are synchronous:
// the next key event must not be processed before they elapse.
type Delayer interface {
	Delay(d time.Duration)
}

// SleepDelayer blocks with the operating system's high-resolution sleep.
type SleepDelayer struct{}

// Delay blocks for d. Non-positive durations return immediately.
func (SleepDelayer) Delay(d time.Duration) {
	if d <= 0 {
		return
	}
	sleep(d)
}

// RecordingDelayer records requested delays without blocking.
type RecordingDelayer struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Delay records d.
func (r *RecordingDelayer) Delay(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
}

// Delays returns every recorded delay.
func (r *RecordingDelayer) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

// Total returns the sum of recorded delays.
func (r *RecordingDelayer) Total() time.Duration {
	var total time.Duration
	for _, d := range r.Delays() {
		total += d
	}
	return total
}
