package loops

import "time"

// Timer measures one sampled region on the monotonic clock.  A Timer is not
// reentrant.
type Timer struct {
	start   time.Time
	elapsed time.Duration
	running bool
}

func (t *Timer) Start() {
	if t.running {
		panic("loops: Timer.Start called on a running timer")
	}
	t.running = true
	t.start = time.Now()
}

func (t *Timer) Stop() {
	now := time.Now()
	if !t.running {
		panic("loops: Timer.Stop called on a stopped timer")
	}
	t.elapsed = now.Sub(t.start)
	t.running = false
}

// Elapsed returns the duration of the last Start/Stop bracket.
func (t *Timer) Elapsed() time.Duration {
	return t.elapsed
}
