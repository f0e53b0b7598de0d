package scheduler

import (
	"context"
	"sync"
	"time"

	"NewsIntel/internal/ports"
)

// IntervalDriver fires a job on a fixed interval, starting with an immediate
// run. Overlap handling belongs to the job itself; the driver just ticks.
type IntervalDriver struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.CycleDriver = (*IntervalDriver)(nil)

// NewIntervalDriver builds a driver with the configured period.
func NewIntervalDriver(interval time.Duration) *IntervalDriver {
	return &IntervalDriver{interval: interval}
}

// Start begins ticking until Stop or context cancellation.
func (d *IntervalDriver) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	d.mu.Lock()
	if d.stop != nil {
		d.mu.Unlock()
		return nil
	}
	d.stop = make(chan struct{})
	// The goroutine holds its own reference so Stop can clear the field
	// without racing the select below.
	stop := d.stop
	d.mu.Unlock()

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call more than once and
// concurrently with a running driver.
func (d *IntervalDriver) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}
