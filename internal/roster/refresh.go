package roster

import (
	"context"
	"time"
)

const DefaultRefreshDelay = 2 * time.Second

// Refresher resets the table, waits for in-flight UI work to settle and then
// reloads the roster.
type Refresher struct {
	table *Table
	delay time.Duration
	clock Clock
}

func NewRefresher(table *Table, delay time.Duration, clock Clock) *Refresher {
	if clock == nil {
		clock = RealClock
	}
	return &Refresher{table: table, delay: delay, clock: clock}
}

// Refresh calls onDone, when given, with the outcome of the reload.
func (r *Refresher) Refresh(ctx context.Context, onDone func(error)) error {
	r.table.Reset()

	err := r.clock.Sleep(ctx, r.delay)
	if err == nil {
		err = r.table.Store().Load(ctx)
	}
	if onDone != nil {
		onDone(err)
	}
	return err
}
