package batch

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep waits for d using a timer. It returns ctx.Err() if the context ends
// first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run advances d until it halts, waiting with sleep between steps. A nil
// sleep uses [Sleep].
func Run(ctx context.Context, d *Driver, sleep Sleeper) error {
	if sleep == nil {
		sleep = Sleep
	}
	for {
		dir, err := d.Advance(ctx)
		if err != nil {
			return err
		}
		if dir.Halt {
			return nil
		}
		if err := sleep(ctx, dir.After); err != nil {
			return err
		}
	}
}
