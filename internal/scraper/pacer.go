package scraper

import (
	"context"
	"time"
)

const DefaultDelay = 15 * time.Second

// Pacer blocks between consecutive postal code requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

// SleepPacer waits a fixed delay.
type SleepPacer struct {
	Delay time.Duration
}

func (p SleepPacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
