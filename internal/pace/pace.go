package pace

import (
	"context"
	"time"
)

// Pacer spaces out calls to a provider. The Kiturami API tolerates
// roughly one request every couple of seconds, so every completed
// request pays the delay before the caller proceeds.
type Pacer struct {
	provider string
	delay    time.Duration
}

func New(provider string, delay time.Duration) *Pacer {
	return &Pacer{provider: provider, delay: delay}
}

// Record notes the status of a completed request for observability.
func (p *Pacer) Record(status int) {
	requestsTotal.WithLabelValues(p.provider).Inc()
	lastStatusGauge.WithLabelValues(p.provider).Set(float64(status))
}

// Wait blocks for the courtesy delay, or until ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	waitsTotal.WithLabelValues(p.provider).Inc()
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
