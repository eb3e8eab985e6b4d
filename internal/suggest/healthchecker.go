package suggest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/timewise/timewise/internal/health"
)

// HealthChecker probes a provider that implements health.HealthPinger.
type HealthChecker struct {
	pinger       health.HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewHealthChecker returns nil when p cannot be probed.
func NewHealthChecker(p Provider, log zerolog.Logger, probeTimeout time.Duration) *HealthChecker {
	pinger, ok := p.(health.HealthPinger)
	if !ok {
		return nil
	}
	return &HealthChecker{pinger: pinger, log: log, probeTimeout: probeTimeout}
}

func (hc *HealthChecker) Name() string    { return "suggester" }
func (hc *HealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

// Start probes immediately and then on every tick until ctx is done.
func (hc *HealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		probeCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()
		if err := hc.pinger.HealthPing(probeCtx); err != nil {
			hc.log.Warn().Err(err).Str("checker", hc.Name()).Msg("suggestion provider health check failed")
			hc.healthy.Store(0)
			return
		}
		hc.healthy.Store(1)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
