package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultRefreshInterval matches the storefront's background polling cadence.
const DefaultRefreshInterval = 30 * time.Second

// Poll refreshes the cache immediately and then on every interval tick
// until the context is cancelled. In-flight refreshes are never aborted;
// the last-completing refresh wins.
func (s *State) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	s.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("catalog poller stopped", zap.Error(ctx.Err()))
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}
