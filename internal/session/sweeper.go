package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartSweeper removes idle sessions from m every interval until ctx is cancelled.
func StartSweeper(
	ctx context.Context,
	m *Manager,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := m.Sweep(); removed > 0 {
					log.Info("expired idle sessions",
						zap.Int("removed", removed),
						zap.Int("live", m.Len()),
					)
				}
			}
		}
	}()
}
