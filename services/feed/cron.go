package feed

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartSessionSweeper closes idle feed sessions every interval until ctx is done.
func StartSessionSweeper(ctx context.Context, m *SessionManager, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Feed session sweeper shutdown signal received")
			m.CloseAll()
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("Closed idle feed sessions", zap.Int("closed", n), zap.Int("live", m.Len()))
			}
		}
	}
}
