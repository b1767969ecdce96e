package jobs

import (
	"context"

	"go.uber.org/zap"
)

// SessionCleaner prunes old session directories, keeping the newest few.
type SessionCleaner interface {
	Cleanup(keepLatest int) (int, error)
}

// RetentionSweeper removes stale session directories on each worker tick.
type RetentionSweeper struct {
	sessions   SessionCleaner
	keepLatest int
	logger     *zap.Logger
}

func NewRetentionSweeper(sessions SessionCleaner, keepLatest int, logger *zap.Logger) *RetentionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionSweeper{
		sessions:   sessions,
		keepLatest: keepLatest,
		logger:     logger,
	}
}

// ProcessJobs implements JobProcessor.
func (s *RetentionSweeper) ProcessJobs(_ context.Context) error {
	removed, err := s.sessions.Cleanup(s.keepLatest)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("stale sessions removed",
			zap.Int("removed", removed),
			zap.Int("keep_latest", s.keepLatest))
	}
	return nil
}
