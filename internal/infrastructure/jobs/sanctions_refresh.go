package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"peerlend.backend/pkg/logger"
	"peerlend.backend/pkg/redis"
)

const refreshLockKey = "sanctions:refresh:lock"

// overridable in tests
var acquireLock = redis.SetNX

// DatasetRefresher re-downloads the sanctions dataset into the cache.
type DatasetRefresher interface {
	Refresh(ctx context.Context) error
}

// SanctionsRefreshJob keeps the cached sanctions dataset warm so KYC runs
// rarely hit the slow external source directly. A redis lock makes the
// refresh a singleton across instances sharing the cache.
type SanctionsRefreshJob struct {
	checker  DatasetRefresher
	interval time.Duration
	stop     chan struct{}
}

func NewSanctionsRefreshJob(checker DatasetRefresher, interval time.Duration) *SanctionsRefreshJob {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SanctionsRefreshJob{
		checker:  checker,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *SanctionsRefreshJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting sanctions dataset refresh job", zap.Duration("interval", j.interval))

	// warm the cache once at startup; failures are tolerated, the checker
	// degrades per-lookup anyway
	j.refresh(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "sanctions refresh job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "sanctions refresh job stopped")
			return
		case <-ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *SanctionsRefreshJob) Stop() {
	close(j.stop)
}

func (j *SanctionsRefreshJob) refresh(ctx context.Context) {
	// lock expires before the next tick so this instance can reacquire;
	// a lock error falls through to refreshing, matching the checker's
	// fail-open posture
	ok, err := acquireLock(ctx, refreshLockKey, "1", j.interval/2)
	if err != nil {
		logger.Warn(ctx, "sanctions refresh lock unavailable, refreshing anyway", zap.Error(err))
	} else if !ok {
		logger.Debug(ctx, "sanctions refresh held by another instance, skipping")
		return
	}

	if err := j.checker.Refresh(ctx); err != nil {
		logger.Warn(ctx, "sanctions dataset refresh failed", zap.Error(err))
		return
	}
	logger.Info(ctx, "sanctions dataset refreshed")
}
