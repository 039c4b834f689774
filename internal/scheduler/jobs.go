package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/scout/internal/paper"
	"github.com/wonny/scout/internal/scanner"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/logger"
	"github.com/wonny/scout/pkg/redis"
)

// CacheSweepJob evicts stale TTL cache entries so the map does not grow
// unbounded across a long trading session.
type CacheSweepJob struct {
	Cache *cache.TTLCache
	Log   *logger.Logger
}

func (j *CacheSweepJob) Name() string     { return "cache_sweep" }
func (j *CacheSweepJob) Schedule() string { return "0 */5 * * * *" } // 5분마다

func (j *CacheSweepJob) Run(ctx context.Context) error {
	removed := j.Cache.Sweep()
	if removed > 0 {
		j.Log.WithFields(map[string]interface{}{
			"removed":   removed,
			"remaining": j.Cache.Len(),
		}).Debug("Cache sweep completed")
	}
	return nil
}

// DailySummaryJob logs the paper ledger's daily aggregate after market close.
type DailySummaryJob struct {
	Ledger *paper.Repository
	Log    *logger.Logger
}

func (j *DailySummaryJob) Name() string     { return "daily_summary" }
func (j *DailySummaryJob) Schedule() string { return "0 40 15 * * MON-FRI" } // 장 마감 후

func (j *DailySummaryJob) Run(ctx context.Context) error {
	if j.Ledger == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	summary, err := j.Ledger.GetDailySummary(ctx)
	if err != nil {
		return fmt.Errorf("daily summary query: %w", err)
	}

	j.Log.WithFields(map[string]interface{}{
		"trades":   summary.Trades,
		"closed":   summary.Closed,
		"win_rate": summary.WinRate,
		"avg_pct":  summary.AvgPct,
		"best":     summary.BestCode,
	}).Info("Daily paper trading summary")

	return nil
}

// WatchlistSnapshotJob publishes the current deep scan output to Redis so
// other processes (대시보드 등) can read it without hitting this service.
type WatchlistSnapshotJob struct {
	Pipeline *scanner.Pipeline
	Cache    *redis.Cache
	Log      *logger.Logger
}

func (j *WatchlistSnapshotJob) Name() string     { return "watchlist_snapshot" }
func (j *WatchlistSnapshotJob) Schedule() string { return "30 * * * * *" } // 매분

func (j *WatchlistSnapshotJob) Run(ctx context.Context) error {
	candidates := j.Pipeline.DeepCandidates()
	if len(candidates) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return j.Cache.Set(ctx, redis.ScreenResultKey("deep"), candidates, 2*time.Minute)
}
