package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/logger"
)

// Pipeline orchestrates the fast and deep scan stages and holds the latest
// published result of each. Stage results are swapped wholesale under the
// lock — readers never observe a partially updated list.
// ⭐ SSOT: 스캔 단계 오케스트레이션은 여기서만
type Pipeline struct {
	fast   *FastScanner
	deep   *DeepScanner
	cfg    config.ScanConfig
	logger *logger.Logger

	mu          sync.RWMutex
	lastFastRun time.Time
	lastDeepRun time.Time
	fastResults []*contracts.StockCandidate
	deepResults []*contracts.StockCandidate
	lastStages  []contracts.StageResult
}

// NewPipeline creates a scan pipeline
func NewPipeline(fast *FastScanner, deep *DeepScanner, cfg config.ScanConfig, log *logger.Logger) *Pipeline {
	return &Pipeline{
		fast:   fast,
		deep:   deep,
		cfg:    cfg,
		logger: log,
	}
}

// ShouldRunFastScan reports whether the fast scan interval has elapsed.
// 한 번도 안 돌았으면 (zero time) 무조건 true.
func (p *Pipeline) ShouldRunFastScan() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastFastRun.IsZero() || time.Since(p.lastFastRun) >= p.cfg.FastInterval
}

// ShouldRunDeepScan reports whether the deep scan interval has elapsed.
func (p *Pipeline) ShouldRunDeepScan() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastDeepRun.IsZero() || time.Since(p.lastDeepRun) >= p.cfg.DeepInterval
}

// RunFullPipeline runs each stage whose interval has elapsed. The deep scan
// only runs when fast candidates exist — 빈 입력에 심층 스캔을 돌리지 않는다.
// AI 분석은 여기 없음: 매수 판단 시점에 지연 실행된다.
func (p *Pipeline) RunFullPipeline(ctx context.Context) []contracts.StageResult {
	stages := make([]contracts.StageResult, 0, 2)

	if p.ShouldRunFastScan() {
		stages = append(stages, p.runFast(ctx))
	}

	if p.ShouldRunDeepScan() {
		if input := p.FastCandidates(); len(input) > 0 {
			stages = append(stages, p.runDeep(ctx, input))
		}
	}

	if len(stages) > 0 {
		p.mu.Lock()
		p.lastStages = stages
		p.mu.Unlock()
	}

	return stages
}

func (p *Pipeline) runFast(ctx context.Context) contracts.StageResult {
	start := time.Now()
	results := p.fast.Scan(ctx)

	p.mu.Lock()
	p.lastFastRun = time.Now()
	p.fastResults = results
	p.mu.Unlock()

	return contracts.StageResult{
		Stage:       contracts.StageFast,
		OutputCount: len(results),
		DurationMS:  time.Since(start).Milliseconds(),
	}
}

func (p *Pipeline) runDeep(ctx context.Context, input []*contracts.StockCandidate) contracts.StageResult {
	start := time.Now()
	results := p.deep.Scan(ctx, input)

	p.mu.Lock()
	p.lastDeepRun = time.Now()
	p.deepResults = results
	p.mu.Unlock()

	return contracts.StageResult{
		Stage:       contracts.StageDeep,
		InputCount:  len(input),
		OutputCount: len(results),
		DurationMS:  time.Since(start).Milliseconds(),
	}
}

// FastCandidates returns the latest published fast scan output.
func (p *Pipeline) FastCandidates() []*contracts.StockCandidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fastResults
}

// DeepCandidates returns the latest published deep scan output — the
// watchlist the trading loop consumes.
func (p *Pipeline) DeepCandidates() []*contracts.StockCandidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.deepResults
}

// Status summarises the pipeline for the API layer.
func (p *Pipeline) Status() PipelineStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PipelineStatus{
		LastFastRun: p.lastFastRun,
		LastDeepRun: p.lastDeepRun,
		FastCount:   len(p.fastResults),
		DeepCount:   len(p.deepResults),
		LastStages:  p.lastStages,
	}
}

// PipelineStatus is a point-in-time snapshot for monitoring.
type PipelineStatus struct {
	LastFastRun time.Time               `json:"last_fast_run"`
	LastDeepRun time.Time               `json:"last_deep_run"`
	FastCount   int                     `json:"fast_count"`
	DeepCount   int                     `json:"deep_count"`
	LastStages  []contracts.StageResult `json:"last_stages,omitempty"`
}
