package scoring

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/logger"
)

// System is the 10-criterion weighted scorer, usable both inside the scan
// pipeline and independently by the trading loop's buy gate.
// ⭐ SSOT: 종목 채점은 여기서만
type System struct {
	cfg    config.ScoringConfig
	cache  *cache.TTLCache // nil 이면 캐시 비활성 (테스트용)
	logger *logger.Logger
}

// NewSystem creates a scoring system.
// The cache is injected, never a package-level singleton, so tests can
// construct isolated instances.
func NewSystem(cfg config.ScoringConfig, c *cache.TTLCache, log *logger.Logger) *System {
	return &System{
		cfg:    cfg,
		cache:  c,
		logger: log,
	}
}

// Calculate scores one stock under the given scan type's weight profile.
// Pure apart from the result cache: identical input outside the cache TTL
// window yields an identical Result.
func (s *System) Calculate(c *contracts.StockCandidate, scanType ScanType) (*Result, error) {
	if c == nil || c.Code == "" {
		return nil, fmt.Errorf("scoring: candidate without code")
	}

	key := s.cacheKey(c, scanType)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if result, ok := cached.(*Result); ok {
				return result, nil
			}
		}
	}

	w := ProfileFor(scanType)

	breakdown := Breakdown{
		VolumeSurge:         round1(scoreVolumeSurge(c) * w.VolumeSurge),
		PriceMomentum:       round1(scorePriceMomentum(c) * w.PriceMomentum),
		InstitutionalBuying: round1(scoreInstitutionalBuying(c) * w.InstitutionalBuying),
		BidStrength:         round1(scoreBidStrength(c) * w.BidStrength),
		ExecutionIntensity:  round1(scoreExecutionIntensity(c) * w.ExecutionIntensity),
		BrokerActivity:      round1(scoreBrokerActivity(c) * w.BrokerActivity),
		ProgramTrading:      round1(scoreProgramTrading(c) * w.ProgramTrading),
		TechnicalIndicators: round1(scoreTechnicalIndicators(c) * w.TechnicalIndicators),
		MarketMomentum:      round1(scoreMarketMomentum(c) * w.MarketMomentum),
		VolatilityPattern:   round1(scoreVolatilityPattern(c, s.cfg.VolatilityMin, s.cfg.VolatilityMax) * w.VolatilityPattern),
	}

	total := breakdown.Sum()
	maxScore := w.MaxScore()
	percentage := 0.0
	if maxScore > 0 {
		percentage = total / maxScore * 100
	}

	result := &Result{
		Code:       c.Code,
		ScanType:   scanType,
		TotalScore: total,
		MaxScore:   maxScore,
		Percentage: percentage,
		Scores:     breakdown,
		Grade:      gradeFor(percentage),
		Timestamp:  time.Now(),
	}

	if s.cache != nil {
		s.cache.Set(key, result, s.cfg.CacheTTL)
	}

	return result, nil
}

// ScoreBatch scores candidates concurrently with a bounded worker pool.
// Output order matches input order. A failure scoring one stock yields a
// zero-valued result for that slot and never aborts the batch.
func (s *System) ScoreBatch(ctx context.Context, candidates []*contracts.StockCandidate, scanType ScanType) []*Result {
	results := make([]*Result, len(candidates))
	if len(candidates) == 0 {
		return results
	}

	workers := s.cfg.BatchWorkers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	type task struct {
		idx       int
		candidate *contracts.StockCandidate
	}

	tasks := make(chan task)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results[t.idx] = s.scoreOne(t.candidate, scanType)
			}
		}()
	}

	for i, c := range candidates {
		select {
		case <-ctx.Done():
			// 남은 슬롯은 0점 결과로 채운다
			for j := i; j < len(candidates); j++ {
				results[j] = s.zeroResult(candidates[j], scanType)
			}
			close(tasks)
			wg.Wait()
			return results
		case tasks <- task{idx: i, candidate: c}:
		}
	}
	close(tasks)
	wg.Wait()

	return results
}

// scoreOne wraps Calculate so a single bad candidate degrades to a zero
// result instead of taking the batch down.
func (s *System) scoreOne(c *contracts.StockCandidate, scanType ScanType) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			}).Error("Scoring panicked for candidate")
			result = s.zeroResult(c, scanType)
		}
	}()

	result, err := s.Calculate(c, scanType)
	if err != nil {
		s.logger.WithError(err).Warn("Scoring failed for candidate")
		return s.zeroResult(c, scanType)
	}
	return result
}

// zeroResult is the placeholder for a failed slot in a batch.
func (s *System) zeroResult(c *contracts.StockCandidate, scanType ScanType) *Result {
	code := ""
	if c != nil {
		code = c.Code
	}
	return &Result{
		Code:      code,
		ScanType:  scanType,
		MaxScore:  ProfileFor(scanType).MaxScore(),
		Grade:     "F",
		Timestamp: time.Now(),
	}
}

// cacheKey derives the cache key from the scored snapshot's content.
func (s *System) cacheKey(c *contracts.StockCandidate, scanType ScanType) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d|%s", c.Code, c.Price, c.Volume, scanType)
	return fmt.Sprintf("score_%x", h.Sum64())
}

// ShouldBuy is the pure threshold gate on the total score.
func ShouldBuy(result *Result, threshold int) bool {
	return result != nil && result.TotalScore >= float64(threshold)
}

// EvaluateBuy combines the AI signal with the quantitative score.
// 비대칭 임계값은 의도된 것: AI가 중립(hold)이면 정량 점수가 더 높아야 한다.
//   buy  → score ≥ buyThreshold  (기본 250)
//   hold → score ≥ holdThreshold (기본 300)
//   sell → 항상 거부
func EvaluateBuy(signal contracts.Signal, result *Result, buyThreshold, holdThreshold int) bool {
	if result == nil {
		return false
	}

	switch signal {
	case contracts.SignalBuy:
		return result.TotalScore >= float64(buyThreshold)
	case contracts.SignalHold:
		return result.TotalScore >= float64(holdThreshold)
	default:
		return false
	}
}
