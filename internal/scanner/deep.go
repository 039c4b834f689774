package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/logger"
)

// 주요 창구 표본 (키움 거래원 코드)
var majorBrokerCodes = []string{"001", "003", "005", "012", "016"}

// Rate-limit compliance pacing between external calls.
// 취소 인지 대기가 아니라 단순한 호출 간격이다.
const (
	brokerCallPacing = 50 * time.Millisecond
	candidatePacing  = 100 * time.Millisecond
)

// ohlcvPeriod is the daily-bar window requested per candidate.
// 평균 거래량/변동성은 20일만 쓰지만 MACD(12,26)는 26봉이 필요해 여유를 둔다.
const ohlcvPeriod = 40

// Deep-scan 누적 보너스 사다리 (원/비율 절대값 기준)
const (
	instBonusTier1 = 50_000_000
	instBonusTier2 = 20_000_000
	instBonusTier3 = 10_000_000

	foreignBonusTier1 = 20_000_000
	foreignBonusTier2 = 10_000_000
	foreignBonusTier3 = 5_000_000
)

// DeepScanner implements the 2nd stage: per-candidate enrichment with
// signals too expensive to fetch for the full universe, a cumulative score,
// and one hard filter.
// ⭐ SSOT: 2차 스캔 로직은 여기서만
type DeepScanner struct {
	provider contracts.MarketDataProvider
	cache    *cache.TTLCache
	cfg      config.ScanConfig
	logger   *logger.Logger
}

// NewDeepScanner creates a deep scanner
func NewDeepScanner(
	provider contracts.MarketDataProvider,
	c *cache.TTLCache,
	cfg config.ScanConfig,
	log *logger.Logger,
) *DeepScanner {
	return &DeepScanner{
		provider: provider,
		cache:    c,
		cfg:      cfg,
		logger:   log,
	}
}

// Scan enriches the fast scan survivors (or an explicitly supplied list),
// computes the cumulative deep score, applies the institutional/foreign hard
// filter, and returns the top candidates by deep score.
//
// 후보 하나의 보강 중 예기치 못한 오류는 그 후보의 2단계 필드만 초기화하고
// 다음 후보로 넘어간다 — 종목 하나가 배치를 죽이지 않는다.
func (s *DeepScanner) Scan(ctx context.Context, candidates []*contracts.StockCandidate) []*contracts.StockCandidate {
	if len(candidates) == 0 {
		return nil
	}

	enriched := make([]*contracts.StockCandidate, 0, len(candidates))
	for i, src := range candidates {
		if i > 0 {
			select {
			case <-ctx.Done():
				s.logger.Warn("Deep scan interrupted by context")
				return s.finalize(enriched)
			case <-time.After(candidatePacing):
			}
		}

		c := src.Clone()
		if err := s.enrich(ctx, c); err != nil {
			s.logger.WithError(err).WithField("code", c.Code).Warn("Enrichment failed, resetting deep fields")
			c.ResetDeepFields()
		}
		c.DeepScanScore = s.computeScore(c)
		c.DeepScanTime = time.Now()
		enriched = append(enriched, c)
	}

	filtered := s.applyHardFilter(enriched)
	return s.finalize(filtered)
}

// finalize orders by deep score and truncates to the stage cap.
func (s *DeepScanner) finalize(candidates []*contracts.StockCandidate) []*contracts.StockCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DeepScanScore > candidates[j].DeepScanScore
	})
	if len(candidates) > s.cfg.DeepMaxCandidates {
		candidates = candidates[:s.cfg.DeepMaxCandidates]
	}

	s.logger.WithField("candidates", len(candidates)).Info("Deep scan completed")
	return candidates
}

// enrich fetches the per-candidate signals. Each step is independently
// guarded: a failed source leaves its field absent and the next step runs.
// 반환 오류는 "예기치 못한" 실패에만 쓰인다 (데이터 없음은 오류가 아님).
func (s *DeepScanner) enrich(ctx context.Context, c *contracts.StockCandidate) error {
	if c.Code == "" {
		return fmt.Errorf("candidate without code")
	}

	// 1. 기관/외국인 일간 순매수
	if investor, err := s.provider.GetInvestorData(ctx, c.Code); err == nil && investor != nil {
		c.InstitutionalNetBuy = contracts.Int64Ptr(investor.InstitutionalNetBuy)
		c.ForeignNetBuy = contracts.Int64Ptr(investor.ForeignNetBuy)
	}

	// 2. 호가 잔량비 (매도 잔량 0이면 0으로 — 0 나눗셈 방지)
	if bidAsk, err := s.provider.GetBidAsk(ctx, c.Code); err == nil && bidAsk != nil {
		ratio := 0.0
		if bidAsk.TotalAskQty > 0 {
			ratio = float64(bidAsk.TotalBidQty) / float64(bidAsk.TotalAskQty)
		}
		c.BidAskRatio = contracts.Float64Ptr(ratio)
	}

	// 3. 5일 수급 추이 — 원시 시리즈 그대로 보관, 해석은 채점에서
	if trend, err := s.provider.GetInstitutionalTrend(ctx, c.Code, 5); err == nil && len(trend) > 0 {
		c.InstitutionalTrend = trend
	}

	// 4. 일봉 → 20일 평균 거래량 / 변동성 / 기술적 지표
	if bars, err := s.provider.GetDailyOHLCV(ctx, c.Code, ohlcvPeriod); err == nil && len(bars) > 0 {
		c.AvgVolume = computeAvgVolume(bars, 20)
		c.Volatility = computeVolatility(bars, 20)
		c.Technical = computeTechnical(bars)
	}

	// 5. 주요 창구 5곳 순매수 (레이트 리밋 준수 간격)
	s.enrichBrokerActivity(ctx, c)

	// 6. 체결강도 — 사이클 내 변화가 느려 별도 TTL 캐시
	c.ExecutionIntensity = s.cachedExecutionIntensity(ctx, c.Code)

	// 7. 프로그램 순매수 — 동일하게 TTL 캐시
	c.ProgramNetBuy = s.cachedProgramNetBuy(ctx, c.Code)

	return nil
}

// enrichBrokerActivity samples the five major broker windows.
func (s *DeepScanner) enrichBrokerActivity(ctx context.Context, c *contracts.StockCandidate) {
	buyCount := 0
	var netBuy int64

	for i, broker := range majorBrokerCodes {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(brokerCallPacing):
			}
		}

		trades, err := s.provider.GetBrokerTrading(ctx, broker, c.Code, 3)
		if err != nil || len(trades) == 0 {
			continue
		}

		var sum int64
		for _, t := range trades {
			sum += t.NetQty
		}
		if sum > 0 {
			buyCount++
			netBuy += sum
		}
	}

	c.TopBrokerBuyCount = buyCount
	c.TopBrokerNetBuy = netBuy
}

// cachedExecutionIntensity looks up execution_{code} before calling out.
func (s *DeepScanner) cachedExecutionIntensity(ctx context.Context, code string) *float64 {
	key := "execution_" + code
	if cached, ok := s.cache.Get(key); ok {
		if v, ok := cached.(float64); ok {
			return &v
		}
	}

	v, err := s.provider.GetExecutionIntensity(ctx, code)
	if err != nil {
		return nil
	}

	s.cache.Set(key, v, cache.TTLExecution)
	return &v
}

// cachedProgramNetBuy looks up program_{code} before calling out.
func (s *DeepScanner) cachedProgramNetBuy(ctx context.Context, code string) *int64 {
	key := "program_" + code
	if cached, ok := s.cache.Get(key); ok {
		if v, ok := cached.(int64); ok {
			return &v
		}
	}

	v, err := s.provider.GetProgramTrading(ctx, code)
	if err != nil {
		return nil
	}

	s.cache.Set(key, v, cache.TTLProgram)
	return &v
}

// computeScore extends the fast scan score with the deep bonuses.
// 2단계 점수는 1단계 점수를 그대로 포함한다 (누적, 재계산 아님).
func (s *DeepScanner) computeScore(c *contracts.StockCandidate) float64 {
	score := c.FastScanScore

	if c.InstitutionalNetBuy != nil {
		switch v := *c.InstitutionalNetBuy; {
		case v >= instBonusTier1:
			score += 30
		case v >= instBonusTier2:
			score += 20
		case v >= instBonusTier3:
			score += 10
		}
	}

	if c.ForeignNetBuy != nil {
		switch v := *c.ForeignNetBuy; {
		case v >= foreignBonusTier1:
			score += 20
		case v >= foreignBonusTier2:
			score += 15
		case v >= foreignBonusTier3:
			score += 10
		}
	}

	if c.BidAskRatio != nil {
		switch ratio := *c.BidAskRatio; {
		case ratio >= 1.5:
			score += 20
		case ratio >= 1.2:
			score += 15
		case ratio >= 1.0:
			score += 10
		}
	}

	return score
}

// applyHardFilter drops candidates without meaningful institutional or
// foreign buying — unless the whole batch has no institutional/foreign data
// at all, in which case the filter is skipped (주말/장외 등 데이터 소스
// 전체 장애 시 유니버스 전멸 방지). 이 fail-open 은 의도된 정책이다.
//
// 참고: "호출 실패"와 "정당한 0"을 구분하지 못하는 알려진 한계가 있다 —
// 거래가 거의 없는 종목만 모인 배치는 장애와 같게 보인다.
func (s *DeepScanner) applyHardFilter(candidates []*contracts.StockCandidate) []*contracts.StockCandidate {
	allAbsent := true
	for _, c := range candidates {
		if (c.InstitutionalNetBuy != nil && *c.InstitutionalNetBuy != 0) ||
			(c.ForeignNetBuy != nil && *c.ForeignNetBuy != 0) {
			allAbsent = false
			break
		}
	}

	if allAbsent {
		s.logger.Warn("No institutional/foreign data in batch, skipping hard filter")
		return candidates
	}

	minInst := s.cfg.MinInstitutionalBuy
	minForeign := minInst / 2

	kept := make([]*contracts.StockCandidate, 0, len(candidates))
	for _, c := range candidates {
		instOK := c.InstitutionalNetBuy != nil && *c.InstitutionalNetBuy >= minInst
		foreignOK := c.ForeignNetBuy != nil && *c.ForeignNetBuy >= minForeign
		if instOK || foreignOK {
			kept = append(kept, c)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"input":  len(candidates),
		"passed": len(kept),
	}).Info("Institutional/foreign filter applied")

	return kept
}
