package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/logger"
)

// Index codes for market-condition classification
const (
	indexKOSPI  = "0001"
	indexKOSDAQ = "1001"
)

// 시장 상태 판정 임계값 (지수 평균 등락률, %)
const (
	bullishThreshold  = 1.5
	bearishThreshold  = -1.5
	sidewaysThreshold = 0.3
)

// Duplicate suppression bucket size and retention
const (
	dedupBucket    = 5 * time.Minute
	dedupRetention = 5 // buckets (~25분)
)

// AdaptiveLayer applies three independent adjustments to fast scan output:
// learned preference, market-condition filtering, duplicate suppression.
// ⭐ SSOT: 적응 보정은 여기서만
type AdaptiveLayer struct {
	provider contracts.MarketDataProvider
	cache    *cache.TTLCache
	logger   *logger.Logger

	// 모의매매 이력에서 1회 로드되는 정적 편향 — 장중 갱신하지 않음
	preferences map[string]contracts.TradeOutcome

	// (종목, 5분 버킷) → 마지막 배출 버킷
	seen map[string]int64
}

// NewAdaptiveLayer creates the adjustment layer, loading the trade-outcome
// history once. A missing or failing repository degrades to an empty
// preference table with a warning — the layer still filters and dedupes.
func NewAdaptiveLayer(
	ctx context.Context,
	provider contracts.MarketDataProvider,
	c *cache.TTLCache,
	outcomes contracts.OutcomeRepository,
	log *logger.Logger,
) *AdaptiveLayer {
	layer := &AdaptiveLayer{
		provider:    provider,
		cache:       c,
		logger:      log,
		preferences: make(map[string]contracts.TradeOutcome),
		seen:        make(map[string]int64),
	}

	if outcomes != nil {
		prefs, err := outcomes.GetOutcomes(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to load trade outcomes, scanning without learned preference")
		} else {
			layer.preferences = prefs
			log.WithField("tickers", len(prefs)).Info("Loaded trade-outcome preferences")
		}
	}

	return layer
}

// Apply runs the three adjustments in order:
// 학습 보정 → 시장 상태 필터 → 중복 억제
func (a *AdaptiveLayer) Apply(ctx context.Context, candidates []*contracts.StockCandidate) []*contracts.StockCandidate {
	a.applyPreferences(candidates)
	candidates = a.filterByMarketCondition(ctx, candidates)
	candidates = a.suppressDuplicates(candidates)
	return candidates
}

// applyPreferences adds the learned bonus/penalty to the fast scan score:
// 승리 이력 +10, 패배 이력 -5.
func (a *AdaptiveLayer) applyPreferences(candidates []*contracts.StockCandidate) {
	for _, c := range candidates {
		outcome, exists := a.preferences[c.Code]
		if !exists {
			continue
		}

		if outcome.Wins > 0 {
			c.FastScanScore += 10
			if c.FastScanBreakdown != nil {
				c.FastScanBreakdown["learned_preference"] = 10
			}
		} else if outcome.Losses > 0 {
			c.FastScanScore -= 5
			if c.FastScanBreakdown != nil {
				c.FastScanBreakdown["learned_preference"] = -5
			}
		}
	}
}

// filterByMarketCondition hard-drops candidates that fight the regime:
// 약세장에서 급등주(rate ≥ 5), 강세장에서 정체주(rate ≤ 1).
// 점수 조정이 아니라 배제 필터 — 걸린 후보는 목록에서 사라진다.
func (a *AdaptiveLayer) filterByMarketCondition(ctx context.Context, candidates []*contracts.StockCandidate) []*contracts.StockCandidate {
	condition := a.MarketCondition(ctx)
	if condition != contracts.MarketBullish && condition != contracts.MarketBearish {
		return candidates
	}

	kept := make([]*contracts.StockCandidate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		if condition == contracts.MarketBearish && c.Rate >= 5.0 {
			dropped++
			continue
		}
		if condition == contracts.MarketBullish && c.Rate <= 1.0 {
			dropped++
			continue
		}
		kept = append(kept, c)
	}

	if dropped > 0 {
		a.logger.WithFields(map[string]interface{}{
			"condition": condition,
			"dropped":   dropped,
		}).Info("Market-condition filter dropped candidates")
	}

	return kept
}

// MarketCondition classifies the broader market from the KOSPI and KOSDAQ
// change rates, cached for 60s. Both feeds failing → normal (필터 미적용).
func (a *AdaptiveLayer) MarketCondition(ctx context.Context) contracts.MarketCondition {
	const cacheKey = "market_condition"
	if cached, ok := a.cache.Get(cacheKey); ok {
		if condition, ok := cached.(contracts.MarketCondition); ok {
			return condition
		}
	}

	var sum float64
	var count int
	for _, code := range []string{indexKOSPI, indexKOSDAQ} {
		quote, err := a.provider.GetIndex(ctx, code)
		if err != nil {
			a.logger.WithError(err).WithField("index", code).Debug("Index fetch failed")
			continue
		}
		sum += quote.ChangeRate
		count++
	}

	condition := contracts.MarketNormal
	if count > 0 {
		avg := sum / float64(count)
		switch {
		case avg >= bullishThreshold:
			condition = contracts.MarketBullish
		case avg <= bearishThreshold:
			condition = contracts.MarketBearish
		case avg > -sidewaysThreshold && avg < sidewaysThreshold:
			condition = contracts.MarketSideways
		}
	}

	a.cache.Set(cacheKey, condition, cache.TTLMarket)
	return condition
}

// suppressDuplicates drops candidates already emitted within the current
// 5-minute bucket, and purges bucket keys more than 5 buckets stale.
func (a *AdaptiveLayer) suppressDuplicates(candidates []*contracts.StockCandidate) []*contracts.StockCandidate {
	bucket := time.Now().Unix() / int64(dedupBucket.Seconds())

	// 오래된 버킷 키 정리
	for key, b := range a.seen {
		if bucket-b > dedupRetention {
			delete(a.seen, key)
		}
	}

	kept := make([]*contracts.StockCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := fmt.Sprintf("%s:%d", c.Code, bucket)
		if _, dup := a.seen[key]; dup {
			continue
		}
		a.seen[key] = bucket
		kept = append(kept, c)
	}

	return kept
}
