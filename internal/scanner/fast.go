package scanner

import (
	"context"
	"sort"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/logger"
)

// FastScanner implements the 1st stage: a cheap, high-recall filter over the
// externally screened universe.
// ⭐ SSOT: 1차 스캔 로직은 여기서만
type FastScanner struct {
	provider contracts.MarketDataProvider
	adaptive *AdaptiveLayer
	cfg      config.ScanConfig
	logger   *logger.Logger
}

// NewFastScanner creates a fast scanner
func NewFastScanner(
	provider contracts.MarketDataProvider,
	adaptive *AdaptiveLayer,
	cfg config.ScanConfig,
	log *logger.Logger,
) *FastScanner {
	return &FastScanner{
		provider: provider,
		adaptive: adaptive,
		cfg:      cfg,
		logger:   log,
	}
}

// Scan narrows the screened universe to a bounded candidate set ranked by a
// 100-point heuristic score.
//
// A screener failure is logged and yields an empty list — "no candidates
// this cycle", never a fatal error. ETF/파생/레버리지 제외는 상류 스크리너
// 책임이며 여기서는 감점만 될 뿐 강제 배제하지 않는다.
func (s *FastScanner) Scan(ctx context.Context) []*contracts.StockCandidate {
	filter := contracts.ScreenFilter{
		MinPrice:     s.cfg.MinPrice,
		MaxPrice:     s.cfg.MaxPrice,
		MinVolume:    s.cfg.MinVolume,
		MinRate:      s.cfg.MinRate,
		MaxRate:      s.cfg.MaxRate,
		MinMarketCap: s.cfg.MinMarketCap,
	}

	screened, err := s.provider.Screen(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Screener call failed, skipping fast scan cycle")
		return nil
	}

	now := time.Now()
	candidates := make([]*contracts.StockCandidate, 0, len(screened))
	for _, stock := range screened {
		c := &contracts.StockCandidate{
			Code:   stock.Code,
			Name:   stock.Name,
			Price:  stock.Price,
			Volume: stock.Volume,
			Rate:   stock.Rate,
		}

		score, breakdown := s.scoreCandidate(c)
		c.FastScanScore = score
		c.FastScanBreakdown = breakdown
		c.FastScanTime = now

		candidates = append(candidates, c)
	}

	// 학습 보정 → 시장 상태 필터 → 중복 억제
	candidates = s.adaptive.Apply(ctx, candidates)

	// Order by final adjusted score and truncate
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FastScanScore > candidates[j].FastScanScore
	})
	if len(candidates) > s.cfg.FastMaxCandidates {
		candidates = candidates[:s.cfg.FastMaxCandidates]
	}

	s.logger.WithFields(map[string]interface{}{
		"screened":   len(screened),
		"candidates": len(candidates),
	}).Info("Fast scan completed")

	return candidates
}

// scoreCandidate computes the 100-point heuristic as the sum of three
// independent bands: 거래대금 / 등락률 / 거래량.
func (s *FastScanner) scoreCandidate(c *contracts.StockCandidate) (float64, map[string]float64) {
	breakdown := make(map[string]float64, 3)

	// 거래대금 (가격×거래량)
	tradingValue := c.TradingValue()
	var valueScore float64
	switch {
	case tradingValue >= 1_000_000_000:
		valueScore = 40
	case tradingValue >= 500_000_000:
		valueScore = 30
	case tradingValue >= 100_000_000:
		valueScore = 20
	}
	breakdown["trading_value"] = valueScore

	// 등락률 — 비대칭 밴드: 완만한 상승을 보상하고 정체와 급등을 모두 감점
	var rateScore float64
	switch {
	case c.Rate >= 2 && c.Rate <= 10:
		rateScore = 30
	case c.Rate >= 1 && c.Rate <= 15:
		rateScore = 20
	}
	breakdown["change_rate"] = rateScore

	// 거래량
	var volumeScore float64
	switch {
	case c.Volume >= 1_000_000:
		volumeScore = 30
	case c.Volume >= 500_000:
		volumeScore = 20
	case c.Volume >= 100_000:
		volumeScore = 10
	}
	breakdown["volume"] = volumeScore

	return valueScore + rateScore + volumeScore, breakdown
}
