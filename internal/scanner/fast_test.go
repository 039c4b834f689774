package scanner

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/logger"
)

// 시장 상태 normal 로 고정하는 인덱스 피드
func neutralIndexFn(ctx context.Context, indexCode string) (*contracts.IndexQuote, error) {
	return &contracts.IndexQuote{ChangeRate: 0.1}, nil
}

func newTestAdaptive(t *testing.T, provider contracts.MarketDataProvider, outcomes contracts.OutcomeRepository) *AdaptiveLayer {
	t.Helper()
	return NewAdaptiveLayer(context.Background(), provider, cache.New(), outcomes, logger.NewNop())
}

func TestFastScan_ScoresHealthyCandidateFull(t *testing.T) {
	provider := &fakeProvider{
		screenFn: func(ctx context.Context, filter contracts.ScreenFilter) ([]contracts.ScreenedStock, error) {
			return []contracts.ScreenedStock{
				{Code: "005930", Name: "삼성전자", Price: 50_000, Volume: 2_000_000, Rate: 4.0},
			}, nil
		},
		indexFn: neutralIndexFn,
	}

	s := NewFastScanner(provider, newTestAdaptive(t, provider, nil), testScanConfig(), logger.NewNop())
	candidates := s.Scan(context.Background())

	require.Len(t, candidates, 1)
	c := candidates[0]

	// 거래대금 1000억 → 40, 등락률 4% → 30, 거래량 200만주 → 30
	assert.Equal(t, 100.0, c.FastScanScore)
	assert.Equal(t, 40.0, c.FastScanBreakdown["trading_value"])
	assert.Equal(t, 30.0, c.FastScanBreakdown["change_rate"])
	assert.Equal(t, 30.0, c.FastScanBreakdown["volume"])
	assert.False(t, c.FastScanTime.IsZero())
}

func TestFastScan_ScreenerFailureYieldsEmptyCycle(t *testing.T) {
	provider := &fakeProvider{
		screenFn: func(ctx context.Context, filter contracts.ScreenFilter) ([]contracts.ScreenedStock, error) {
			return nil, fmt.Errorf("api down")
		},
		indexFn: neutralIndexFn,
	}

	s := NewFastScanner(provider, newTestAdaptive(t, provider, nil), testScanConfig(), logger.NewNop())

	// 치명적 오류가 아니라 "이번 사이클 후보 없음"
	assert.Empty(t, s.Scan(context.Background()))
}

func TestFastScan_OrdersByScoreAndTruncates(t *testing.T) {
	provider := &fakeProvider{
		screenFn: func(ctx context.Context, filter contracts.ScreenFilter) ([]contracts.ScreenedStock, error) {
			stocks := make([]contracts.ScreenedStock, 60)
			for i := range stocks {
				stocks[i] = contracts.ScreenedStock{
					Code:   fmt.Sprintf("%06d", i),
					Price:  10_000,
					Volume: int64(100_000 + i*50_000), // 점수 차등
					Rate:   3.0,
				}
			}
			return stocks, nil
		},
		indexFn: neutralIndexFn,
	}

	cfg := testScanConfig()
	s := NewFastScanner(provider, newTestAdaptive(t, provider, nil), cfg, logger.NewNop())
	candidates := s.Scan(context.Background())

	require.Len(t, candidates, cfg.FastMaxCandidates)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].FastScanScore, candidates[i].FastScanScore)
	}
}

func TestFastScan_AppliesLearnedPreference(t *testing.T) {
	provider := &fakeProvider{
		screenFn: func(ctx context.Context, filter contracts.ScreenFilter) ([]contracts.ScreenedStock, error) {
			return []contracts.ScreenedStock{
				{Code: "WINNER", Price: 50_000, Volume: 2_000_000, Rate: 4.0},
				{Code: "LOSER", Price: 50_000, Volume: 2_000_000, Rate: 4.0},
				{Code: "NEUTRAL", Price: 50_000, Volume: 2_000_000, Rate: 4.0},
			}, nil
		},
		indexFn: neutralIndexFn,
	}
	outcomes := &fakeOutcomes{outcomes: map[string]contracts.TradeOutcome{
		"WINNER": {Code: "WINNER", Wins: 3},
		"LOSER":  {Code: "LOSER", Losses: 2},
	}}

	s := NewFastScanner(provider, newTestAdaptive(t, provider, outcomes), testScanConfig(), logger.NewNop())
	candidates := s.Scan(context.Background())
	require.Len(t, candidates, 3)

	scores := map[string]float64{}
	for _, c := range candidates {
		scores[c.Code] = c.FastScanScore
	}

	assert.Equal(t, 110.0, scores["WINNER"])
	assert.Equal(t, 95.0, scores["LOSER"])
	assert.Equal(t, 100.0, scores["NEUTRAL"])

	// 승리 이력이 정렬 순위도 끌어올린다
	assert.Equal(t, "WINNER", candidates[0].Code)
}
