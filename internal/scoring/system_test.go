package scoring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/logger"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		CacheTTL:      30 * time.Second,
		BatchWorkers:  4,
		VolatilityMin: 0.02,
		VolatilityMax: 0.15,
	}
}

// 모든 기준이 실데이터로 최대치를 받는 후보
func maxedCandidate(code string) *contracts.StockCandidate {
	return &contracts.StockCandidate{
		Code:                code,
		Name:                "테스트종목",
		Price:               50_000,
		Volume:              5_000_000,
		Rate:                10,
		AvgVolume:           contracts.Int64Ptr(1_000_000),
		InstitutionalNetBuy: contracts.Int64Ptr(60_000_000),
		ForeignNetBuy:       contracts.Int64Ptr(12_000_000),
		InstitutionalTrend: []contracts.InvestorTrendDay{
			{Date: "2025-03-14", InstNetBuy: 100, ForeignNetBuy: 100},
		},
		BidAskRatio:        contracts.Float64Ptr(1.8),
		ExecutionIntensity: contracts.Float64Ptr(160),
		TopBrokerBuyCount:  5,
		ProgramNetBuy:      contracts.Int64Ptr(6_000_000),
		Volatility:         contracts.Float64Ptr(0.085),
		Technical: &contracts.TechnicalSnapshot{
			RSI: 55, MACDHist: 1, BollingerPos: 0.6, MA5: 101, MA20: 100,
		},
	}
}

func TestDefaultProfileMaxScoreIs440(t *testing.T) {
	assert.Equal(t, 440.0, ProfileFor(ScanTypeDefault).MaxScore())
}

func TestCalculate_TotalEqualsBreakdownSum(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())

	for _, scanType := range []ScanType{ScanTypeDefault, ScanTypeVolumeBased, ScanTypePriceChange, ScanTypeAIDriven} {
		result, err := s.Calculate(maxedCandidate("005930"), scanType)
		require.NoError(t, err)

		assert.InDelta(t, result.Scores.Sum(), result.TotalScore, 0.001, "scan type %s", scanType)
		assert.LessOrEqual(t, result.TotalScore, result.MaxScore)
		assert.Greater(t, result.Percentage, 0.0)
	}
}

func TestCalculate_MaxedCandidateGetsFullDefaultScore(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())

	result, err := s.Calculate(maxedCandidate("005930"), ScanTypeDefault)
	require.NoError(t, err)

	assert.InDelta(t, 440.0, result.TotalScore, 0.001)
	assert.Equal(t, "S", result.Grade)
}

func TestCalculate_RejectsInvalidCandidate(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())

	_, err := s.Calculate(nil, ScanTypeDefault)
	assert.Error(t, err)

	_, err = s.Calculate(&contracts.StockCandidate{}, ScanTypeDefault)
	assert.Error(t, err)
}

func TestCalculate_UnknownScanTypeFallsBackToDefault(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())

	got, err := s.Calculate(maxedCandidate("005930"), ScanType("nonsense"))
	require.NoError(t, err)
	want, err := s.Calculate(maxedCandidate("005930"), ScanTypeDefault)
	require.NoError(t, err)

	assert.Equal(t, want.TotalScore, got.TotalScore)
	assert.Equal(t, want.MaxScore, got.MaxScore)
}

func TestCalculate_CacheReturnsSameResult(t *testing.T) {
	s := NewSystem(testScoringConfig(), cache.New(), logger.NewNop())

	first, err := s.Calculate(maxedCandidate("005930"), ScanTypeDefault)
	require.NoError(t, err)
	second, err := s.Calculate(maxedCandidate("005930"), ScanTypeDefault)
	require.NoError(t, err)

	// 동일 스냅샷은 TTL 내 캐시 적중 — 타임스탬프까지 동일한 같은 객체
	assert.Same(t, first, second)
}

func TestCalculate_CacheKeyedByContent(t *testing.T) {
	s := NewSystem(testScoringConfig(), cache.New(), logger.NewNop())

	first, err := s.Calculate(maxedCandidate("005930"), ScanTypeDefault)
	require.NoError(t, err)

	changed := maxedCandidate("005930")
	changed.Price = 51_000
	second, err := s.Calculate(changed, ScanTypeDefault)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestWeightProfiles_EmphasisDiffers(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())

	// 거래량만 강한 후보는 volume_based 프로파일에서 더 높게 평가되어야 함
	c := &contracts.StockCandidate{
		Code:      "005930",
		Volume:    5_000_000,
		Rate:      0.5,
		AvgVolume: contracts.Int64Ptr(1_000_000),
	}

	volBased, err := s.Calculate(c, ScanTypeVolumeBased)
	require.NoError(t, err)
	priceChange, err := s.Calculate(c, ScanTypePriceChange)
	require.NoError(t, err)

	assert.Greater(t, volBased.Scores.VolumeSurge, priceChange.Scores.VolumeSurge)
}

func TestScoreBatch_PreservesOrder(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())

	candidates := make([]*contracts.StockCandidate, 20)
	for i := range candidates {
		candidates[i] = maxedCandidate(fmt.Sprintf("%06d", i))
	}

	results := s.ScoreBatch(context.Background(), candidates, ScanTypeDefault)

	require.Len(t, results, len(candidates))
	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, candidates[i].Code, r.Code, "slot %d must match input order", i)
	}
}

func TestScoreBatch_BadCandidateYieldsZeroSlot(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())

	candidates := []*contracts.StockCandidate{
		maxedCandidate("000001"),
		{}, // 코드 없음 — 채점 실패
		maxedCandidate("000003"),
	}

	results := s.ScoreBatch(context.Background(), candidates, ScanTypeDefault)

	require.Len(t, results, 3)
	assert.Greater(t, results[0].TotalScore, 0.0)
	assert.Equal(t, 0.0, results[1].TotalScore)
	assert.Equal(t, "F", results[1].Grade)
	assert.Greater(t, results[2].TotalScore, 0.0)
}

func TestScoreBatch_Empty(t *testing.T) {
	s := NewSystem(testScoringConfig(), nil, logger.NewNop())
	assert.Empty(t, s.ScoreBatch(context.Background(), nil, ScanTypeDefault))
}

func TestShouldBuy(t *testing.T) {
	assert.True(t, ShouldBuy(&Result{TotalScore: 300}, 300))
	assert.True(t, ShouldBuy(&Result{TotalScore: 301}, 300))
	assert.False(t, ShouldBuy(&Result{TotalScore: 299.9}, 300))
	assert.False(t, ShouldBuy(nil, 300))
}

func TestEvaluateBuy_AsymmetricThresholds(t *testing.T) {
	tests := []struct {
		name     string
		signal   contracts.Signal
		score    float64
		expected bool
	}{
		{"buy signal above buy threshold", contracts.SignalBuy, 260, true},
		{"buy signal below buy threshold", contracts.SignalBuy, 240, false},
		{"hold signal needs higher score", contracts.SignalHold, 260, false},
		{"hold signal above hold threshold", contracts.SignalHold, 310, true},
		{"sell always rejected", contracts.SignalSell, 400, false},
		{"unknown signal rejected", contracts.Signal("maybe"), 400, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &Result{TotalScore: tt.score}
			assert.Equal(t, tt.expected, EvaluateBuy(tt.signal, result, 250, 300))
		})
	}
}

func TestGradeBands(t *testing.T) {
	tests := []struct {
		percentage float64
		grade      string
	}{
		{95, "S"}, {85, "A"}, {75, "B"}, {65, "C"}, {55, "D"}, {10, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.grade, gradeFor(tt.percentage), "percentage %.0f", tt.percentage)
	}
}
