package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/scout/internal/contracts"
)

func TestScoreVolumeSurge_RealRatio(t *testing.T) {
	tests := []struct {
		name      string
		volume    int64
		avgVolume int64
		expected  float64
	}{
		{"5x surge", 5_000_000, 1_000_000, 60},
		{"3x surge", 3_000_000, 1_000_000, 45},
		{"2x surge", 2_000_000, 1_000_000, 30},
		{"at average", 1_000_000, 1_000_000, 15},
		{"below average", 500_000, 1_000_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &contracts.StockCandidate{
				Volume:    tt.volume,
				AvgVolume: contracts.Int64Ptr(tt.avgVolume),
			}
			assert.Equal(t, tt.expected, scoreVolumeSurge(c))
		})
	}
}

func TestScoreVolumeSurge_FallbackCapsBelowReal(t *testing.T) {
	// 평균 거래량이 없으면 절대 거래량 폴백 — 실데이터 최대치(60)보다 낮아야 함
	c := &contracts.StockCandidate{Volume: 10_000_000}
	got := scoreVolumeSurge(c)

	assert.Equal(t, 48.0, got)
	assert.Less(t, got, 60.0)
}

func TestScoreVolumeSurge_FallbackLadder(t *testing.T) {
	tests := []struct {
		volume   int64
		expected float64
	}{
		{5_000_000, 48},
		{2_000_000, 36},
		{1_000_000, 24},
		{500_000, 12},
		{100_000, 0},
	}

	for _, tt := range tests {
		c := &contracts.StockCandidate{Volume: tt.volume}
		assert.Equal(t, tt.expected, scoreVolumeSurge(c), "volume %d", tt.volume)
	}
}

func TestScorePriceMomentum_Monotonic(t *testing.T) {
	rates := []float64{0.5, 1, 2, 3, 5, 7, 10}

	prev := -1.0
	for _, rate := range rates {
		c := &contracts.StockCandidate{Rate: rate}
		got := scorePriceMomentum(c)
		assert.GreaterOrEqual(t, got, prev, "rate %.1f must not score below a lower rate", rate)
		prev = got
	}
}

func TestScoreInstitutionalBuying(t *testing.T) {
	t.Run("strong buying with trend bonus hits cap", func(t *testing.T) {
		c := &contracts.StockCandidate{
			InstitutionalNetBuy: contracts.Int64Ptr(60_000_000),
			ForeignNetBuy:       contracts.Int64Ptr(12_000_000),
			InstitutionalTrend: []contracts.InvestorTrendDay{
				{Date: "2025-03-14", InstNetBuy: 1_000, ForeignNetBuy: 500},
			},
		}
		// 40 + 10 + 10 = 60 (캡과 일치)
		assert.Equal(t, 60.0, scoreInstitutionalBuying(c))
	})

	t.Run("no data scores zero", func(t *testing.T) {
		c := &contracts.StockCandidate{}
		assert.Equal(t, 0.0, scoreInstitutionalBuying(c))
	})

	t.Run("measured zero is not nil", func(t *testing.T) {
		// 실측 0원은 사다리 미달일 뿐, 추이 보너스는 여전히 가능
		c := &contracts.StockCandidate{
			InstitutionalNetBuy: contracts.Int64Ptr(0),
			ForeignNetBuy:       contracts.Int64Ptr(0),
			InstitutionalTrend: []contracts.InvestorTrendDay{
				{Date: "2025-03-14", InstNetBuy: 0, ForeignNetBuy: 0},
			},
		}
		assert.Equal(t, 10.0, scoreInstitutionalBuying(c))
	})

	t.Run("selling trend gets no bonus", func(t *testing.T) {
		c := &contracts.StockCandidate{
			InstitutionalNetBuy: contracts.Int64Ptr(60_000_000),
			InstitutionalTrend: []contracts.InvestorTrendDay{
				{Date: "2025-03-14", InstNetBuy: -1_000, ForeignNetBuy: 500},
			},
		}
		assert.Equal(t, 40.0, scoreInstitutionalBuying(c))
	})
}

func TestScoreBidStrength(t *testing.T) {
	tests := []struct {
		name     string
		ratio    *float64
		expected float64
	}{
		{"nil scores zero", nil, 0},
		{"strong bid", contracts.Float64Ptr(1.6), 40},
		{"moderate bid", contracts.Float64Ptr(1.3), 30},
		{"balanced", contracts.Float64Ptr(0.9), 20},
		{"weak", contracts.Float64Ptr(0.6), 10},
		{"measured zero", contracts.Float64Ptr(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &contracts.StockCandidate{BidAskRatio: tt.ratio}
			assert.Equal(t, tt.expected, scoreBidStrength(c))
		})
	}
}

func TestScoreExecutionIntensity_RealDataOnly(t *testing.T) {
	// 추정 폴백 없음 — nil 이면 무조건 0
	assert.Equal(t, 0.0, scoreExecutionIntensity(&contracts.StockCandidate{
		Volume: 10_000_000, Rate: 8,
	}))

	assert.Equal(t, 40.0, scoreExecutionIntensity(&contracts.StockCandidate{
		ExecutionIntensity: contracts.Float64Ptr(160),
	}))
	assert.Equal(t, 10.0, scoreExecutionIntensity(&contracts.StockCandidate{
		ExecutionIntensity: contracts.Float64Ptr(55),
	}))
	assert.Equal(t, 0.0, scoreExecutionIntensity(&contracts.StockCandidate{
		ExecutionIntensity: contracts.Float64Ptr(40),
	}))
}

func TestScoreBrokerActivity_Ladder(t *testing.T) {
	expected := []float64{0, 7, 13, 27, 33, 40}
	for count, want := range expected {
		c := &contracts.StockCandidate{TopBrokerBuyCount: count}
		assert.Equal(t, want, scoreBrokerActivity(c), "count %d", count)
	}

	// 범위 밖 방어
	assert.Equal(t, 40.0, scoreBrokerActivity(&contracts.StockCandidate{TopBrokerBuyCount: 9}))
	assert.Equal(t, 0.0, scoreBrokerActivity(&contracts.StockCandidate{TopBrokerBuyCount: -1}))
}

func TestScoreProgramTrading_RealPositiveOnly(t *testing.T) {
	assert.Equal(t, 0.0, scoreProgramTrading(&contracts.StockCandidate{}))
	assert.Equal(t, 0.0, scoreProgramTrading(&contracts.StockCandidate{
		ProgramNetBuy: contracts.Int64Ptr(-5_000_000),
	}))
	assert.Equal(t, 40.0, scoreProgramTrading(&contracts.StockCandidate{
		ProgramNetBuy: contracts.Int64Ptr(6_000_000),
	}))
	assert.Equal(t, 10.0, scoreProgramTrading(&contracts.StockCandidate{
		ProgramNetBuy: contracts.Int64Ptr(200_000),
	}))
}

func TestScoreTechnicalIndicators(t *testing.T) {
	t.Run("real indicators all favorable", func(t *testing.T) {
		c := &contracts.StockCandidate{
			Technical: &contracts.TechnicalSnapshot{
				RSI:          55,
				MACDHist:     1.2,
				BollingerPos: 0.6,
				MA5:          10_100,
				MA20:         10_000,
			},
		}
		assert.Equal(t, 40.0, scoreTechnicalIndicators(c))
	})

	t.Run("estimate branch caps below real", func(t *testing.T) {
		// 상승 + 거래량 동반: 추정 브랜치 최대 24
		c := &contracts.StockCandidate{Rate: 4, Volume: 1_000_000}
		got := scoreTechnicalIndicators(c)
		assert.Equal(t, 24.0, got)
		assert.Less(t, got, 40.0)
	})

	t.Run("overbought RSI scores partial", func(t *testing.T) {
		c := &contracts.StockCandidate{
			Technical: &contracts.TechnicalSnapshot{RSI: 70, MACDHist: -1, BollingerPos: 0.9, MA5: 1, MA20: 2},
		}
		assert.Equal(t, 5.0, scoreTechnicalIndicators(c))
	})
}

func TestScoreMarketMomentum(t *testing.T) {
	t.Run("real data both axes max", func(t *testing.T) {
		c := &contracts.StockCandidate{
			Volume:              3_000_000,
			Rate:                4,
			AvgVolume:           contracts.Int64Ptr(1_000_000),
			InstitutionalNetBuy: contracts.Int64Ptr(20_000_000),
		}
		assert.Equal(t, 40.0, scoreMarketMomentum(c))
	})

	t.Run("estimate fallback scores less", func(t *testing.T) {
		c := &contracts.StockCandidate{Volume: 3_000_000, Rate: 4}
		// 1축 추정 14 + 2축 추정 6 = 20
		assert.Equal(t, 20.0, scoreMarketMomentum(c))
	})
}

func TestScoreVolatilityPattern(t *testing.T) {
	const volMin, volMax = 0.02, 0.15

	t.Run("nil scores zero", func(t *testing.T) {
		c := &contracts.StockCandidate{}
		assert.Equal(t, 0.0, scoreVolatilityPattern(c, volMin, volMax))
	})

	t.Run("band midpoint scores full", func(t *testing.T) {
		c := &contracts.StockCandidate{Volatility: contracts.Float64Ptr(0.085)}
		assert.InDelta(t, 20.0, scoreVolatilityPattern(c, volMin, volMax), 0.001)
	})

	t.Run("band edges score zero", func(t *testing.T) {
		low := &contracts.StockCandidate{Volatility: contracts.Float64Ptr(volMin)}
		high := &contracts.StockCandidate{Volatility: contracts.Float64Ptr(volMax)}
		assert.Equal(t, 0.0, scoreVolatilityPattern(low, volMin, volMax))
		assert.Equal(t, 0.0, scoreVolatilityPattern(high, volMin, volMax))
	})

	t.Run("outside band scores zero", func(t *testing.T) {
		c := &contracts.StockCandidate{Volatility: contracts.Float64Ptr(0.30)}
		assert.Equal(t, 0.0, scoreVolatilityPattern(c, volMin, volMax))
	})

	t.Run("linear decay toward edges", func(t *testing.T) {
		near := &contracts.StockCandidate{Volatility: contracts.Float64Ptr(0.08)}
		far := &contracts.StockCandidate{Volatility: contracts.Float64Ptr(0.13)}
		assert.Greater(t,
			scoreVolatilityPattern(near, volMin, volMax),
			scoreVolatilityPattern(far, volMin, volMax))
	})
}
