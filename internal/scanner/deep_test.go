package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/logger"
)

func newTestDeepScanner(provider contracts.MarketDataProvider) *DeepScanner {
	return NewDeepScanner(provider, cache.New(), testScanConfig(), logger.NewNop())
}

func fastCandidate(code string, score float64) *contracts.StockCandidate {
	return &contracts.StockCandidate{
		Code:          code,
		Name:          code,
		Price:         10_000,
		Volume:        1_000_000,
		Rate:          3.0,
		FastScanScore: score,
	}
}

func TestDeepScan_CumulativeScoreBonuses(t *testing.T) {
	provider := &fakeProvider{
		investorFn: func(ctx context.Context, code string) (*contracts.InvestorData, error) {
			return &contracts.InvestorData{
				InstitutionalNetBuy: 60_000_000,
				ForeignNetBuy:       12_000_000,
			}, nil
		},
		bidAskFn: func(ctx context.Context, code string) (*contracts.BidAsk, error) {
			return &contracts.BidAsk{TotalBidQty: 160, TotalAskQty: 100}, nil
		},
	}

	s := newTestDeepScanner(provider)
	out := s.Scan(context.Background(), []*contracts.StockCandidate{fastCandidate("005930", 100)})

	require.Len(t, out, 1)
	// 1차 100 + 기관 60M→30 + 외국인 12M→15 + 잔량비 1.6→20
	assert.Equal(t, 165.0, out[0].DeepScanScore)
	assert.False(t, out[0].DeepScanTime.IsZero())
}

func TestDeepScan_DoesNotMutateInput(t *testing.T) {
	provider := &fakeProvider{
		investorFn: func(ctx context.Context, code string) (*contracts.InvestorData, error) {
			return &contracts.InvestorData{InstitutionalNetBuy: 60_000_000}, nil
		},
	}

	input := fastCandidate("005930", 100)
	s := newTestDeepScanner(provider)
	out := s.Scan(context.Background(), []*contracts.StockCandidate{input})

	require.Len(t, out, 1)
	assert.Nil(t, input.InstitutionalNetBuy, "input candidate must stay untouched")
	assert.NotNil(t, out[0].InstitutionalNetBuy)
}

func TestDeepScan_BidAskZeroAskSideMeasuredAsZero(t *testing.T) {
	provider := &fakeProvider{
		// 전량 매수 잔량 — 0 나눗셈 가드 경로
		bidAskFn: func(ctx context.Context, code string) (*contracts.BidAsk, error) {
			return &contracts.BidAsk{TotalBidQty: 500, TotalAskQty: 0}, nil
		},
	}

	s := newTestDeepScanner(provider)
	out := s.Scan(context.Background(), []*contracts.StockCandidate{fastCandidate("005930", 100)})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].BidAskRatio, "성공한 호출의 0은 측정값이다")
	assert.Equal(t, 0.0, *out[0].BidAskRatio)
}

func TestDeepScan_HardFilterFailOpen(t *testing.T) {
	// 배치 전체에 기관/외국인 데이터 없음 → 필터 생략, 전원 통과
	provider := &fakeProvider{}

	s := newTestDeepScanner(provider)
	input := []*contracts.StockCandidate{
		fastCandidate("A00001", 90),
		fastCandidate("A00002", 80),
		fastCandidate("A00003", 70),
	}
	out := s.Scan(context.Background(), input)

	assert.Len(t, out, 3)
}

func TestDeepScan_HardFilterAppliesWhenDataPresent(t *testing.T) {
	// 한 종목이라도 유의미한 수급 데이터가 있으면 필터 적용
	provider := &fakeProvider{
		investorFn: func(ctx context.Context, code string) (*contracts.InvestorData, error) {
			switch code {
			case "STRONG":
				return &contracts.InvestorData{InstitutionalNetBuy: 20_000_000}, nil
			case "FOREIGN":
				// 기관 미달이지만 외국인이 절반 기준(5M) 이상
				return &contracts.InvestorData{ForeignNetBuy: 6_000_000}, nil
			case "WEAK":
				return &contracts.InvestorData{InstitutionalNetBuy: 1_000_000}, nil
			}
			return nil, contracts.ErrDataUnavailable
		},
	}

	s := newTestDeepScanner(provider)
	input := []*contracts.StockCandidate{
		fastCandidate("STRONG", 90),
		fastCandidate("FOREIGN", 80),
		fastCandidate("WEAK", 70),
		fastCandidate("NODATA", 60),
	}
	out := s.Scan(context.Background(), input)

	codes := make([]string, 0, len(out))
	for _, c := range out {
		codes = append(codes, c.Code)
	}
	assert.ElementsMatch(t, []string{"STRONG", "FOREIGN"}, codes)
}

func TestDeepScan_TruncatesToCap(t *testing.T) {
	provider := &fakeProvider{
		investorFn: func(ctx context.Context, code string) (*contracts.InvestorData, error) {
			return &contracts.InvestorData{InstitutionalNetBuy: 20_000_000}, nil
		},
	}

	cfg := testScanConfig()
	cfg.DeepMaxCandidates = 2
	s := NewDeepScanner(provider, cache.New(), cfg, logger.NewNop())

	input := []*contracts.StockCandidate{
		fastCandidate("A00001", 70),
		fastCandidate("A00002", 90),
		fastCandidate("A00003", 80),
	}
	out := s.Scan(context.Background(), input)

	require.Len(t, out, 2)
	// 누적 점수 내림차순
	assert.Equal(t, "A00002", out[0].Code)
	assert.Equal(t, "A00003", out[1].Code)
}

func TestDeepScan_CachesSlowSignals(t *testing.T) {
	execCalls := 0
	provider := &fakeProvider{
		investorFn: func(ctx context.Context, code string) (*contracts.InvestorData, error) {
			return &contracts.InvestorData{InstitutionalNetBuy: 20_000_000}, nil
		},
		executionFn: func(ctx context.Context, code string) (float64, error) {
			execCalls++
			return 120, nil
		},
	}

	s := newTestDeepScanner(provider)
	input := []*contracts.StockCandidate{fastCandidate("005930", 100)}

	s.Scan(context.Background(), input)
	s.Scan(context.Background(), input)

	// 체결강도는 TTL 캐시 적중 — 두 번째 스캔에서 재호출 없음
	assert.Equal(t, 1, execCalls)
}

func TestDeepScan_EmptyInput(t *testing.T) {
	s := newTestDeepScanner(&fakeProvider{})
	assert.Nil(t, s.Scan(context.Background(), nil))
}

func TestDeepScan_ComputesIndicatorsFromBars(t *testing.T) {
	bars := make([]contracts.DailyBar, 40)
	for i := range bars {
		// 최신일 우선 — 과거로 갈수록 낮은 가격 (상승 추세)
		price := int64(12_000 - i*50)
		bars[i] = contracts.DailyBar{
			Open:   price - 100,
			High:   price + 100,
			Low:    price - 200,
			Close:  price,
			Volume: 1_000_000,
		}
	}

	provider := &fakeProvider{
		investorFn: func(ctx context.Context, code string) (*contracts.InvestorData, error) {
			return &contracts.InvestorData{InstitutionalNetBuy: 20_000_000}, nil
		},
		ohlcvFn: func(ctx context.Context, code string, period int) ([]contracts.DailyBar, error) {
			return bars, nil
		},
	}

	s := newTestDeepScanner(provider)
	out := s.Scan(context.Background(), []*contracts.StockCandidate{fastCandidate("005930", 100)})

	require.Len(t, out, 1)
	c := out[0]
	require.NotNil(t, c.AvgVolume)
	assert.Equal(t, int64(1_000_000), *c.AvgVolume)
	require.NotNil(t, c.Volatility)
	require.NotNil(t, c.Technical)
	assert.Greater(t, c.Technical.MA5, c.Technical.MA20, "상승 추세면 단기 이평이 위")
}
