package scanner

import (
	"context"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/config"
)

// fakeProvider is a test double for contracts.MarketDataProvider.
// 설정 안 된 메서드는 "데이터 없음"으로 응답한다.
type fakeProvider struct {
	screenFn    func(ctx context.Context, filter contracts.ScreenFilter) ([]contracts.ScreenedStock, error)
	investorFn  func(ctx context.Context, code string) (*contracts.InvestorData, error)
	bidAskFn    func(ctx context.Context, code string) (*contracts.BidAsk, error)
	trendFn     func(ctx context.Context, code string, days int) ([]contracts.InvestorTrendDay, error)
	ohlcvFn     func(ctx context.Context, code string, period int) ([]contracts.DailyBar, error)
	brokerFn    func(ctx context.Context, brokerCode, code string, days int) ([]contracts.BrokerTrade, error)
	executionFn func(ctx context.Context, code string) (float64, error)
	programFn   func(ctx context.Context, code string) (int64, error)
	indexFn     func(ctx context.Context, indexCode string) (*contracts.IndexQuote, error)
}

func (f *fakeProvider) Screen(ctx context.Context, filter contracts.ScreenFilter) ([]contracts.ScreenedStock, error) {
	if f.screenFn != nil {
		return f.screenFn(ctx, filter)
	}
	return nil, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetInvestorData(ctx context.Context, code string) (*contracts.InvestorData, error) {
	if f.investorFn != nil {
		return f.investorFn(ctx, code)
	}
	return nil, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetBidAsk(ctx context.Context, code string) (*contracts.BidAsk, error) {
	if f.bidAskFn != nil {
		return f.bidAskFn(ctx, code)
	}
	return nil, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetInstitutionalTrend(ctx context.Context, code string, days int) ([]contracts.InvestorTrendDay, error) {
	if f.trendFn != nil {
		return f.trendFn(ctx, code, days)
	}
	return nil, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetDailyOHLCV(ctx context.Context, code string, period int) ([]contracts.DailyBar, error) {
	if f.ohlcvFn != nil {
		return f.ohlcvFn(ctx, code, period)
	}
	return nil, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetBrokerTrading(ctx context.Context, brokerCode, code string, days int) ([]contracts.BrokerTrade, error) {
	if f.brokerFn != nil {
		return f.brokerFn(ctx, brokerCode, code, days)
	}
	return nil, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetExecutionIntensity(ctx context.Context, code string) (float64, error) {
	if f.executionFn != nil {
		return f.executionFn(ctx, code)
	}
	return 0, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetProgramTrading(ctx context.Context, code string) (int64, error) {
	if f.programFn != nil {
		return f.programFn(ctx, code)
	}
	return 0, contracts.ErrDataUnavailable
}

func (f *fakeProvider) GetIndex(ctx context.Context, indexCode string) (*contracts.IndexQuote, error) {
	if f.indexFn != nil {
		return f.indexFn(ctx, indexCode)
	}
	return nil, contracts.ErrDataUnavailable
}

// fakeOutcomes is a test double for contracts.OutcomeRepository.
type fakeOutcomes struct {
	outcomes map[string]contracts.TradeOutcome
	err      error
}

func (f *fakeOutcomes) GetOutcomes(ctx context.Context) (map[string]contracts.TradeOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outcomes, nil
}

func testScanConfig() config.ScanConfig {
	return config.ScanConfig{
		FastInterval:        10 * time.Second,
		DeepInterval:        60 * time.Second,
		AIInterval:          300 * time.Second,
		FastMaxCandidates:   50,
		DeepMaxCandidates:   20,
		MinPrice:            1_000,
		MaxPrice:            500_000,
		MinVolume:           100_000,
		MinRate:             1.0,
		MaxRate:             25.0,
		MinMarketCap:        50_000_000_000,
		MinInstitutionalBuy: 10_000_000,
	}
}
