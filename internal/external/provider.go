package external

import (
	"context"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/external/naver"
	"github.com/wonny/scout/pkg/logger"
)

// Provider fronts the brokerage feed with a Naver Finance fallback for the
// signals Naver also publishes (수급 추이, 지수). Everything else passes
// straight through to the primary.
// ⭐ SSOT: 피드 폴백 정책은 여기서만
type Provider struct {
	contracts.MarketDataProvider

	fallback *naver.Client
	logger   *logger.Logger
}

// NewProvider wraps the primary feed. fallback may be nil (폴백 비활성).
func NewProvider(primary contracts.MarketDataProvider, fallback *naver.Client, log *logger.Logger) *Provider {
	return &Provider{
		MarketDataProvider: primary,
		fallback:           fallback,
		logger:             log,
	}
}

// GetInstitutionalTrend tries the brokerage first, then Naver.
func (p *Provider) GetInstitutionalTrend(ctx context.Context, code string, days int) ([]contracts.InvestorTrendDay, error) {
	trend, err := p.MarketDataProvider.GetInstitutionalTrend(ctx, code, days)
	if err == nil {
		return trend, nil
	}

	if p.fallback == nil {
		return nil, err
	}

	p.logger.WithError(err).WithField("code", code).Debug("Primary trend feed failed, trying Naver")
	return p.fallback.FetchInvestorTrend(ctx, code, days)
}

// GetIndex tries the brokerage first, then Naver.
func (p *Provider) GetIndex(ctx context.Context, indexCode string) (*contracts.IndexQuote, error) {
	quote, err := p.MarketDataProvider.GetIndex(ctx, indexCode)
	if err == nil {
		return quote, nil
	}

	if p.fallback == nil {
		return nil, err
	}

	p.logger.WithError(err).WithField("index", indexCode).Debug("Primary index feed failed, trying Naver")
	return p.fallback.FetchIndex(ctx, indexCode)
}
