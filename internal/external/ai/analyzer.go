package ai

import (
	"context"
	"fmt"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/httputil"
	"github.com/wonny/scout/pkg/logger"
)

// Analyzer calls the external LLM analysis service and normalises its answer
// into the fixed AIAnalysis shape. The service prompt/model choice lives on
// the server side; this adapter stays thin.
// ⭐ SSOT: AI 분석 호출은 여기서만
type Analyzer struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.AIConfig
}

// NewAnalyzer creates the analyzer adapter
func NewAnalyzer(cfg config.AIConfig, httpClient *httputil.Client, log *logger.Logger) *Analyzer {
	return &Analyzer{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// analyzeRequest is the candidate snapshot sent for analysis.
// 원시 후보 전체가 아니라 판단에 필요한 지표만 보낸다.
type analyzeRequest struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Price         int64    `json:"price"`
	Volume        int64    `json:"volume"`
	Rate          float64  `json:"rate"`
	DeepScore     float64  `json:"deep_score"`
	InstNetBuy    *int64   `json:"institutional_net_buy,omitempty"`
	ForeignNetBuy *int64   `json:"foreign_net_buy,omitempty"`
	BidAskRatio   *float64 `json:"bid_ask_ratio,omitempty"`
	Volatility    *float64 `json:"volatility,omitempty"`
}

// AnalyzeStock requests an AI judgement for one candidate.
// 잘못된 signal/confidence 는 오류 — 호출자는 AI 없이 진행한다.
func (a *Analyzer) AnalyzeStock(ctx context.Context, c *contracts.StockCandidate) (*contracts.AIAnalysis, error) {
	if c == nil || c.Code == "" {
		return nil, fmt.Errorf("analyze: candidate without code")
	}

	req := analyzeRequest{
		Code:          c.Code,
		Name:          c.Name,
		Price:         c.Price,
		Volume:        c.Volume,
		Rate:          c.Rate,
		DeepScore:     c.DeepScanScore,
		InstNetBuy:    c.InstitutionalNetBuy,
		ForeignNetBuy: c.ForeignNetBuy,
		BidAskRatio:   c.BidAskRatio,
		Volatility:    c.Volatility,
	}

	headers := map[string]string{}
	if a.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + a.cfg.APIKey
	}

	url := fmt.Sprintf("%s/v1/analyze", a.cfg.BaseURL)
	resp, err := a.httpClient.PostJSON(ctx, url, req, headers)
	if err != nil {
		return nil, fmt.Errorf("analyze request failed: %w", err)
	}

	var analysis contracts.AIAnalysis
	if err := httputil.DecodeJSON(resp, &analysis); err != nil {
		return nil, fmt.Errorf("analyze response: %w", err)
	}

	if err := validate(&analysis); err != nil {
		return nil, fmt.Errorf("analyze result for %s: %w", c.Code, err)
	}

	a.logger.WithFields(map[string]interface{}{
		"code":       c.Code,
		"score":      analysis.Score,
		"signal":     analysis.Signal,
		"confidence": analysis.Confidence,
	}).Info("AI analysis completed")

	return &analysis, nil
}

// validate enforces the fixed result shape.
func validate(a *contracts.AIAnalysis) error {
	switch a.Signal {
	case contracts.SignalBuy, contracts.SignalSell, contracts.SignalHold:
	default:
		return fmt.Errorf("invalid signal %q", a.Signal)
	}

	switch a.Confidence {
	case contracts.ConfidenceLow, contracts.ConfidenceMedium, contracts.ConfidenceHigh:
	default:
		return fmt.Errorf("invalid confidence %q", a.Confidence)
	}

	if a.Score < 0 || a.Score > 10 {
		return fmt.Errorf("score %.2f out of range [0,10]", a.Score)
	}

	return nil
}
