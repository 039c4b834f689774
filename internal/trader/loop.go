package trader

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/scanner"
	"github.com/wonny/scout/internal/scoring"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/logger"
)

// AI 호출 간 최소 간격 — 분석 서비스 과금/리밋 보호
const aiCallPacing = 1 * time.Second

// OpenPositionChecker reports whether a ticker already has an open position.
// 보유 종목 재매수 방지용.
type OpenPositionChecker interface {
	HasOpenPosition(ctx context.Context, code string) (bool, error)
}

// Loop is the outer trading cycle: run the scan pipeline, score the
// watchlist, lazily consult the AI for promising candidates, and hand
// qualifying orders to the executor.
// ⭐ SSOT: 매매 판단 루프는 여기서만
type Loop struct {
	pipeline  *scanner.Pipeline
	scorer    *scoring.System
	analyzer  contracts.StockAnalyzer
	executor  contracts.OrderExecutor
	positions OpenPositionChecker
	cfg       config.TradingConfig
	aiEvery   time.Duration
	logger    *logger.Logger

	// 새 감시 목록 발행 시 호출 (웹소켓 브로드캐스트 등). nil 허용.
	onWatchlist func([]*ScoredCandidate)

	mu        sync.RWMutex
	lastAIRun time.Time
	watchlist []*ScoredCandidate
}

// OnWatchlist registers a callback fired after each scored watchlist swap.
func (l *Loop) OnWatchlist(fn func([]*ScoredCandidate)) {
	l.onWatchlist = fn
}

// ScoredCandidate pairs a deep scan survivor with its weighted score for
// the API layer.
type ScoredCandidate struct {
	Candidate *contracts.StockCandidate `json:"candidate"`
	Score     *scoring.Result           `json:"score"`
}

// NewLoop creates the trading loop. analyzer and positions may be nil
// (AI 없이 정량 게이트만 / 포지션 중복 체크 생략).
func NewLoop(
	pipeline *scanner.Pipeline,
	scorer *scoring.System,
	analyzer contracts.StockAnalyzer,
	executor contracts.OrderExecutor,
	positions OpenPositionChecker,
	cfg config.TradingConfig,
	aiEvery time.Duration,
	log *logger.Logger,
) *Loop {
	return &Loop{
		pipeline:  pipeline,
		scorer:    scorer,
		analyzer:  analyzer,
		executor:  executor,
		positions: positions,
		cfg:       cfg,
		aiEvery:   aiEvery,
		logger:    log,
	}
}

// Run blocks until the context ends, ticking every TickInterval.
// 첫 사이클은 즉시 돈다.
func (l *Loop) Run(ctx context.Context) {
	l.logger.WithFields(map[string]interface{}{
		"tick_interval": l.cfg.TickInterval.String(),
		"paper":         l.cfg.PaperTrading,
	}).Info("Trading loop started")

	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	l.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Trading loop stopped")
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// tick runs one full cycle. 사이클 내 오류는 로그만 남기고 다음 틱을 기다린다.
func (l *Loop) tick(ctx context.Context) {
	l.pipeline.RunFullPipeline(ctx)

	watchlist := l.pipeline.DeepCandidates()
	if len(watchlist) == 0 {
		return
	}

	results := l.scorer.ScoreBatch(ctx, watchlist, scoring.ScanTypeDefault)

	scored := make([]*ScoredCandidate, 0, len(watchlist))
	for i, c := range watchlist {
		scored = append(scored, &ScoredCandidate{Candidate: c, Score: results[i]})
	}

	l.mu.Lock()
	l.watchlist = scored
	l.mu.Unlock()

	if l.onWatchlist != nil {
		l.onWatchlist(scored)
	}

	l.evaluate(ctx, scored)
}

// evaluate walks the scored watchlist and executes qualifying buys.
func (l *Loop) evaluate(ctx context.Context, scored []*ScoredCandidate) {
	useAI := l.shouldRunAI()
	aiRan := false

	for _, sc := range scored {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c, result := sc.Candidate, sc.Score

		if open, err := l.hasOpenPosition(ctx, c.Code); err != nil {
			l.logger.WithError(err).WithField("code", c.Code).Warn("Position check failed, skipping candidate")
			continue
		} else if open {
			continue
		}

		buy := false
		switch {
		case useAI && l.analyzer != nil:
			// 정량 점수가 AI 게이트 하한에도 못 미치면 AI 호출 자체를 생략
			if result.TotalScore < float64(l.cfg.AIBuyThreshold) {
				continue
			}

			if aiRan {
				select {
				case <-ctx.Done():
					return
				case <-time.After(aiCallPacing):
				}
			}

			analysis, err := l.analyzer.AnalyzeStock(ctx, c)
			aiRan = true
			if err != nil {
				// AI 실패 시 정량 게이트 단독으로 강등
				l.logger.WithError(err).WithField("code", c.Code).Warn("AI analysis failed, falling back to score gate")
				buy = scoring.ShouldBuy(result, l.cfg.BuyThreshold)
				break
			}

			c.AIScore = &analysis.Score
			c.AISignal = analysis.Signal
			c.AIConfidence = analysis.Confidence
			c.AIReasons = analysis.Reasons
			c.AIRisks = analysis.Risks

			buy = scoring.EvaluateBuy(analysis.Signal, result, l.cfg.AIBuyThreshold, l.cfg.AIHoldThreshold)

		default:
			buy = scoring.ShouldBuy(result, l.cfg.BuyThreshold)
		}

		if !buy {
			continue
		}

		l.placeBuy(ctx, c, result)
	}

	if aiRan {
		l.mu.Lock()
		l.lastAIRun = time.Now()
		l.mu.Unlock()
	}
}

// placeBuy sizes and submits one order.
func (l *Loop) placeBuy(ctx context.Context, c *contracts.StockCandidate, result *scoring.Result) {
	if c.Price <= 0 {
		return
	}

	quantity := l.cfg.OrderBudget / c.Price
	if quantity <= 0 {
		l.logger.WithFields(map[string]interface{}{
			"code":  c.Code,
			"price": c.Price,
		}).Warn("Order budget below one share, skipping buy")
		return
	}

	order := contracts.Order{
		Code:     c.Code,
		Name:     c.Name,
		Side:     contracts.SignalBuy,
		Quantity: quantity,
		Price:    c.Price,
		Score:    result.TotalScore,
	}

	if err := l.executor.Execute(ctx, order); err != nil {
		l.logger.WithError(err).WithField("code", c.Code).Error("Order execution failed")
		return
	}

	l.logger.WithFields(map[string]interface{}{
		"code":     c.Code,
		"name":     c.Name,
		"quantity": quantity,
		"price":    c.Price,
		"score":    result.TotalScore,
		"final":    c.FinalScore(),
	}).Info("Buy executed")
}

// shouldRunAI gates the AI stage on its own interval.
func (l *Loop) shouldRunAI() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastAIRun.IsZero() || time.Since(l.lastAIRun) >= l.aiEvery
}

func (l *Loop) hasOpenPosition(ctx context.Context, code string) (bool, error) {
	if l.positions == nil {
		return false, nil
	}
	return l.positions.HasOpenPosition(ctx, code)
}

// Watchlist returns the latest scored deep scan output for the API layer.
func (l *Loop) Watchlist() []*ScoredCandidate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.watchlist
}
