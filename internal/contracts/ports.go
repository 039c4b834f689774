package contracts

import (
	"context"
	"errors"
)

// ErrDataUnavailable marks the expected-absence path: an external feed had
// nothing for this ticker. Callers degrade the field to nil and continue;
// it must never abort a scan stage.
var ErrDataUnavailable = errors.New("market data unavailable")

// ScreenFilter is the parameter set handed to the external screener.
// 검증은 스크리너(상류) 책임 — 이 단계에서는 값 검증을 하지 않는다.
type ScreenFilter struct {
	MinPrice     int64
	MaxPrice     int64
	MinVolume    int64
	MinRate      float64
	MaxRate      float64
	MinMarketCap int64
}

// ScreenedStock is one row of the external screener's result.
type ScreenedStock struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Price  int64   `json:"price"`
	Volume int64   `json:"volume"`
	Rate   float64 `json:"rate"`
}

// InvestorData is the daily institutional/foreign net-buy snapshot (원).
type InvestorData struct {
	InstitutionalNetBuy int64 `json:"institutional_net_buy"`
	ForeignNetBuy       int64 `json:"foreign_net_buy"`
}

// BidAsk is the aggregate order book snapshot.
type BidAsk struct {
	TotalBidQty int64 `json:"total_bid_qty"`
	TotalAskQty int64 `json:"total_ask_qty"`
}

// DailyBar is one day of OHLCV.
type DailyBar struct {
	Open   int64 `json:"open"`
	High   int64 `json:"high"`
	Low    int64 `json:"low"`
	Close  int64 `json:"close"`
	Volume int64 `json:"volume"`
}

// BrokerTrade is one day of a single broker's net activity on a ticker.
type BrokerTrade struct {
	NetQty int64 `json:"net_qty"` // 순매수 수량 (주)
}

// IndexQuote is a market index snapshot used for market-condition classification.
type IndexQuote struct {
	ChangeRate float64 `json:"change_rate"` // 등락률 (%)
}

// MarketDataProvider is the port to the brokerage/market data service.
// Every method may fail; the scan stages catch per call. A method that has
// no data for the ticker returns ErrDataUnavailable (wrapped or bare).
// ⭐ SSOT: 시세/수급 데이터 조회 인터페이스
type MarketDataProvider interface {
	// Screen returns the pre-filtered, trading-value-sorted candidate universe.
	Screen(ctx context.Context, filter ScreenFilter) ([]ScreenedStock, error)

	// GetInvestorData returns today's institutional/foreign net buy.
	GetInvestorData(ctx context.Context, code string) (*InvestorData, error)

	// GetBidAsk returns the aggregate order book quantities.
	GetBidAsk(ctx context.Context, code string) (*BidAsk, error)

	// GetInstitutionalTrend returns the last `days` of investor flow, most recent first.
	GetInstitutionalTrend(ctx context.Context, code string, days int) ([]InvestorTrendDay, error)

	// GetDailyOHLCV returns the last `period` daily bars, most recent first.
	GetDailyOHLCV(ctx context.Context, code string, period int) ([]DailyBar, error)

	// GetBrokerTrading returns a broker's recent net activity on a ticker.
	GetBrokerTrading(ctx context.Context, brokerCode, code string, days int) ([]BrokerTrade, error)

	// GetExecutionIntensity returns the execution intensity ratio (100 = 중립).
	GetExecutionIntensity(ctx context.Context, code string) (float64, error)

	// GetProgramTrading returns today's program-trading net buy (원).
	GetProgramTrading(ctx context.Context, code string) (int64, error)

	// GetIndex returns an index snapshot ("0001" KOSPI, "1001" KOSDAQ).
	GetIndex(ctx context.Context, indexCode string) (*IndexQuote, error)
}

// AIAnalysis is the fixed result shape of the stock analyzer port.
type AIAnalysis struct {
	Score      float64    `json:"score"` // 0~10
	Signal     Signal     `json:"signal"`
	Confidence Confidence `json:"confidence"`
	Reasons    []string   `json:"reasons"`
	Risks      []string   `json:"risks"`
}

// StockAnalyzer is the port to the LLM-backed analyzer.
// 매수 판단 시점에 종목 단위로 지연 호출된다 (배치 단계 아님).
type StockAnalyzer interface {
	AnalyzeStock(ctx context.Context, candidate *StockCandidate) (*AIAnalysis, error)
}

// Order is a buy/sell instruction handed to the executor port.
type Order struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Side     Signal  `json:"side"` // buy | sell
	Quantity int64   `json:"quantity"`
	Price    int64   `json:"price"`
	Score    float64 `json:"score"` // 판단 근거 점수 (감사용)
}

// OrderExecutor is the port to order execution (실매매 또는 모의매매 원장).
type OrderExecutor interface {
	Execute(ctx context.Context, order Order) error
}

// TradeOutcome is the per-ticker win/loss history used by the learned
// preference adjustment.
type TradeOutcome struct {
	Code   string `json:"code"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// OutcomeRepository supplies historical paper-trading outcomes.
// 파이프라인 생성 시 1회 로드 — 장중 갱신하지 않는다.
type OutcomeRepository interface {
	GetOutcomes(ctx context.Context) (map[string]TradeOutcome, error)
}
