package contracts

import "time"

// StockCandidate represents one ticker as it moves through the scan pipeline,
// accumulating fields at each stage.
// ⭐ SSOT: 스캔 단계 간 후보 전달은 이 구조체로만
//
// Deep-scan fields are pointers on purpose: nil means "data unavailable",
// which downstream scoring must distinguish from a measured zero.
type StockCandidate struct {
	// Identity (1단계 진입 시 1회 설정, 이후 불변)
	Code string `json:"code"`
	Name string `json:"name"`

	// Market snapshot
	Price  int64   `json:"price"`  // 현재가 (원)
	Volume int64   `json:"volume"` // 거래량 (주)
	Rate   float64 `json:"rate"`   // 등락률 (%)

	// Fast scan (1단계)
	FastScanScore     float64            `json:"fast_scan_score"` // 0~100
	FastScanTime      time.Time          `json:"fast_scan_time"`
	FastScanBreakdown map[string]float64 `json:"fast_scan_breakdown,omitempty"`

	// Deep scan (2단계) — nil = 데이터 없음
	InstitutionalNetBuy *int64             `json:"institutional_net_buy,omitempty"` // 기관 순매수 (원)
	ForeignNetBuy       *int64             `json:"foreign_net_buy,omitempty"`       // 외국인 순매수 (원)
	BidAskRatio         *float64           `json:"bid_ask_ratio,omitempty"`         // 매수/매도 잔량비 (1.0 = 균형)
	InstitutionalTrend  []InvestorTrendDay `json:"institutional_trend,omitempty"`   // 5일 수급 추이
	AvgVolume           *int64             `json:"avg_volume,omitempty"`            // 20일 평균 거래량
	Volatility          *float64           `json:"volatility,omitempty"`            // 20일 일중 변동성 (소수)
	TopBrokerBuyCount   int                `json:"top_broker_buy_count"`            // 순매수 중인 주요 창구 수 (0~5)
	TopBrokerNetBuy     int64              `json:"top_broker_net_buy"`              // 주요 창구 순매수 합 (주)
	ExecutionIntensity  *float64           `json:"execution_intensity,omitempty"`   // 체결강도 (>100 = 매수 우위)
	ProgramNetBuy       *int64             `json:"program_net_buy,omitempty"`       // 프로그램 순매수 (원)
	Technical           *TechnicalSnapshot `json:"technical,omitempty"`             // 기술적 지표 (2단계에서 산출)
	DeepScanScore       float64            `json:"deep_scan_score"`
	DeepScanTime        time.Time          `json:"deep_scan_time"`

	// AI scan (3단계) — 실제로 AI 분석이 돈 후보에만 채워짐
	AIScore      *float64   `json:"ai_score,omitempty"` // 0~10
	AISignal     Signal     `json:"ai_signal,omitempty"`
	AIConfidence Confidence `json:"ai_confidence,omitempty"`
	AIReasons    []string   `json:"ai_reasons,omitempty"`
	AIRisks      []string   `json:"ai_risks,omitempty"`
}

// InvestorTrendDay is one day of the 5-day institutional/foreign flow series.
// The raw series is kept as-is; scoring extracts signal from it later.
type InvestorTrendDay struct {
	Date          string `json:"date"`            // YYYY-MM-DD
	InstNetBuy    int64  `json:"inst_net_buy"`    // 기관 순매수 (주)
	ForeignNetBuy int64  `json:"foreign_net_buy"` // 외국인 순매수 (주)
}

// TechnicalSnapshot holds indicators computed from the 20-day OHLCV window.
// Present only when the deep scan had enough daily bars.
type TechnicalSnapshot struct {
	RSI          float64 `json:"rsi"`           // RSI(14)
	MACDHist     float64 `json:"macd_hist"`     // MACD 히스토그램
	BollingerPos float64 `json:"bollinger_pos"` // 밴드 내 위치 (0=하단, 0.5=중단, 1=상단)
	MA5          float64 `json:"ma5"`
	MA20         float64 `json:"ma20"`
}

// Signal is the AI analyzer's directional opinion
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Confidence is the AI analyzer's stated confidence
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// TradingValue returns price×volume (거래대금, 원)
func (c *StockCandidate) TradingValue() int64 {
	return c.Price * c.Volume
}

// FinalScore blends the deep scan score with the AI score.
// 70% deep + 30% AI×10 — the AI's 0~10 scale is normalized onto the
// ~100-point deep scale. Without an AI result the deep score stands alone.
func (c *StockCandidate) FinalScore() float64 {
	if c.AIScore == nil {
		return c.DeepScanScore
	}
	return c.DeepScanScore*0.7 + (*c.AIScore*10)*0.3
}

// ResetDeepFields clears every deep-scan field back to its absent default.
// 후보 하나의 보강 중 예외가 나면 그 후보만 초기화하고 계속 진행한다.
func (c *StockCandidate) ResetDeepFields() {
	c.InstitutionalNetBuy = nil
	c.ForeignNetBuy = nil
	c.BidAskRatio = nil
	c.InstitutionalTrend = nil
	c.AvgVolume = nil
	c.Volatility = nil
	c.TopBrokerBuyCount = 0
	c.TopBrokerNetBuy = 0
	c.ExecutionIntensity = nil
	c.ProgramNetBuy = nil
	c.Technical = nil
	c.DeepScanScore = 0
	c.DeepScanTime = time.Time{}
}

// Clone returns a shallow copy with its own trend slice.
func (c *StockCandidate) Clone() *StockCandidate {
	dup := *c
	if c.InstitutionalTrend != nil {
		dup.InstitutionalTrend = make([]InvestorTrendDay, len(c.InstitutionalTrend))
		copy(dup.InstitutionalTrend, c.InstitutionalTrend)
	}
	return &dup
}

// Int64Ptr is a convenience constructor for optional int64 fields.
func Int64Ptr(v int64) *int64 { return &v }

// Float64Ptr is a convenience constructor for optional float64 fields.
func Float64Ptr(v float64) *float64 { return &v }
