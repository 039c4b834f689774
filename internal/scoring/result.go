package scoring

import "time"

// Result is the output of one scoring pass over a single stock.
// ⭐ SSOT: 채점 결과 전달은 이 구조체로만
//
// Immutable after construction; cached under a content-derived key so the
// pipeline and the trading loop scoring the same snapshot within one cycle
// share the computation.
type Result struct {
	Code       string    `json:"code"`
	ScanType   ScanType  `json:"scan_type"`
	TotalScore float64   `json:"total_score"`
	MaxScore   float64   `json:"max_score"`  // 기본 프로파일에서 440
	Percentage float64   `json:"percentage"` // total/max×100
	Scores     Breakdown `json:"scores"`
	Grade      string    `json:"grade"`
	Timestamp  time.Time `json:"timestamp"`
}

// Breakdown holds the ten weighted sub-scores.
// TotalScore 는 항상 이 10개 값의 정확한 합이다.
type Breakdown struct {
	VolumeSurge         float64 `json:"volume_surge"`         // 기본 최대 60
	PriceMomentum       float64 `json:"price_momentum"`       // 기본 최대 60
	InstitutionalBuying float64 `json:"institutional_buying"` // 기본 최대 60
	BidStrength         float64 `json:"bid_strength"`         // 기본 최대 40
	ExecutionIntensity  float64 `json:"execution_intensity"`  // 기본 최대 40
	BrokerActivity      float64 `json:"broker_activity"`      // 기본 최대 40
	ProgramTrading      float64 `json:"program_trading"`      // 기본 최대 40
	TechnicalIndicators float64 `json:"technical_indicators"` // 기본 최대 40
	MarketMomentum      float64 `json:"market_momentum"`      // 기본 최대 40
	VolatilityPattern   float64 `json:"volatility_pattern"`   // 기본 최대 20
}

// Sum returns the exact total of the ten sub-scores.
func (b Breakdown) Sum() float64 {
	return b.VolumeSurge +
		b.PriceMomentum +
		b.InstitutionalBuying +
		b.BidStrength +
		b.ExecutionIntensity +
		b.BrokerActivity +
		b.ProgramTrading +
		b.TechnicalIndicators +
		b.MarketMomentum +
		b.VolatilityPattern
}

// gradeFor maps a percentage of max to a letter grade. 참고용 — 게이트 아님.
func gradeFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "S"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}
