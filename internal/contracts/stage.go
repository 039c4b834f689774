package contracts

// Scan Stage 정의 (SSOT)
// 모든 로그, 스냅샷에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   FAST → DEEP → AI
//   후보 수는 줄고, 종목당 비용은 늘어난다.

// Stage represents a scan pipeline stage
type Stage string

const (
	// StageFast 1단계: 저비용 고재현율 필터
	// 책임: 조건검색 결과를 100점 휴리스틱으로 압축 (기본 상위 50)
	// 위치: internal/scanner/fast.go
	StageFast Stage = "FAST_SCAN"

	// StageDeep 2단계: 수급/호가 보강 및 누적 점수
	// 책임: 종목당 5~7개 외부 데이터 보강, 누적 점수, 수급 하드 필터
	// 위치: internal/scanner/deep.go
	StageDeep Stage = "DEEP_SCAN"

	// StageAI 3단계: 매수 판단 시점의 종목 단위 AI 분석
	// 책임: StockAnalyzer 포트 호출, 배치 단계가 아님
	// 위치: internal/trader/
	StageAI Stage = "AI_SCAN"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageFast:
		return "1차 고속 스캔"
	case StageDeep:
		return "2차 정밀 스캔"
	case StageAI:
		return "3차 AI 분석"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all scan stages in order
func AllStages() []Stage {
	return []Stage{StageFast, StageDeep, StageAI}
}

// MarketCondition classifies the broader market for the adaptive filter.
type MarketCondition string

const (
	MarketBullish  MarketCondition = "bullish"
	MarketBearish  MarketCondition = "bearish"
	MarketSideways MarketCondition = "sideways"
	MarketNormal   MarketCondition = "normal"
)

// StageResult summarizes one stage execution for logs and the status API.
type StageResult struct {
	Stage       Stage  `json:"stage"`
	InputCount  int    `json:"input_count"`
	OutputCount int    `json:"output_count"`
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}
