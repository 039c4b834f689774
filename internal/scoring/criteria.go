package scoring

import (
	"math"

	"github.com/wonny/scout/internal/contracts"
)

// The ten criterion scorers. Each returns base points before profile
// weighting. Criteria that can use a directly-measured external signal
// prefer it; several fall back to a cheaper proxy estimate when the
// enrichment call failed upstream, so one dead feed degrades a bucket
// instead of zeroing it. Execution intensity and program trading are the
// exceptions: real measured values only.

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// scoreVolumeSurge: 20일 평균 대비 거래량 배율 사다리.
// 평균이 없으면 절대 거래량 사다리로 폴백 (최대 48 — 실데이터 60보다 낮음).
func scoreVolumeSurge(c *contracts.StockCandidate) float64 {
	if c.AvgVolume != nil && *c.AvgVolume > 0 {
		ratio := float64(c.Volume) / float64(*c.AvgVolume)
		switch {
		case ratio >= 5:
			return 60
		case ratio >= 3:
			return 45
		case ratio >= 2:
			return 30
		case ratio >= 1:
			return 15
		default:
			return 0
		}
	}

	// 폴백: 절대 거래량
	switch {
	case c.Volume >= 5_000_000:
		return 48
	case c.Volume >= 2_000_000:
		return 36
	case c.Volume >= 1_000_000:
		return 24
	case c.Volume >= 500_000:
		return 12
	default:
		return 0
	}
}

// scorePriceMomentum: 등락률 사다리.
func scorePriceMomentum(c *contracts.StockCandidate) float64 {
	switch {
	case c.Rate >= 10:
		return 60
	case c.Rate >= 7:
		return 51
	case c.Rate >= 5:
		return 42
	case c.Rate >= 3:
		return 33
	case c.Rate >= 2:
		return 24
	case c.Rate >= 1:
		return 15
	default:
		return 0
	}
}

// scoreInstitutionalBuying: 기관(최대 40) + 외국인(최대 10) + 5일 추이 보너스(10).
// 합산 후 60으로 캡.
func scoreInstitutionalBuying(c *contracts.StockCandidate) float64 {
	score := 0.0

	if c.InstitutionalNetBuy != nil {
		v := *c.InstitutionalNetBuy
		switch {
		case v >= 50_000_000:
			score += 40
		case v >= 20_000_000:
			score += 30
		case v >= 10_000_000:
			score += 20
		case v >= 5_000_000:
			score += 10
		}
	}

	if c.ForeignNetBuy != nil {
		v := *c.ForeignNetBuy
		switch {
		case v >= 10_000_000:
			score += 10
		case v >= 5_000_000:
			score += 7
		case v >= 1_000_000:
			score += 4
		}
	}

	// 추이 보너스: 가장 최근 일자에 기관/외국인 모두 순매도 아님
	if len(c.InstitutionalTrend) > 0 {
		latest := c.InstitutionalTrend[0]
		if latest.InstNetBuy >= 0 && latest.ForeignNetBuy >= 0 {
			score += 10
		}
	}

	if score > maxInstitutionalBuying {
		score = maxInstitutionalBuying
	}
	return score
}

// scoreBidStrength: 매수/매도 잔량비 사다리. 데이터 없으면 0.
func scoreBidStrength(c *contracts.StockCandidate) float64 {
	if c.BidAskRatio == nil {
		return 0
	}

	ratio := *c.BidAskRatio
	switch {
	case ratio >= 1.5:
		return 40
	case ratio >= 1.2:
		return 30
	case ratio >= 0.8:
		return 20
	case ratio >= 0.5:
		return 10
	default:
		return 0
	}
}

// scoreExecutionIntensity: 실측값만 사용 (추정 폴백 없음).
// 기준선 50 상대 사다리.
func scoreExecutionIntensity(c *contracts.StockCandidate) float64 {
	if c.ExecutionIntensity == nil {
		return 0
	}

	v := *c.ExecutionIntensity
	switch {
	case v >= 150:
		return 40
	case v >= 100:
		return 30
	case v >= 70:
		return 20
	case v >= 50:
		return 10
	default:
		return 0
	}
}

// brokerActivityLadder: 순매수 중인 주요 창구 수 (0~5) → 점수.
var brokerActivityLadder = [6]float64{0, 7, 13, 27, 33, 40}

// scoreBrokerActivity: 표본 5개 창구 중 순매수 창구 수.
func scoreBrokerActivity(c *contracts.StockCandidate) float64 {
	count := c.TopBrokerBuyCount
	if count < 0 {
		return 0
	}
	if count > 5 {
		count = 5
	}
	return brokerActivityLadder[count]
}

// scoreProgramTrading: 실측 양수값만 사용.
func scoreProgramTrading(c *contracts.StockCandidate) float64 {
	if c.ProgramNetBuy == nil {
		return 0
	}

	v := *c.ProgramNetBuy
	if v <= 0 {
		return 0
	}

	switch {
	case v >= 5_000_000:
		return 40
	case v >= 3_000_000:
		return 30
	case v >= 1_000_000:
		return 20
	case v >= 100_000:
		return 10
	default:
		return 0
	}
}

// scoreTechnicalIndicators: RSI/MACD/볼린저/이평 4요소 합성.
// 실데이터 브랜치는 요소당 10점(최대 40), 추정 브랜치는 가격/거래량
// 프록시로 요소당 5~7점(최대 24)만 준다.
func scoreTechnicalIndicators(c *contracts.StockCandidate) float64 {
	if c.Technical != nil {
		t := c.Technical
		score := 0.0

		// RSI 중립 밴드 — 과매수/과매도 아님
		if t.RSI >= 40 && t.RSI <= 65 {
			score += 10
		} else if t.RSI > 30 && t.RSI < 75 {
			score += 5
		}

		// MACD 상승 전환
		if t.MACDHist > 0 {
			score += 10
		}

		// 밴드 중단 위 — 상단 여유 있음
		if t.BollingerPos >= 0.4 && t.BollingerPos <= 0.8 {
			score += 10
		}

		// 단기 이평 > 장기 이평
		if t.MA5 > t.MA20 {
			score += 10
		}

		return score
	}

	// 추정 브랜치
	score := 0.0
	if c.Rate >= 0 && c.Rate <= 8 {
		score += 7 // 과매수 아닐 가능성
	}
	if c.Rate > 0 && c.Volume >= 500_000 {
		score += 7 // 거래 동반 상승
	}
	if c.Rate >= -2 && c.Rate <= 5 {
		score += 5 // 밴드 중단권 추정
	}
	if c.Rate >= 2 {
		score += 5 // 단기 우위 추정
	}
	return score
}

// scoreMarketMomentum: 20점짜리 두 축 —
// (1) 거래량 배율×등락률, (2) 등락률×기관 순매수.
// 각각 실데이터 브랜치와 추정 폴백을 가진다.
func scoreMarketMomentum(c *contracts.StockCandidate) float64 {
	score := 0.0

	// 1축: 거래량 배율 × 등락률
	if c.AvgVolume != nil && *c.AvgVolume > 0 {
		ratio := float64(c.Volume) / float64(*c.AvgVolume)
		switch {
		case ratio >= 3 && c.Rate >= 3:
			score += 20
		case ratio >= 2 && c.Rate >= 2:
			score += 14
		case ratio >= 1.5 && c.Rate >= 1:
			score += 8
		}
	} else {
		// 추정: 절대 거래량 프록시
		switch {
		case c.Volume >= 2_000_000 && c.Rate >= 3:
			score += 14
		case c.Volume >= 1_000_000 && c.Rate >= 2:
			score += 8
		case c.Volume >= 500_000 && c.Rate >= 1:
			score += 4
		}
	}

	// 2축: 등락률 × 기관 순매수
	if c.InstitutionalNetBuy != nil {
		inst := *c.InstitutionalNetBuy
		switch {
		case c.Rate >= 3 && inst >= 10_000_000:
			score += 20
		case c.Rate >= 2 && inst >= 5_000_000:
			score += 14
		case c.Rate >= 1 && inst > 0:
			score += 8
		}
	} else {
		// 추정: 등락률만으로
		switch {
		case c.Rate >= 5:
			score += 10
		case c.Rate >= 3:
			score += 6
		}
	}

	return score
}

// scoreVolatilityPattern: 실측 20일 변동성이 있을 때만 채점.
// 밴드 [min,max] 중앙에서 만점, 경계로 갈수록 선형 감쇠, 경계/밖은 0.
func scoreVolatilityPattern(c *contracts.StockCandidate, volMin, volMax float64) float64 {
	if c.Volatility == nil {
		return 0
	}

	v := *c.Volatility
	if v <= volMin || v >= volMax {
		return 0
	}

	mid := (volMin + volMax) / 2
	half := (volMax - volMin) / 2
	return maxVolatilityPattern * (1 - math.Abs(v-mid)/half)
}
