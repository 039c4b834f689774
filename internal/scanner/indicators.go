package scanner

import (
	"math"

	"github.com/wonny/scout/internal/contracts"
)

// Indicator helpers for the deep scan's OHLCV window.
// 포트는 최신일 우선으로 반환하므로 계산 전 시간순으로 뒤집는다.

// computeAvgVolume returns the mean volume over the most recent `window` bars.
func computeAvgVolume(bars []contracts.DailyBar, window int) *int64 {
	if len(bars) == 0 {
		return nil
	}
	if window > len(bars) {
		window = len(bars)
	}

	var sum int64
	for _, b := range bars[:window] {
		sum += b.Volume
	}
	avg := sum / int64(window)
	return &avg
}

// computeVolatility returns the stdev of the intraday return
// (close-open)/open over the most recent `window` bars.
// 데이터 2개 미만이면 nil (측정 불가 ≠ 0).
func computeVolatility(bars []contracts.DailyBar, window int) *float64 {
	if window > len(bars) {
		window = len(bars)
	}
	if window < 2 {
		return nil
	}

	returns := make([]float64, 0, window)
	for _, b := range bars[:window] {
		if b.Open == 0 {
			continue
		}
		returns = append(returns, float64(b.Close-b.Open)/float64(b.Open))
	}
	if len(returns) < 2 {
		return nil
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	vol := math.Sqrt(variance)
	return &vol
}

// computeTechnical builds the technical snapshot from daily bars.
// MACD(12,26)까지 계산하려면 최소 26개 봉이 필요하다 — 모자라면 nil 을
// 반환하고 채점은 추정 브랜치로 떨어진다.
func computeTechnical(bars []contracts.DailyBar) *contracts.TechnicalSnapshot {
	if len(bars) < 26 {
		return nil
	}

	// 시간순 종가
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[len(bars)-1-i] = float64(b.Close)
	}

	snapshot := &contracts.TechnicalSnapshot{
		RSI:          rsi(closes, 14),
		MACDHist:     macdHistogram(closes),
		BollingerPos: bollingerPosition(closes, 20),
		MA5:          sma(closes, 5),
		MA20:         sma(closes, 20),
	}

	return snapshot
}

// sma returns the simple moving average of the last `period` values.
func sma(values []float64, period int) float64 {
	if len(values) < period || period == 0 {
		return 0
	}

	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// ema returns the exponential moving average series seed-averaged over the
// first `period` values.
func ema(values []float64, period int) float64 {
	if len(values) < period || period == 0 {
		return 0
	}

	k := 2.0 / float64(period+1)
	avg := sma(values[:period], period)
	for _, v := range values[period:] {
		avg = v*k + avg*(1-k)
	}
	return avg
}

// rsi returns the Wilder RSI over the last `period` deltas.
func rsi(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50 // 중립
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses == 0 {
		return 100
	}

	rs := gains / losses
	return 100 - 100/(1+rs)
}

// macdHistogram returns MACD(12,26) minus its 9-period signal approximated
// by the EMA of the MACD line over the tail.
func macdHistogram(closes []float64) float64 {
	if len(closes) < 26 {
		return 0
	}

	macdLine := make([]float64, 0, len(closes)-25)
	for i := 26; i <= len(closes); i++ {
		window := closes[:i]
		macdLine = append(macdLine, ema(window, 12)-ema(window, 26))
	}

	current := macdLine[len(macdLine)-1]
	signalPeriod := 9
	if len(macdLine) < signalPeriod {
		signalPeriod = len(macdLine)
	}
	signal := ema(macdLine, signalPeriod)
	if signal == 0 && signalPeriod > 0 {
		signal = sma(macdLine[len(macdLine)-signalPeriod:], signalPeriod)
	}

	return current - signal
}

// bollingerPosition returns where the latest close sits inside the
// 20-period band: 0 = 하단, 0.5 = 중단, 1 = 상단. 밴드 폭이 0이면 0.5.
func bollingerPosition(closes []float64, period int) float64 {
	if len(closes) < period {
		return 0.5
	}

	window := closes[len(closes)-period:]
	mean := sma(closes, period)

	var variance float64
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	stdev := math.Sqrt(variance / float64(period))
	if stdev == 0 {
		return 0.5
	}

	lower := mean - 2*stdev
	upper := mean + 2*stdev
	pos := (closes[len(closes)-1] - lower) / (upper - lower)

	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}
