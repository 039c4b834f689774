package kiwoom

import (
	"context"
	"fmt"

	"github.com/wonny/scout/internal/contracts"
)

// Market data endpoints. Kiwoom routes every quote TR through the same path
// and distinguishes them by api-id.
const (
	pathQuote   = "/api/dostk/stkinfo"
	pathRank    = "/api/dostk/rkinfo"
	pathChart   = "/api/dostk/chart"
	pathIndex   = "/api/dostk/sect"
	pathInvestr = "/api/dostk/frgnistt"
)

// Screen returns the condition-screened universe sorted by trading value.
// 필터 값 검증은 하지 않는다 — 상류(설정)에서 보장.
func (c *Client) Screen(ctx context.Context, filter contracts.ScreenFilter) ([]contracts.ScreenedStock, error) {
	payload := map[string]string{
		"mrkt_tp":        "000", // 전체 (코스피+코스닥)
		"trde_qty_tp":    "0",
		"sort_tp":        "1", // 거래대금순
		"stk_cnd":        "0",
		"crd_cnd":        "0",
		"updown_incls":   "1",
		"pric_cnd":       "0",
		"trde_prica_cnd": "0",
	}

	resp, err := c.request(ctx, pathRank, "ka10032", payload)
	if err != nil {
		return nil, fmt.Errorf("screen request: %w", err)
	}

	var result struct {
		Output []struct {
			Code   string `json:"stk_cd"`
			Name   string `json:"stk_nm"`
			Price  string `json:"cur_prc"`
			Volume string `json:"trde_qty"`
			Rate   string `json:"flu_rt"`
			MktCap string `json:"mrkt_cap"`
		} `json:"trde_prica_upper"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}

	screened := make([]contracts.ScreenedStock, 0, len(result.Output))
	for _, row := range result.Output {
		stock := contracts.ScreenedStock{
			Code:   row.Code,
			Name:   row.Name,
			Price:  abs64(parseInt64(row.Price)), // 하락 종목은 음수 부호로 옴
			Volume: parseInt64(row.Volume),
			Rate:   parseFloat(row.Rate),
		}

		// 서버측 조건 검색이 못 거르는 범위는 여기서 거른다
		if stock.Price < filter.MinPrice || stock.Price > filter.MaxPrice {
			continue
		}
		if stock.Volume < filter.MinVolume {
			continue
		}
		if stock.Rate < filter.MinRate || stock.Rate > filter.MaxRate {
			continue
		}
		if mktCap := parseInt64(row.MktCap) * 100_000_000; mktCap > 0 && mktCap < filter.MinMarketCap {
			continue
		}

		screened = append(screened, stock)
	}

	return screened, nil
}

// GetInvestorData returns today's institutional/foreign net buy (원).
func (c *Client) GetInvestorData(ctx context.Context, code string) (*contracts.InvestorData, error) {
	payload := map[string]string{
		"stk_cd":  code,
		"amt_qty": "1", // 금액 기준
	}

	resp, err := c.request(ctx, pathInvestr, "ka10059", payload)
	if err != nil {
		return nil, fmt.Errorf("investor request: %w", err)
	}

	var result struct {
		Output []struct {
			InstNetBuy    string `json:"orgn_netprps"`
			ForeignNetBuy string `json:"frgnr_netprps"`
		} `json:"stk_invsr"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if len(result.Output) == 0 {
		return nil, fmt.Errorf("investor data for %s: %w", code, contracts.ErrDataUnavailable)
	}

	return &contracts.InvestorData{
		InstitutionalNetBuy: parseInt64(result.Output[0].InstNetBuy),
		ForeignNetBuy:       parseInt64(result.Output[0].ForeignNetBuy),
	}, nil
}

// GetBidAsk returns the aggregate order book quantities.
func (c *Client) GetBidAsk(ctx context.Context, code string) (*contracts.BidAsk, error) {
	payload := map[string]string{"stk_cd": code}

	resp, err := c.request(ctx, pathQuote, "ka10004", payload)
	if err != nil {
		return nil, fmt.Errorf("bid/ask request: %w", err)
	}

	var result struct {
		TotalBid string `json:"tot_buy_req"`
		TotalAsk string `json:"tot_sel_req"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}

	return &contracts.BidAsk{
		TotalBidQty: parseInt64(result.TotalBid),
		TotalAskQty: parseInt64(result.TotalAsk),
	}, nil
}

// GetInstitutionalTrend returns the last `days` of investor flow, most recent first.
func (c *Client) GetInstitutionalTrend(ctx context.Context, code string, days int) ([]contracts.InvestorTrendDay, error) {
	payload := map[string]string{
		"stk_cd":  code,
		"amt_qty": "1",
	}

	resp, err := c.request(ctx, pathInvestr, "ka10059", payload)
	if err != nil {
		return nil, fmt.Errorf("trend request: %w", err)
	}

	var result struct {
		Output []struct {
			Date          string `json:"dt"`
			InstNetBuy    string `json:"orgn_netprps"`
			ForeignNetBuy string `json:"frgnr_netprps"`
		} `json:"stk_invsr"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if len(result.Output) == 0 {
		return nil, fmt.Errorf("investor trend for %s: %w", code, contracts.ErrDataUnavailable)
	}

	if days > len(result.Output) {
		days = len(result.Output)
	}

	trend := make([]contracts.InvestorTrendDay, 0, days)
	for _, row := range result.Output[:days] {
		trend = append(trend, contracts.InvestorTrendDay{
			Date:          row.Date,
			InstNetBuy:    parseInt64(row.InstNetBuy),
			ForeignNetBuy: parseInt64(row.ForeignNetBuy),
		})
	}

	return trend, nil
}

// GetDailyOHLCV returns the last `period` daily bars, most recent first.
func (c *Client) GetDailyOHLCV(ctx context.Context, code string, period int) ([]contracts.DailyBar, error) {
	payload := map[string]string{
		"stk_cd":       code,
		"upd_stkpc_tp": "1", // 수정주가
	}

	resp, err := c.request(ctx, pathChart, "ka10081", payload)
	if err != nil {
		return nil, fmt.Errorf("ohlcv request: %w", err)
	}

	var result struct {
		Output []struct {
			Open   string `json:"open_pric"`
			High   string `json:"high_pric"`
			Low    string `json:"low_pric"`
			Close  string `json:"cur_prc"`
			Volume string `json:"trde_qty"`
		} `json:"stk_dt_pole_chart_qry"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if len(result.Output) == 0 {
		return nil, fmt.Errorf("ohlcv for %s: %w", code, contracts.ErrDataUnavailable)
	}

	if period > len(result.Output) {
		period = len(result.Output)
	}

	bars := make([]contracts.DailyBar, 0, period)
	for _, row := range result.Output[:period] {
		bars = append(bars, contracts.DailyBar{
			Open:   abs64(parseInt64(row.Open)),
			High:   abs64(parseInt64(row.High)),
			Low:    abs64(parseInt64(row.Low)),
			Close:  abs64(parseInt64(row.Close)),
			Volume: parseInt64(row.Volume),
		})
	}

	return bars, nil
}

// GetBrokerTrading returns a broker window's recent net activity on a ticker.
func (c *Client) GetBrokerTrading(ctx context.Context, brokerCode, code string, days int) ([]contracts.BrokerTrade, error) {
	payload := map[string]string{
		"stk_cd":  code,
		"mmcm_cd": brokerCode,
		"qry_tp":  "2", // 순매수
	}

	resp, err := c.request(ctx, pathQuote, "ka10078", payload)
	if err != nil {
		return nil, fmt.Errorf("broker trading request: %w", err)
	}

	var result struct {
		Output []struct {
			NetQty string `json:"netprps_qty"`
		} `json:"sec_stk_trde"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if len(result.Output) == 0 {
		return nil, fmt.Errorf("broker trading %s/%s: %w", brokerCode, code, contracts.ErrDataUnavailable)
	}

	if days > len(result.Output) {
		days = len(result.Output)
	}

	trades := make([]contracts.BrokerTrade, 0, days)
	for _, row := range result.Output[:days] {
		trades = append(trades, contracts.BrokerTrade{NetQty: parseInt64(row.NetQty)})
	}

	return trades, nil
}

// GetExecutionIntensity returns the execution intensity ratio (100 = 중립).
func (c *Client) GetExecutionIntensity(ctx context.Context, code string) (float64, error) {
	payload := map[string]string{"stk_cd": code}

	resp, err := c.request(ctx, pathQuote, "ka10046", payload)
	if err != nil {
		return 0, fmt.Errorf("execution intensity request: %w", err)
	}

	var result struct {
		Output []struct {
			Intensity string `json:"cntr_str"`
		} `json:"cntr_str_tm"`
	}
	if err := decode(resp, &result); err != nil {
		return 0, err
	}
	if len(result.Output) == 0 {
		return 0, fmt.Errorf("execution intensity for %s: %w", code, contracts.ErrDataUnavailable)
	}

	return parseFloat(result.Output[0].Intensity), nil
}

// GetProgramTrading returns today's program-trading net buy (원).
func (c *Client) GetProgramTrading(ctx context.Context, code string) (int64, error) {
	payload := map[string]string{
		"stk_cd":  code,
		"amt_qty": "1",
	}

	resp, err := c.request(ctx, pathQuote, "ka90004", payload)
	if err != nil {
		return 0, fmt.Errorf("program trading request: %w", err)
	}

	var result struct {
		NetBuy string `json:"prm_netprps_amt"`
	}
	if err := decode(resp, &result); err != nil {
		return 0, err
	}

	return parseInt64(result.NetBuy), nil
}

// GetIndex returns an index snapshot ("0001" KOSPI, "1001" KOSDAQ).
func (c *Client) GetIndex(ctx context.Context, indexCode string) (*contracts.IndexQuote, error) {
	payload := map[string]string{"inds_cd": indexCode}

	resp, err := c.request(ctx, pathIndex, "ka20001", payload)
	if err != nil {
		return nil, fmt.Errorf("index request: %w", err)
	}

	var result struct {
		Rate string `json:"flu_rt"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}

	return &contracts.IndexQuote{ChangeRate: parseFloat(result.Rate)}, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
