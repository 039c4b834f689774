package naver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/scout/internal/contracts"
)

var dateRe = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// FetchInvestorTrend scrapes the last `days` of institutional/foreign net
// buying for a ticker, most recent first.
// ⭐ SSOT: Naver 투자자 수급 스크래핑은 이 함수에서만
func (c *Client) FetchInvestorTrend(ctx context.Context, code string, days int) ([]contracts.InvestorTrendDay, error) {
	url := fmt.Sprintf("%s/item/frgn.naver?code=%s", c.cfg.BaseURL, code)

	html, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	trend, err := parseInvestorHTML(html, days)
	if err != nil {
		return nil, fmt.Errorf("parse investor page for %s: %w", code, err)
	}
	if len(trend) == 0 {
		return nil, fmt.Errorf("investor trend for %s: %w", code, contracts.ErrDataUnavailable)
	}

	c.logger.WithFields(map[string]interface{}{
		"code": code,
		"days": len(trend),
	}).Debug("Fetched investor trend from Naver")

	return trend, nil
}

// parseInvestorHTML extracts the flow rows from the frgn page.
// 구조: 두번째 type2 테이블, 컬럼 날짜|종가|대비|등락률|거래량|기관|외국인
func parseInvestorHTML(html string, days int) ([]contracts.InvestorTrendDay, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	tables := doc.Find("table.type2")
	if tables.Length() < 2 {
		return nil, fmt.Errorf("unexpected page layout")
	}

	var trend []contracts.InvestorTrendDay
	tables.Eq(1).Find("tr").Each(func(i int, row *goquery.Selection) {
		if len(trend) >= days {
			return
		}

		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !dateRe.MatchString(dateText) {
			return
		}

		trend = append(trend, contracts.InvestorTrendDay{
			Date:          strings.ReplaceAll(dateText, ".", "-"),
			InstNetBuy:    parseNum(cells.Eq(5).Text()),
			ForeignNetBuy: parseNum(cells.Eq(6).Text()),
		})
	})

	return trend, nil
}

func parseNum(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "+", "")
	if s == "" || s == "-" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
