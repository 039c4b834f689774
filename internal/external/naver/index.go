package naver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/scout/internal/contracts"
)

// naverIndexCodes maps the brokerage index codes to Naver's sise symbols.
var naverIndexCodes = map[string]string{
	"0001": "KOSPI",
	"1001": "KOSDAQ",
}

// FetchIndex scrapes an index change rate from the sise page.
// 증권사 API 장애 시 시장 상태 판정용 폴백.
func (c *Client) FetchIndex(ctx context.Context, indexCode string) (*contracts.IndexQuote, error) {
	symbol, ok := naverIndexCodes[indexCode]
	if !ok {
		return nil, fmt.Errorf("unknown index code %q", indexCode)
	}

	url := fmt.Sprintf("%s/sise/sise_index.naver?code=%s", c.cfg.BaseURL, symbol)

	html, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	// #change_rate_and_amount 내 등락률 텍스트, 예: "+0.85%" / "-1.23%"
	text := strings.TrimSpace(doc.Find("#change_rate_and_amount .num2").First().Text())
	if text == "" {
		text = strings.TrimSpace(doc.Find("#quotient .num2").First().Text())
	}
	if text == "" {
		return nil, fmt.Errorf("index %s: %w", symbol, contracts.ErrDataUnavailable)
	}

	rate, err := parseRate(text)
	if err != nil {
		return nil, fmt.Errorf("parse index rate %q: %w", text, err)
	}

	// 하락은 페이지상 부호 없이 스타일로 표기되는 경우가 있어 클래스로 보정
	if doc.Find("#quotient.dn").Length() > 0 && rate > 0 {
		rate = -rate
	}

	return &contracts.IndexQuote{ChangeRate: rate}, nil
}

func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	return strconv.ParseFloat(s, 64)
}
