package naver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frgn 페이지 축약본: 첫 테이블은 외국인 보유율 요약, 둘째가 일별 수급
const investorPageHTML = `
<html><body>
<table class="type2"><tr><td>summary</td></tr></table>
<table class="type2">
  <tr>
    <th>날짜</th><th>종가</th><th>전일비</th><th>등락률</th><th>거래량</th><th>기관</th><th>외국인</th>
  </tr>
  <tr>
    <td>2026.08.28</td><td>71,200</td><td>900</td><td>+1.28%</td><td>12,345,678</td><td>+123,456</td><td>-45,678</td>
  </tr>
  <tr>
    <td>2026.08.27</td><td>70,300</td><td>100</td><td>+0.14%</td><td>9,876,543</td><td>-7,890</td><td>+12,000</td>
  </tr>
  <tr>
    <td></td><td colspan="6">광고 배너 행</td>
  </tr>
  <tr>
    <td>2026.08.26</td><td>70,200</td><td>500</td><td>-0.71%</td><td>8,000,000</td><td>+1,000</td><td>+2,000</td>
  </tr>
</table>
</body></html>`

func TestParseInvestorHTML(t *testing.T) {
	trend, err := parseInvestorHTML(investorPageHTML, 5)
	require.NoError(t, err)
	require.Len(t, trend, 3)

	assert.Equal(t, "2026-08-28", trend[0].Date)
	assert.Equal(t, int64(123_456), trend[0].InstNetBuy)
	assert.Equal(t, int64(-45_678), trend[0].ForeignNetBuy)

	assert.Equal(t, "2026-08-27", trend[1].Date)
	assert.Equal(t, int64(-7_890), trend[1].InstNetBuy)
	assert.Equal(t, int64(12_000), trend[1].ForeignNetBuy)

	// 날짜 패턴이 아닌 행(광고 등)은 건너뛴다
	assert.Equal(t, "2026-08-26", trend[2].Date)
}

func TestParseInvestorHTML_DayLimit(t *testing.T) {
	trend, err := parseInvestorHTML(investorPageHTML, 2)
	require.NoError(t, err)
	assert.Len(t, trend, 2)
}

func TestParseInvestorHTML_MissingTable(t *testing.T) {
	_, err := parseInvestorHTML(`<html><body><table class="type2"></table></body></html>`, 5)
	assert.Error(t, err)
}

func TestParseNum(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1,234", 1234},
		{"+567", 567},
		{"-1,000", -1000},
		{"  42 ", 42},
		{"", 0},
		{"-", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseNum(tt.input), "input %q", tt.input)
	}
}
