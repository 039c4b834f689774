package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scan_type 쿼리 파라미터가 이 문자열 그대로 들어오므로 값 변경은 API 호환성 파괴
func TestScanTypeWireValues(t *testing.T) {
	assert.Equal(t, ScanType("default"), ScanTypeDefault)
	assert.Equal(t, ScanType("volume_based"), ScanTypeVolumeBased)
	assert.Equal(t, ScanType("price_change"), ScanTypePriceChange)
	assert.Equal(t, ScanType("ai_driven"), ScanTypeAIDriven)
}

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name     string
		scanType ScanType
		want     WeightProfile
	}{
		{"default", ScanTypeDefault, defaultProfile},
		{"volume based", ScanTypeVolumeBased, volumeBasedProfile},
		{"price change", ScanTypePriceChange, priceChangeProfile},
		{"ai driven", ScanTypeAIDriven, aiDrivenProfile},
		{"unknown falls back to default", ScanType("whatever"), defaultProfile},
		{"empty falls back to default", ScanType(""), defaultProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileFor(tt.scanType))
		})
	}
}
