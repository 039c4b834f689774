package naver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"+0.85%", 0.85},
		{"-1.23%", -1.23},
		{"0.00%", 0},
		{"1,234.56%", 1234.56},
		{" +2.10% ", 2.1},
	}

	for _, tt := range tests {
		got, err := parseRate(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.InDelta(t, tt.want, got, 0.0001, "input %q", tt.input)
	}
}

func TestParseRate_Garbage(t *testing.T) {
	_, err := parseRate("상승")
	assert.Error(t, err)
}
