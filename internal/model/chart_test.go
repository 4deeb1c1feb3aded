package model_test

import (
	"errors"
	"testing"

	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestTimeRangeDays(t *testing.T) {
	tests := []struct {
		rng      model.TimeRange
		expected int
		wantErr  bool
	}{
		{"1d", 1, false},
		{"7d", 7, false},
		{"14d", 14, false},
		{"30d", 30, false},
		{"90d", 90, false},
		{"1y", 365, false},
		{"2w", 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.rng), func(t *testing.T) {
			days, err := tt.rng.Days()
			if tt.wantErr {
				assert.True(t, errors.Is(err, model.ErrInvalidTimeRange))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestParseChartType(t *testing.T) {
	ct, err := model.ParseChartType("")
	assert.NoError(t, err)
	assert.Equal(t, model.ChartTypeLine, ct)

	ct, err = model.ParseChartType("bubble")
	assert.NoError(t, err)
	assert.Equal(t, model.ChartTypeBubble, ct)

	_, err = model.ParseChartType("candle")
	assert.ErrorIs(t, err, model.ErrInvalidChartType)
}
