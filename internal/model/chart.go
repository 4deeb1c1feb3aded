package model

import "fmt"

type ChartType string

const (
	ChartTypeLine   ChartType = "line"
	ChartTypeBubble ChartType = "bubble"
)

type TimeRange string

var timeRangeDays = map[TimeRange]int{
	"1d":  1,
	"7d":  7,
	"14d": 14,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// Days returns the number of days a range covers.
func (r TimeRange) Days() (int, error) {
	days, ok := timeRangeDays[r]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeRange, r)
	}
	return days, nil
}

func ParseChartType(s string) (ChartType, error) {
	switch ChartType(s) {
	case "", ChartTypeLine:
		return ChartTypeLine, nil
	case ChartTypeBubble:
		return ChartTypeBubble, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidChartType, s)
}

type ChartPoint struct {
	X int64    `json:"x"`
	Y float64  `json:"y"`
	Z *float64 `json:"z,omitempty"`
}

type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}
