package model

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidChartType = errors.New("invalid chart type")
	ErrInvalidLimit     = errors.New("invalid limit")
	ErrNoData           = errors.New("no data received from upstream")
)
