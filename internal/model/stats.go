package model

// RelayStats is the operational state reported to admins.
type RelayStats struct {
	QueueLength       int `json:"queue_length"`
	QueueFailures     int `json:"queue_failures"`
	InFlightRefreshes int `json:"in_flight_refreshes"`
}
