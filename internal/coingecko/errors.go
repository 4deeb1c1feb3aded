package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// UpstreamError is a non-2xx answer from CoinGecko.
type UpstreamError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("coingecko %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

func IsRateLimited(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.Status == http.StatusTooManyRequests
}

// IsTimeout reports whether err came from the client or caller deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
