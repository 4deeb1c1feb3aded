package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Lutefd/coin-relay/internal/coingecko"
	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/queue"
)

const (
	rateLimitMessage = "Rate limit exceeded. Please try again later."
	fallbackMessage  = "An error occurred while fetching data"
)

// respondWithUpstreamError maps relay and CoinGecko failures to a response.
func respondWithUpstreamError(w http.ResponseWriter, err error) {
	var upErr *coingecko.UpstreamError
	switch {
	case errors.Is(err, model.ErrInvalidEndpoint),
		errors.Is(err, model.ErrInvalidLimit),
		errors.Is(err, model.ErrInvalidTimeRange),
		errors.Is(err, model.ErrInvalidChartType):
		commons.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upErr) && upErr.Status == http.StatusTooManyRequests:
		logger.Warnf("upstream rate limited: %v", err)
		w.Header().Set("Retry-After", strconv.Itoa(commons.RateLimitRetryAfterSeconds))
		commons.RespondWithError(w, http.StatusTooManyRequests, rateLimitMessage)
	case errors.As(err, &upErr):
		logger.Errorf("upstream error: %v", err)
		commons.RespondWithError(w, upErr.Status, upErr.Message)
	case errors.Is(err, queue.ErrStopped):
		commons.RespondWithError(w, http.StatusServiceUnavailable, "service is shutting down")
	case coingecko.IsTimeout(err):
		commons.RespondWithError(w, http.StatusGatewayTimeout, "upstream request timed out")
	default:
		logger.Errorf("relay request failed: %v", err)
		commons.RespondWithError(w, http.StatusInternalServerError, fallbackMessage)
	}
}
