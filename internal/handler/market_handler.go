package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/service"
	"github.com/go-chi/chi/v5"
)

type MarketHandler struct {
	marketService service.MarketServiceInterface
}

func NewMarketHandler(marketService service.MarketServiceInterface) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

func (h *MarketHandler) Global(w http.ResponseWriter, r *http.Request) {
	global, err := h.marketService.Global(r.Context())
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, global)
}

func (h *MarketHandler) Markets(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, commons.DefaultTopCoinsLimit)
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	coins, err := h.marketService.TopCoins(r.Context(), limit)
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, coins)
}

func (h *MarketHandler) Coin(w http.ResponseWriter, r *http.Request) {
	details, err := h.marketService.Coin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, details)
}

func (h *MarketHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.marketService.Overview(r.Context())
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, overview)
}

// Chart answers ?range=1d|7d|14d|30d|90d|1y (default 7d) and
// ?type=line|bubble (default line).
func (h *MarketHandler) Chart(w http.ResponseWriter, r *http.Request) {
	timeRange := model.TimeRange(r.URL.Query().Get("range"))
	if timeRange == "" {
		timeRange = "7d"
	}
	chartType, err := model.ParseChartType(r.URL.Query().Get("type"))
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}

	series, err := h.marketService.Chart(r.Context(), chi.URLParam(r, "id"), timeRange, chartType)
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, series)
}

func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, commons.DefaultHistoryLimit)
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	snapshots, err := h.marketService.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, snapshots)
}

func queryLimit(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", model.ErrInvalidLimit, v)
	}
	return limit, nil
}
