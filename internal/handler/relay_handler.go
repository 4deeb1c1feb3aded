package handler

import (
	"net/http"
	"strconv"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/relay"
	"github.com/Lutefd/coin-relay/internal/service"
)

type RelayHandler struct {
	relay service.RelayServiceInterface
}

func NewRelayHandler(relay service.RelayServiceInterface) *RelayHandler {
	return &RelayHandler{relay: relay}
}

// Relay forwards ?endpoint=<path> and the remaining query parameters to
// CoinGecko and answers with {"data": <body>}.
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	params := r.URL.Query()
	endpoint := params.Get("endpoint")
	params.Del("endpoint")

	res, err := h.relay.Get(r.Context(), relay.Request{Endpoint: endpoint, Params: params})
	if err != nil {
		respondWithUpstreamError(w, err)
		return
	}

	w.Header().Set("Cache-Control", commons.RelayCacheControl)
	w.Header().Set("X-Cache", string(res.Status))
	w.Header().Set("Age", strconv.Itoa(int(res.Age.Seconds())))
	commons.RespondWithData(w, http.StatusOK, res.Data)
}

// Preflight answers OPTIONS requests with the fixed CORS policy of the API.
func Preflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusNoContent)
}

// AnswerPreflight ends every OPTIONS request with Preflight.
func AnswerPreflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			Preflight(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
