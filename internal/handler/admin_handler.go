package handler

import (
	"net/http"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/relay"
	"github.com/Lutefd/coin-relay/internal/service"
)

type AdminHandler struct {
	adminService service.AdminServiceInterface
}

func NewAdminHandler(adminService service.AdminServiceInterface) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	dropped := h.adminService.ClearQueue()
	commons.RespondWithJSON(w, http.StatusOK, map[string]int{"dropped": dropped})
}

// PurgeCache drops the entry for ?endpoint= and the remaining parameters.
func (h *AdminHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	endpoint := params.Get("endpoint")
	params.Del("endpoint")

	if err := h.adminService.PurgeCache(r.Context(), relay.Request{Endpoint: endpoint, Params: params}); err != nil {
		respondWithUpstreamError(w, err)
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Cache entry purged"})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	commons.RespondWithJSON(w, http.StatusOK, h.adminService.Stats())
}
