package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/service"
)

type UserHandler struct {
	userService service.UserServiceInterface
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		logger.Warnf("failed to decode login request: %v", err)
		commons.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if credentials.Username == "" || credentials.Password == "" {
		commons.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), credentials.Username, credentials.Password)
	if err != nil {
		logger.Warnf("failed login for user %s: %v", credentials.Username, err)
		commons.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	commons.RespondWithJSON(w, http.StatusOK, user)
}
