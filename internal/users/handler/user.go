package handler

import (
	"encoding/json"
	"net/http"

	"reserva/internal/users/service"
	httputil "reserva/pkg/http"
	"reserva/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// Sync registers the authenticated subject on first sight. The gateway
// verifies the token and forwards its claims as the request body.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	idempotencyKey, err := httputil.ExtractIdempotencyKey(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var claims map[string]any
	if err := json.NewDecoder(r.Body).Decode(&claims); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	user, created, err := h.service.GetOrCreate(r.Context(), claims, idempotencyKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if created {
		httputil.WriteCreated(w, user)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/users/sync", h.Sync)
}
