package handler

import (
	"net/http"

	"agrirent/internal/analytics/service"
	"agrirent/pkg/auth"
	httputil "agrirent/pkg/http"
	"agrirent/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AnalyticsHandler struct {
	service  service.AnalyticsService
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, verifier *auth.Verifier, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *AnalyticsHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rows, err := h.service.GetAll(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, rows); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/analytics", h.verifier.ProtectRole(auth.RoleOwner, h.GetAll))
}
