package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agrirent/internal/equipment/service"
	"agrirent/pkg/auth"
	apperrors "agrirent/pkg/errors"
	httputil "agrirent/pkg/http"
	"agrirent/pkg/logger"
	"agrirent/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EquipmentHandler struct {
	service  service.EquipmentService
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewEquipmentHandler(service service.EquipmentService, verifier *auth.Verifier, log *logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	equipment, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, equipment, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *EquipmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	equipment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.EquipmentCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	equipment, err := h.service.Create(r.Context(), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, equipment); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var req model.EquipmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	equipment, err := h.service.Update(r.Context(), ps.ByName("id"), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id"), identity.UserID); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EquipmentHandler) ListByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	equipment, total, err := h.service.ListByOwner(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		h.writeError(w, "ListByOwner", err)
		return
	}

	if err := httputil.WritePaginated(w, equipment, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByOwner", "error", err)
	}
}

func (h *EquipmentHandler) AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "AddReview", err)
		return
	}

	var req model.ReviewCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "AddReview", apperrors.InvalidInput("Invalid request body"))
		return
	}

	equipment, err := h.service.AddReview(r.Context(), ps.ByName("id"), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "AddReview", err)
		return
	}

	if err := httputil.WriteCreated(w, equipment); err != nil {
		h.log.Error("failed to write created response", "handler", "AddReview", "error", err)
	}
}

func (h *EquipmentHandler) ReplyToReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "ReplyToReview", err)
		return
	}

	var req model.ReviewReply
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ReplyToReview", apperrors.InvalidInput("Invalid request body"))
		return
	}

	err = h.service.ReplyToReview(r.Context(), ps.ByName("id"), ps.ByName("reviewID"), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "ReplyToReview", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EquipmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/equipment", h.List)
	router.GET("/api/v1/equipment/id/:id", h.GetByID)
	router.POST("/api/v1/equipment", h.verifier.ProtectRole(auth.RoleOwner, h.Create))
	router.PUT("/api/v1/equipment/id/:id", h.verifier.ProtectRole(auth.RoleOwner, h.Update))
	router.DELETE("/api/v1/equipment/id/:id", h.verifier.ProtectRole(auth.RoleOwner, h.Delete))
	router.GET("/api/v1/equipment/owner", h.verifier.ProtectRole(auth.RoleOwner, h.ListByOwner))
	router.POST("/api/v1/equipment/id/:id/reviews", h.verifier.ProtectRole(auth.RoleFarmer, h.AddReview))
	router.PUT("/api/v1/equipment/id/:id/reviews/:reviewID/reply", h.verifier.ProtectRole(auth.RoleOwner, h.ReplyToReview))
}

func (h *EquipmentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func parseFilter(r *http.Request) (model.EquipmentFilter, error) {
	query := r.URL.Query()

	filter := model.EquipmentFilter{
		Category: model.Category(query.Get("category")),
		Location: query.Get("location"),
		Search:   query.Get("search"),
		SortBy:   query.Get("sort_by"),
	}

	if availStr := query.Get("availability"); availStr != "" {
		avail, err := strconv.ParseBool(availStr)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid availability parameter: " + availStr)
		}
		filter.Availability = &avail
	}

	if minStr := query.Get("min_daily_rate"); minStr != "" {
		min, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid min_daily_rate parameter: " + minStr)
		}
		filter.MinDailyRate = &min
	}

	if maxStr := query.Get("max_daily_rate"); maxStr != "" {
		max, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid max_daily_rate parameter: " + maxStr)
		}
		filter.MaxDailyRate = &max
	}

	return filter, nil
}
