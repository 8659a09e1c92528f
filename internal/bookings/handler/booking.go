package handler

import (
	"encoding/json"
	"net/http"

	"agrirent/internal/bookings/service"
	"agrirent/pkg/auth"
	apperrors "agrirent/pkg/errors"
	httputil "agrirent/pkg/http"
	"agrirent/pkg/logger"
	"agrirent/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service  service.BookingService
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewBookingHandler(service service.BookingService, verifier *auth.Verifier, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.BookingCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), identity.UserID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) ListForRenter(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "ListForRenter", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListForRenter", err)
		return
	}

	status, err := parseStatusFilter(r)
	if err != nil {
		h.writeError(w, "ListForRenter", err)
		return
	}

	bookings, total, err := h.service.ListForRenter(r.Context(), identity.UserID, status, limit, offset)
	if err != nil {
		h.writeError(w, "ListForRenter", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListForRenter", "error", err)
	}
}

func (h *BookingHandler) ListForOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "ListForOwner", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListForOwner", err)
		return
	}

	status, err := parseStatusFilter(r)
	if err != nil {
		h.writeError(w, "ListForOwner", err)
		return
	}

	bookings, total, err := h.service.ListForOwner(r.Context(), identity.UserID, status, limit, offset)
	if err != nil {
		h.writeError(w, "ListForOwner", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListForOwner", "error", err)
	}
}

func (h *BookingHandler) OwnerRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "OwnerRequests", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "OwnerRequests", err)
		return
	}

	bookings, total, err := h.service.OwnerRequests(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		h.writeError(w, "OwnerRequests", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "OwnerRequests", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	var req model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), identity.UserID)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) SetPickupDetails(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "SetPickupDetails", err)
		return
	}

	var details model.PickupDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		h.writeError(w, "SetPickupDetails", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.SetPickupDetails(r.Context(), ps.ByName("id"), identity.UserID, &details)
	if err != nil {
		h.writeError(w, "SetPickupDetails", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "SetPickupDetails", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func (h *BookingHandler) UsageSummary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	summary, err := h.service.UsageSummary(r.Context())
	if err != nil {
		h.writeError(w, "UsageSummary", err)
		return
	}

	if err := httputil.WriteSuccess(w, summary); err != nil {
		h.log.Error("failed to write success response", "handler", "UsageSummary", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.verifier.ProtectRole(auth.RoleFarmer, h.Create))
	router.GET("/api/v1/bookings/farmer", h.verifier.ProtectRole(auth.RoleFarmer, h.ListForRenter))
	router.GET("/api/v1/bookings/owner", h.verifier.ProtectRole(auth.RoleOwner, h.ListForOwner))
	router.GET("/api/v1/bookings/owner/requests", h.verifier.ProtectRole(auth.RoleOwner, h.OwnerRequests))
	router.GET("/api/v1/bookings/usage-summary", h.verifier.ProtectRole(auth.RoleOwner, h.UsageSummary))
	router.GET("/api/v1/bookings/id/:id", h.verifier.Protect(h.GetByID))
	router.PUT("/api/v1/bookings/id/:id/status", h.verifier.ProtectRole(auth.RoleOwner, h.UpdateStatus))
	router.PUT("/api/v1/bookings/id/:id/cancel", h.verifier.ProtectRole(auth.RoleFarmer, h.Cancel))
	router.PUT("/api/v1/bookings/id/:id/pickup-details", h.verifier.ProtectRole(auth.RoleFarmer, h.SetPickupDetails))
	router.DELETE("/api/v1/bookings/id/:id", h.verifier.ProtectRole(auth.RoleFarmer, h.Delete))
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func parseStatusFilter(r *http.Request) (model.BookingStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return "", nil
	}

	status := model.BookingStatus(raw)
	switch status {
	case model.BookingPending, model.BookingApproved, model.BookingRejected,
		model.BookingInProgress, model.BookingCompleted, model.BookingCanceled:
		return status, nil
	default:
		return "", apperrors.InvalidInput("invalid status parameter: " + raw)
	}
}
