package handler

import (
	"encoding/json"
	"net/http"

	"agrirent/internal/payments/service"
	"agrirent/pkg/auth"
	apperrors "agrirent/pkg/errors"
	httputil "agrirent/pkg/http"
	"agrirent/pkg/logger"
	"agrirent/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service  service.PaymentService
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, verifier *auth.Verifier, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		verifier: verifier,
		log:      log,
	}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "CreateOrder", err)
		return
	}

	var req model.OrderCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "CreateOrder", apperrors.InvalidInput("Invalid request body"))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "CreateOrder", err)
		return
	}

	if err := httputil.WriteCreated(w, order); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateOrder", "error", err)
	}
}

func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}

	var req model.PaymentProof
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ConfirmPayment", apperrors.InvalidInput("Invalid request body"))
		return
	}

	payment, err := h.service.ConfirmPayment(r.Context(), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.log.Error("failed to write success response", "handler", "ConfirmPayment", "error", err)
	}
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "Refund", err)
		return
	}

	var req model.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Refund", apperrors.InvalidInput("Invalid request body"))
		return
	}

	payment, err := h.service.Refund(r.Context(), identity.UserID, &req)
	if err != nil {
		h.writeError(w, "Refund", err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.log.Error("failed to write success response", "handler", "Refund", "error", err)
	}
}

func (h *PaymentHandler) ListForBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "ListForBooking", err)
		return
	}

	payments, err := h.service.ListForBooking(r.Context(), ps.ByName("bookingID"), identity.UserID)
	if err != nil {
		h.writeError(w, "ListForBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, payments); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForBooking", "error", err)
	}
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	payment, err := h.service.GetByID(r.Context(), ps.ByName("id"), identity.UserID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/create-order", h.verifier.ProtectRole(auth.RoleFarmer, h.CreateOrder))
	router.POST("/api/v1/payments/confirm-payment", h.verifier.ProtectRole(auth.RoleFarmer, h.ConfirmPayment))
	router.POST("/api/v1/payments/refund", h.verifier.ProtectRole(auth.RoleOwner, h.Refund))
	router.GET("/api/v1/payments/booking/:bookingID", h.verifier.Protect(h.ListForBooking))
	router.GET("/api/v1/payments/id/:id", h.verifier.Protect(h.GetByID))
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
