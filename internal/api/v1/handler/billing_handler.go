package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"petconnect/internal/api/v1/dto"
	"petconnect/internal/middleware"
	"petconnect/internal/model"
	"petconnect/internal/service"
)

type BillingHandler struct {
	billingService service.BillingService
	validate       *validator.Validate
}

func NewBillingHandler(billingService service.BillingService, v *validator.Validate) *BillingHandler {
	return &BillingHandler{billingService: billingService, validate: v}
}

// RegisterRoutes mounts the payment routes. The webhook is called by the
// gateway, not a logged-in user, so it stays outside the auth middleware.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/api/user/pay/razorpay-order", authMw(http.HandlerFunc(h.createOrder)))
	mux.HandleFunc("/api/user/pay/razorpay-webhook", h.webhook)
}

func (h *BillingHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req dto.OrderCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	order, err := h.billingService.CreateOrder(r.Context(), claims.UserID(), model.Plan(req.Plan))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBillingNotConfigured):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create payment order")
		}
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *BillingHandler) webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}
	if err := h.billingService.HandleWebhook(r.Context(), payload); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "webhook received"})
}
