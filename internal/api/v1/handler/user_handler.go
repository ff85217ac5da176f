package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"petconnect/internal/api/v1/dto"
	"petconnect/internal/middleware"
	"petconnect/internal/policy"
	"petconnect/internal/service"
)

type UserHandler struct {
	authService  service.AuthService
	adminService service.AdminService
	validate     *validator.Validate
}

func NewUserHandler(authService service.AuthService, adminService service.AdminService, v *validator.Validate) *UserHandler {
	return &UserHandler{authService: authService, adminService: adminService, validate: v}
}

// RegisterRoutes mounts the account-management routes.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/api/user/admin/dashboard", authMw(http.HandlerFunc(h.dashboard)))
	mux.Handle("/api/user/change-password", authMw(http.HandlerFunc(h.changePassword)))
}

func (h *UserHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	dash, err := h.adminService.Dashboard(r.Context(), claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrRoleForbidden):
			writeError(w, http.StatusForbidden, "admin access required")
		default:
			writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		}
		return
	}

	users := make([]dto.UserResponseDTO, 0, len(dash.Users))
	for i := range dash.Users {
		users = append(users, toUserDTO(&dash.Users[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"pets":  toPetDTOs(dash.Pets),
	})
}

func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req dto.ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	if err := h.authService.ChangePassword(r.Context(), claims.UserID(), req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrBadCredential):
			writeError(w, http.StatusBadRequest, "current password is incorrect")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "password changed"})
}
