package handlers

import (
	"errors"
	"net/http"

	"fleet-backend/internal/access"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type AuthHandler struct {
	Service    *services.UserService
	Dashboards *services.DashboardService
}

func NewAuthHandler(s *services.UserService, dashboards *services.DashboardService) *AuthHandler {
	return &AuthHandler{
		Service:    s,
		Dashboards: dashboards,
	}
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	authResp, err := h.Service.Login(r.Context(), &req)
	if errors.Is(err, services.ErrTOTPRequired) {
		utils.JSON(w, http.StatusUnauthorized, models.LoginStepResponse{
			RequiresTOTP: true,
			Message:      err.Error(),
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, authResp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	h.Service.Logout(r.Context(), claims)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

type meResponse struct {
	User         *models.User    `json:"user"`
	Capabilities []access.Action `json:"capabilities"`
}

// Me returns the current user with the actions their role permits
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	utils.JSON(w, http.StatusOK, meResponse{
		User:         user,
		Capabilities: access.Capabilities(user.Role),
	})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ProfileStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboards.ProfileStats(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}
