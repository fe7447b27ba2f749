package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type TOTPHandler struct {
	TOTPService *services.TOTPService
}

func NewTOTPHandler(totpService *services.TOTPService) *TOTPHandler {
	return &TOTPHandler{TOTPService: totpService}
}

// SetupTOTP initiates 2FA setup - returns secret and QR code
func (h *TOTPHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	response, err := h.TOTPService.GenerateSetup(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, response)
}

// EnableTOTP verifies the first code and turns 2FA on
func (h *TOTPHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "Verification code is required")
		return
	}

	if err := h.TOTPService.Enable(r.Context(), currentUser(r).ID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA enabled"})
}

// DisableTOTP needs both the password and a current code
func (h *TOTPHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPDisableRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.TOTPService.Disable(r.Context(), currentUser(r).ID, req.Password, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA disabled"})
}
