package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type SystemSettingHandler struct {
	Service *services.SystemSettingService
}

func NewSystemSettingHandler(s *services.SystemSettingService) *SystemSettingHandler {
	return &SystemSettingHandler{Service: s}
}

// Public serves branding and feature toggles to the login screen
func (h *SystemSettingHandler) Public(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}

type settingsResponse struct {
	Settings *models.AppSettings     `json:"settings"`
	Rows     []*models.SystemSetting `json:"rows"`
}

// Get returns the settings with the raw rows so the admin sees who changed what
func (h *SystemSettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.Service.ListSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, settingsResponse{Settings: settings, Rows: rows})
}

func (h *SystemSettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if !decode(w, r, &req) {
		return
	}
	settings, err := h.Service.Update(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}
