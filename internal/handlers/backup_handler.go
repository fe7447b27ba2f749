package handlers

import (
	"net/http"

	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

// BackupHandler answers 503 while no bucket is configured
type BackupHandler struct {
	Service *services.BackupService
}

func NewBackupHandler(s *services.BackupService) *BackupHandler {
	return &BackupHandler{Service: s}
}

func (h *BackupHandler) available(w http.ResponseWriter) bool {
	if h.Service == nil || h.Service.Client == nil {
		utils.Error(w, http.StatusServiceUnavailable, "Backup storage is not configured")
		return false
	}
	return true
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	obj, err := h.Service.Run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, obj)
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	objects, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, objects)
}
