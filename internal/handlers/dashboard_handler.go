package handlers

import (
	"net/http"

	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(s *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: s}
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Admin(r.Context(), currentUser(r))
	respond(w, r, v, err)
}

func (h *DashboardHandler) Manager(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Manager(r.Context(), currentUser(r))
	respond(w, r, v, err)
}

func (h *DashboardHandler) SubManager(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.SubManager(r.Context(), currentUser(r))
	respond(w, r, v, err)
}

func (h *DashboardHandler) Ujala(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Ujala(r.Context(), currentUser(r))
	respond(w, r, v, err)
}

func (h *DashboardHandler) Driver(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Driver(r.Context(), currentUser(r))
	respond(w, r, v, err)
}

// FleetExplorer takes tab (managers, drivers or vehicles) and q
func (h *DashboardHandler) FleetExplorer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := h.Service.FleetExplorer(r.Context(), q.Get("tab"), q.Get("q"))
	respond(w, r, v, err)
}

// respond writes v as a 200 JSON response unless err is set
func respond(w http.ResponseWriter, r *http.Request, v interface{}, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, v)
}
