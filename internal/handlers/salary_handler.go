package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type SalaryHandler struct {
	Service *services.SalaryService
}

func NewSalaryHandler(s *services.SalaryService) *SalaryHandler {
	return &SalaryHandler{Service: s}
}

func (h *SalaryHandler) List(w http.ResponseWriter, r *http.Request) {
	salaries, err := h.Service.List(r.Context(), currentUser(r), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, salaries)
}

func (h *SalaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	salary, err := h.Service.Record(r.Context(), currentUser(r), vars["driverId"], vars["month"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, salary)
}

func (h *SalaryHandler) AddAdvance(w http.ResponseWriter, r *http.Request) {
	var req models.AddAdvanceRequest
	if !decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	salary, err := h.Service.AddAdvance(r.Context(), currentUser(r), vars["driverId"], vars["month"], &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, salary)
}

type salarySettleResponse struct {
	Salary  *models.SalaryView `json:"salary"`
	Payment *models.Payment    `json:"payment,omitempty"`
}

func (h *SalaryHandler) Settle(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	vars := mux.Vars(r)
	salary, payment, err := h.Service.Settle(r.Context(), currentUser(r), vars["driverId"], vars["month"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, salarySettleResponse{Salary: salary, Payment: payment})
}
