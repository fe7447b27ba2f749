package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type TripHandler struct {
	Service *services.TripService
}

func NewTripHandler(s *services.TripService) *TripHandler {
	return &TripHandler{Service: s}
}

// List accepts movement, status, month (YYYY-MM) and q (vehicle number or driver name)
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trips, err := h.Service.List(r.Context(), currentUser(r), models.TripFilter{
		Movement: models.MovementStatus(q.Get("movement")),
		Status:   models.TripStatus(q.Get("status")),
		Month:    q.Get("month"),
		Search:   q.Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, trips)
}

func (h *TripHandler) ExportSheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trips, err := h.Service.ExportSheet(r.Context(), currentUser(r), q.Get("q"), models.TripStatus(q.Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, trips)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.Service.Get(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, trip)
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TripRequestBody
	if !decode(w, r, &req) {
		return
	}
	trip, err := h.Service.Create(r.Context(), currentUser(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, trip)
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.TripRequestBody
	if !decode(w, r, &req) {
		return
	}
	trip, err := h.Service.Update(r.Context(), currentUser(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, trip)
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	if err := h.Service.Delete(r.Context(), currentUser(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActiveTrip is the driver's current non-completed trip
func (h *TripHandler) ActiveTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.Service.ActiveTrip(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, trip)
}

func (h *TripHandler) UpdateActiveStatus(w http.ResponseWriter, r *http.Request) {
	var req models.DriverStatusRequest
	if !decode(w, r, &req) {
		return
	}
	trip, err := h.Service.UpdateActiveStatus(r.Context(), currentUser(r), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, trip)
}

// Settle pays the driver what is pending on an export trip and completes both legs
func (h *TripHandler) Settle(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	payment, err := h.Service.Settle(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, payment)
}
