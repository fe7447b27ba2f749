package handlers

import (
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// RequestHandler serves the trip and payment requests raised by sub-managers
type RequestHandler struct {
	Service *services.RequestService
}

func NewRequestHandler(s *services.RequestService) *RequestHandler {
	return &RequestHandler{Service: s}
}

func (h *RequestHandler) ListTripRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Service.ListTripRequests(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, reqs)
}

func (h *RequestHandler) CreateTripRequest(w http.ResponseWriter, r *http.Request) {
	var body models.CreateTripRequestBody
	if !decode(w, r, &body) {
		return
	}
	req, err := h.Service.CreateTripRequest(r.Context(), currentUser(r), &body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

type tripApprovalResponse struct {
	Request *models.TripRequest `json:"request"`
	Trip    *models.TripView    `json:"trip"`
}

func (h *RequestHandler) ApproveTripRequest(w http.ResponseWriter, r *http.Request) {
	var body models.ApproveTripRequestBody
	if !decode(w, r, &body) {
		return
	}
	req, trip, err := h.Service.ApproveTripRequest(r.Context(), currentUser(r), mux.Vars(r)["id"], &body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, tripApprovalResponse{Request: req, Trip: trip})
}

func (h *RequestHandler) RejectTripRequest(w http.ResponseWriter, r *http.Request) {
	body, ok := rejectBody(w, r)
	if !ok {
		return
	}
	req, err := h.Service.RejectTripRequest(r.Context(), currentUser(r), mux.Vars(r)["id"], body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *RequestHandler) ListPaymentRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Service.ListPaymentRequests(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, reqs)
}

func (h *RequestHandler) CreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	var body models.CreatePaymentRequestBody
	if !decode(w, r, &body) {
		return
	}
	req, err := h.Service.CreatePaymentRequest(r.Context(), currentUser(r), &body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

type paymentApprovalResponse struct {
	Request *models.PaymentRequest `json:"request"`
	Payment *models.Payment        `json:"payment"`
}

func (h *RequestHandler) ApprovePaymentRequest(w http.ResponseWriter, r *http.Request) {
	req, payment, err := h.Service.ApprovePaymentRequest(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, paymentApprovalResponse{Request: req, Payment: payment})
}

func (h *RequestHandler) RejectPaymentRequest(w http.ResponseWriter, r *http.Request) {
	body, ok := rejectBody(w, r)
	if !ok {
		return
	}
	req, err := h.Service.RejectPaymentRequest(r.Context(), currentUser(r), mux.Vars(r)["id"], body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

// rejectBody allows an empty body; the reason is optional
func rejectBody(w http.ResponseWriter, r *http.Request) (models.RejectRequestBody, bool) {
	var body models.RejectRequestBody
	if r.ContentLength == 0 {
		return body, true
	}
	return body, decode(w, r, &body)
}
