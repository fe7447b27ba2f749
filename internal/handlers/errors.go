package handlers

import (
	"errors"
	"net/http"

	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/internal/store"
	"fleet-backend/pkg/utils"

	log "github.com/sirupsen/logrus"
)

const confirmMessage = "Confirmation required: repeat the request with ?confirm=true"

// statusFor maps service and store errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrTOTPRequired),
		errors.Is(err, services.ErrInvalidTOTPCode),
		errors.Is(err, services.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrAccountSuspended),
		errors.Is(err, services.ErrFeatureDisabled):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, services.ErrNoActiveTrip):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, models.ErrRequestResolved),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadySettled),
		errors.Is(err, services.ErrNothingToSettle),
		errors.Is(err, services.ErrNoTOTPSecret),
		errors.Is(err, services.ErrTOTPNotEnabled):
		return http.StatusConflict
	case errors.Is(err, services.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithField("path", r.URL.Path).Errorf("[API] %v", err)
		utils.Error(w, status, "Internal server error")
		return
	}
	utils.Error(w, status, err.Error())
}

// confirmed answers 428 unless the destructive request carries ?confirm=true
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") == "true" {
		return true
	}
	utils.Error(w, http.StatusPreconditionRequired, confirmMessage)
	return false
}

// decode answers 400 on a malformed body
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.Decode(r, dst); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// currentUser is only called behind Authenticate, which always sets the user
func currentUser(r *http.Request) *models.User {
	user, _ := middleware.GetUserFromContext(r.Context())
	return user
}
