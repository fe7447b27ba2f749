package middleware

import (
	"context"
	"net/http"

	"fleet-backend/internal/models"

	log "github.com/sirupsen/logrus"
)

type Feature string

const (
	FeatureChat     Feature = "chat"
	FeatureReports  Feature = "reports"
	FeaturePayments Feature = "payments"
)

// FeatureSource is satisfied by the settings service
type FeatureSource interface {
	Features(ctx context.Context) (models.Features, error)
}

// RequireFeature answers 403 while an admin has the feature switched off
func RequireFeature(src FeatureSource, feature Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			features, err := src.Features(r.Context())
			if err != nil {
				log.Printf("[Features] Failed to read feature toggles: %v", err)
				http.Error(w, "Failed to read settings", http.StatusInternalServerError)
				return
			}
			if !enabled(features, feature) {
				http.Error(w, "Feature disabled: "+string(feature), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enabled(f models.Features, feature Feature) bool {
	switch feature {
	case FeatureChat:
		return f.Chat
	case FeatureReports:
		return f.Reports
	case FeaturePayments:
		return f.Payments
	}
	return false
}
