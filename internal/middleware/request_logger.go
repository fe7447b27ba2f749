package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger logs every request with its latency and the authenticated user, if any.
// A request id is echoed back, generated when the client did not send one.
func RequestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			// The auth middleware runs deeper in the chain and fills this in
			info := &requestInfo{userID: "anonymous"}
			r = r.WithContext(withRequestInfo(r.Context(), info))

			wrapped := &statusRecorder{ResponseWriter: w, statusCode: 200}
			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if raw := r.URL.RawQuery; raw != "" {
				path = path + "?" + raw
			}

			entry := logger.WithFields(logrus.Fields{
				"status":     wrapped.statusCode,
				"latency":    time.Since(start).String(),
				"client_ip":  clientIP(r),
				"method":     r.Method,
				"path":       path,
				"user_id":    info.userID,
				"request_id": requestID,
			})

			if wrapped.statusCode >= 500 {
				entry.Error("Server error")
			} else if wrapped.statusCode >= 400 {
				entry.Warn("Client error")
			} else {
				entry.Info("Request processed")
			}
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
