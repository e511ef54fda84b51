package api

import (
	"encoding/json"
	"net/http"
	"time"

	"umrahdesk/internal/models"

	"github.com/rs/zerolog"
)

const (
	headerAccountID = "x-account-id"
	headerEmail     = "x-account-email"
)

// identityFromRequest reads the caller identity set by the auth proxy in
// front of the API. An empty AccountID means the caller is anonymous.
func identityFromRequest(r *http.Request) models.Identity {
	return models.Identity{
		AccountID: r.Header.Get(headerAccountID),
		Email:     r.Header.Get(headerEmail),
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
