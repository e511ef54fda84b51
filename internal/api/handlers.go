package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"umrahdesk/internal/database"
	"umrahdesk/internal/metrics"
	"umrahdesk/internal/models"
	"umrahdesk/internal/service"
)

// GET /api/v1/departures
func (s *HTTPServer) handleDepartures(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("departures")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	departures, err := s.repo.ListUpcomingDepartures(r.Context(), time.Now())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	type departureView struct {
		ID            string    `json:"id"`
		PackageID     string    `json:"package_id"`
		DepartureDate time.Time `json:"departure_date"`
		ReturnDate    time.Time `json:"return_date"`
		Quota         int       `json:"quota"`
		SeatsLeft     int       `json:"seats_left"`
	}

	views := make([]departureView, 0, len(departures))
	for _, d := range departures {
		views = append(views, departureView{
			ID:            d.ID,
			PackageID:     d.PackageID,
			DepartureDate: d.DepartureDate,
			ReturnDate:    d.ReturnDate,
			Quota:         d.Quota,
			SeatsLeft:     d.SeatsLeft(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"departures": views})
}

// /api/v1/departures/{id}[/availability|/prices|/manifest]
func (s *HTTPServer) handleDeparture(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("departure")
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/departures/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "departure id is required")
		return
	}

	switch action {
	case "":
		s.getDeparture(w, r, id)
	case "availability":
		s.getAvailability(w, r, id)
	case "prices":
		s.getPrices(w, r, id)
	case "manifest":
		s.getManifest(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "unknown resource")
	}
}

func (s *HTTPServer) getDeparture(w http.ResponseWriter, r *http.Request, id string) {
	departure, err := s.repo.GetDeparture(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, departure)
}

func (s *HTTPServer) getAvailability(w http.ResponseWriter, r *http.Request, id string) {
	departure, err := s.repo.GetDeparture(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"departure_id": departure.ID,
		"quota":        departure.Quota,
		"booked_count": departure.BookedCount,
		"seats_left":   departure.SeatsLeft(),
	})
}

func (s *HTTPServer) getPrices(w http.ResponseWriter, r *http.Request, id string) {
	prices, err := s.repo.GetPackagePrices(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

// getManifest builds the xlsx passenger manifest and streams it back.
func (s *HTTPServer) getManifest(w http.ResponseWriter, r *http.Request, id string) {
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "exports are disabled")
		return
	}

	path, err := s.exporter.Export(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "manifest file unavailable")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeContent(w, r, filepath.Base(path), time.Now(), f)
}

// POST /api/v1/bookings
func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_submit")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	identity := identityFromRequest(r)
	if identity.AccountID == "" {
		writeError(w, http.StatusUnauthorized, "account identity is required")
		return
	}

	if !s.allowSubmission(r, identity.AccountID) {
		writeError(w, http.StatusTooManyRequests, "too many booking attempts, try again later")
		return
	}

	var input service.SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.bookings.Submit(r.Context(), identity, input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	metrics.IncBookingCreated()
	writeJSON(w, http.StatusCreated, result)
}

// allowSubmission applies the per-account booking rate limit. When the state
// store cannot answer, the request is allowed.
func (s *HTTPServer) allowSubmission(r *http.Request, accountID string) bool {
	if s.state == nil {
		return true
	}
	window := time.Duration(s.booking.RateLimitWindow) * time.Second
	ok, err := s.state.CheckRateLimit(r.Context(), accountID, s.booking.RateLimitRequests, window)
	if err != nil {
		s.logger.Warn().Err(err).Str("account_id", accountID).Msg("rate limit check failed, allowing request")
		return true
	}
	return ok
}

// /api/v1/bookings/{id}[/passengers|/confirm|/cancel|/payments]
func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking")
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "booking id is required")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getBooking(w, r, id)
	case action == "passengers" && r.Method == http.MethodGet:
		s.getBookingPassengers(w, r, id)
	case action == "confirm" && r.Method == http.MethodPost:
		s.changeStatus(w, r, id, models.StatusConfirmed)
	case action == "cancel" && r.Method == http.MethodPost:
		s.changeStatus(w, r, id, models.StatusCancelled)
	case action == "payments" && r.Method == http.MethodPost:
		s.recordPayment(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request, id string) {
	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) getBookingPassengers(w http.ResponseWriter, r *http.Request, id string) {
	passengers, err := s.bookings.GetBookingPassengers(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"passengers": passengers})
}

func (s *HTTPServer) changeStatus(w http.ResponseWriter, r *http.Request, id, status string) {
	var body struct {
		Version int64 `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch status {
	case models.StatusConfirmed:
		err = s.bookings.ConfirmBooking(r.Context(), id, body.Version)
	case models.StatusCancelled:
		err = s.bookings.CancelBooking(r.Context(), id, body.Version)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (s *HTTPServer) recordPayment(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Amount    int64  `json:"amount"`
		Method    string `json:"method"`
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := s.bookings.RecordPayment(r.Context(), id, body.Amount, body.Method, body.Reference)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// GET/DELETE /api/v1/wizard
func (s *HTTPServer) handleWizard(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard")
	identity := identityFromRequest(r)
	if identity.AccountID == "" {
		writeError(w, http.StatusUnauthorized, "account identity is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		draft, err := s.wizard.GetDraft(r.Context(), identity.AccountID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if draft == nil {
			writeError(w, http.StatusNotFound, "no wizard draft in progress")
			return
		}
		writeJSON(w, http.StatusOK, draft)
	case http.MethodDelete:
		if err := s.wizard.ClearDraft(r.Context(), identity.AccountID); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// POST /api/v1/wizard/{start|allocation|passengers|submit}
func (s *HTTPServer) handleWizardStep(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard_step")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	identity := identityFromRequest(r)
	if identity.AccountID == "" {
		writeError(w, http.StatusUnauthorized, "account identity is required")
		return
	}

	step := strings.TrimPrefix(r.URL.Path, "/api/v1/wizard/")
	switch step {
	case "start":
		var body struct {
			DepartureID string `json:"departure_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		draft, err := s.wizard.StartDraft(r.Context(), identity, body.DepartureID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, draft)

	case "allocation":
		var body models.RoomAllocation
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		draft, err := s.wizard.SetAllocation(r.Context(), identity.AccountID, body)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, draft)

	case "passengers":
		var body struct {
			Passengers []models.Passenger `json:"passengers"`
			Notes      string             `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		draft, err := s.wizard.SetPassengers(r.Context(), identity.AccountID, body.Passengers, body.Notes)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, draft)

	case "submit":
		s.submitDraft(w, r, identity)

	default:
		writeError(w, http.StatusNotFound, "unknown wizard step")
	}
}

// submitDraft turns the reviewed draft into a booking and clears it.
func (s *HTTPServer) submitDraft(w http.ResponseWriter, r *http.Request, identity models.Identity) {
	draft, err := s.wizard.GetDraft(r.Context(), identity.AccountID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if draft == nil {
		writeError(w, http.StatusNotFound, "no wizard draft in progress")
		return
	}

	if !s.allowSubmission(r, identity.AccountID) {
		writeError(w, http.StatusTooManyRequests, "too many booking attempts, try again later")
		return
	}

	input := service.SubmissionInput{
		DepartureID: draft.DepartureID,
		Passengers:  draft.Passengers,
		Notes:       draft.Notes,
	}
	if draft.Allocation.Total() > 0 {
		alloc := draft.Allocation
		input.Allocation = &alloc
	}

	result, err := s.bookings.Submit(r.Context(), identity, input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.wizard.ClearDraft(r.Context(), identity.AccountID); err != nil {
		s.logger.Warn().Err(err).Str("account_id", identity.AccountID).Msg("clear draft after submit failed")
	}

	metrics.IncBookingCreated()
	writeJSON(w, http.StatusCreated, result)
}

// writeServiceError maps domain errors to HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrQuotaExceeded):
		writeError(w, http.StatusConflict, "not enough seats left on this departure")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "booking was modified concurrently, reload and retry")
	case errors.Is(err, service.ErrCodeCollision):
		writeError(w, http.StatusServiceUnavailable, "could not allocate a booking code, retry")
	default:
		s.logger.Error().Err(err).Msg("internal API error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
