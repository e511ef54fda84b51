package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"umrahdesk/internal/config"
	"umrahdesk/internal/domain"
	"umrahdesk/internal/export"
	"umrahdesk/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking API: departures, the wizard, submissions
// and back-office operations.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings *service.BookingService
	wizard   *service.WizardService
	repo     domain.Repository
	state    domain.StateRepository
	exporter *export.ManifestExporter
	booking  config.BookingConfig
	logger   *zerolog.Logger
	server   *http.Server
	auth     *HTTPAuth
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookingCfg config.BookingConfig,
	bookings *service.BookingService,
	wizard *service.WizardService,
	repo domain.Repository,
	state domain.StateRepository,
	exporter *export.ManifestExporter,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		booking:  bookingCfg,
		bookings: bookings,
		wizard:   wizard,
		repo:     repo,
		state:    state,
		exporter: exporter,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/departures", srv.handleDepartures)
	mux.HandleFunc("/api/v1/departures/", srv.handleDeparture)
	mux.HandleFunc("/api/v1/bookings", srv.handleSubmit)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBooking)
	mux.HandleFunc("/api/v1/wizard", srv.handleWizard)
	mux.HandleFunc("/api/v1/wizard/", srv.handleWizardStep)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := loggingMiddleware(logger, srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
