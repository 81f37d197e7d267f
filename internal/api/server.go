package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"barberia/internal/config"
	"barberia/internal/logging"
	"barberia/internal/models"
	"barberia/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps groups the services the HTTP layer calls.
type Deps struct {
	Reservations *service.ReservationService
	Catalog      *service.CatalogService
	Discounts    *service.DiscountService
	Auth         *service.AuthService
	Settings     *service.SettingsService
	DB           Pinger
}

// Server exposes the shop REST API.
type Server struct {
	cfg     *config.Config
	deps    Deps
	limiter *ipLimiter
	server  *http.Server
	logger  zerolog.Logger
}

func NewServer(cfg *config.Config, deps Deps, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		deps:    deps,
		limiter: newIPLimiter(cfg.HTTP.RateLimit),
		logger:  logging.Component(logger, "http"),
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID, s.accessLog, s.recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/barbers", s.handlePublicBarbers)
		r.Get("/services", s.handlePublicServices)
		r.Get("/products", s.handlePublicProducts)
		r.Get("/offers", s.handlePublicOffers)
		r.Get("/settings", s.handleListSettings)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Post("/reservations", s.handleCreateReservation)
			r.Post("/reservations/from-cart", s.handleCreateFromCart)
			r.Post("/discounts/validate", s.handleValidateDiscount)
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/refresh", s.handleRefresh)
		})
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/reservations/occupied", s.handleOccupied)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/me", s.handleMe)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(models.RoleAdmin, models.RoleStaff))
				r.Get("/reservations", s.handleListReservations)
				r.Get("/reservations/export", s.handleExportReservations)
				r.Get("/reservations/{id}", s.handleGetReservation)
				r.Put("/reservations/{id}/status", s.handleUpdateStatus)
				r.Put("/reservations/{id}/items", s.handleReplaceItems)
				r.Put("/reservations/{id}/delivery", s.handleUpdateDelivery)
				r.Delete("/reservations/{id}", s.handleDeleteReservation)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(models.RoleAdmin))
				s.adminRoutes(r)
			})
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   s.cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(r)
}

func (s *Server) adminRoutes(r chi.Router) {
	r.Route("/barbers", func(r chi.Router) {
		r.Get("/", s.handleAdminListBarbers)
		r.Post("/", s.handleAdminCreateBarber)
		r.Get("/{id}", s.handleAdminGetBarber)
		r.Put("/{id}", s.handleAdminUpdateBarber)
		r.Delete("/{id}", s.handleAdminDeleteBarber)
	})
	r.Route("/services", func(r chi.Router) {
		r.Get("/", s.handleAdminListServices)
		r.Post("/", s.handleAdminCreateService)
		r.Get("/{id}", s.handleAdminGetService)
		r.Put("/{id}", s.handleAdminUpdateService)
		r.Delete("/{id}", s.handleAdminDeleteService)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handleAdminListProducts)
		r.Post("/", s.handleAdminCreateProduct)
		r.Get("/{id}", s.handleAdminGetProduct)
		r.Put("/{id}", s.handleAdminUpdateProduct)
		r.Delete("/{id}", s.handleAdminDeleteProduct)
	})
	r.Route("/offers", func(r chi.Router) {
		r.Get("/", s.handleAdminListOffers)
		r.Post("/", s.handleAdminCreateOffer)
		r.Get("/{id}", s.handleAdminGetOffer)
		r.Put("/{id}", s.handleAdminUpdateOffer)
		r.Delete("/{id}", s.handleAdminDeleteOffer)
	})
	r.Route("/discounts", func(r chi.Router) {
		r.Get("/", s.handleAdminListDiscounts)
		r.Post("/", s.handleAdminCreateDiscount)
		r.Get("/{id}", s.handleAdminGetDiscount)
		r.Put("/{id}", s.handleAdminUpdateDiscount)
		r.Delete("/{id}", s.handleAdminDeleteDiscount)
	})
	r.Put("/settings/{key}", s.handleUpsertSetting)
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.PingContext(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Error: &errorBody{Message: "database unavailable"}})
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ready"})
}
