package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/fleet-admin-be/internal/api/handlers"
	"github.com/isdelr/fleet-admin-be/internal/auth"
	"github.com/isdelr/fleet-admin-be/internal/config"
	"github.com/isdelr/fleet-admin-be/internal/services"
	"github.com/isdelr/fleet-admin-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	hub *websocket.Hub,
	db handlers.Pinger,
	verifier auth.TokenVerifier,
	authService services.AuthServiceProvider,
	itemService services.ItemServiceProvider,
	vehicleService services.VehicleServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins)

	requireToken := auth.Middleware(verifier)

	r.Get("/healthz", healthHandler.Check)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireToken).Get("/me", authHandler.GetMe)
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.RequireAuth {
			r.Use(requireToken)
		} else {
			log.Warn().Msg("API authentication is disabled")
		}

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.GetAll)
			r.Post("/", itemHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", itemHandler.Get)
				r.Put("/", itemHandler.Update)
				r.Delete("/", itemHandler.Delete)
			})
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", vehicleHandler.GetAll)
			r.Post("/", vehicleHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", vehicleHandler.Get)
				r.Put("/", vehicleHandler.Update)
				r.Delete("/", vehicleHandler.Delete)
			})
		})

		r.Get("/events", eventHandler.GetRecent)
		r.Get("/events/stream", wsHandler.Serve)
	})

	return r
}

// requestLogger logs every request through the global zerolog logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		}()

		next.ServeHTTP(ww, r)
	})
}
