package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stone-realestate/leadops/internal/infra/http/handlers"
	"github.com/stone-realestate/leadops/internal/infra/http/middleware"
)

type routes struct {
	allowedOrigins []string
	sessions       middleware.SessionResolver
	health         *handlers.HealthHandler
	auth           *handlers.AuthHandler
	capture        *handlers.CaptureHandler
	leads          *handlers.LeadHandler
	admins         *handlers.AdminHandler
	messages       *handlers.MessageHandler
	logger         *zap.Logger
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(rt.logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/capture", rt.capture.CaptureLead)
		r.Post("/auth/login", rt.auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(rt.sessions, rt.logger))

			r.Post("/auth/logout", rt.auth.Logout)
			r.Get("/profile", rt.auth.Profile)

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leads.List)
				r.Post("/refresh", rt.leads.Refresh)
				r.Get("/export", rt.leads.Export)
				r.Patch("/{id}", rt.leads.Update)
				r.Delete("/{id}", rt.leads.Delete)
				r.Get("/{id}/audit", rt.leads.Audit)
			})

			r.Route("/admins", func(r chi.Router) {
				r.Get("/", rt.admins.List)
				r.Post("/", rt.admins.Create)
				r.Post("/refresh", rt.admins.Refresh)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", rt.messages.List)
				r.Post("/refresh", rt.messages.Refresh)
				r.Patch("/{id}", rt.messages.Update)
			})
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
