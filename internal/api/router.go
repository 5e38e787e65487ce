package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-onoff/internal/auth"
)

// healthCheckTimeout bounds each dependency probe of GET /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated
		r.Get("/health", s.handleHealth)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

		// Auth via single-use ticket, validated in handler
		wsPath := s.wsCfg.Path
		if wsPath == "" {
			wsPath = "/ws"
		}
		r.Get(wsPath, s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermDeviceRead))

				r.Get("/categories", s.handleListCategories)
				r.Route("/classes", func(r chi.Router) {
					r.Get("/", s.handleListClasses)
					r.Route("/{class}", func(r chi.Router) {
						r.Get("/", s.handleGetClass)
						r.Get("/icon.svg", s.handleClassIcon)
						r.Get("/schema", s.handleClassSchema)
					})
				})

				r.Get("/ports", s.handleListPorts)

				r.Get("/instances", s.handleListInstances)
				r.Get("/instances/{id}", s.handleGetInstance)
				r.Get("/instances/{id}/state", s.handleGetInstanceState)
				r.Get("/instances/{id}/history", s.handleGetInstanceHistory)
			})

			// Operate or automate; the permission used picks the command source.
			r.Put("/instances/{id}/state", s.handleSetInstanceState)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermDeviceConfigure))

				r.Post("/instances", s.handleCreateInstance)
				r.Post("/instances/reactivate", s.handleReactivate)
				r.Put("/instances/{id}", s.handleUpdateInstance)
				r.Delete("/instances/{id}", s.handleDeleteInstance)
			})

			r.With(s.requirePermission(auth.PermSystemRead)).Get("/audit", s.handleListAudit)
		})
	})

	return r
}

// handleHealth returns the server health status. Any failing dependency
// turns the response into 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.checks[name](ctx)
		cancel()
		if err != nil {
			status = "degraded"
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
		"ws_clients": s.Hub().ClientCount(),
	})
}
