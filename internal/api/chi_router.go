// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/eatwhat/internal/middleware"
)

// Router binds handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mc uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mc *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mc),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("接口不存在")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		h := router.handler

		r.Get("/health", h.Health)
		r.Get("/ws", h.WebSocket)
		r.Get("/recommend", h.Recommend)

		r.Route("/foods", func(r chi.Router) {
			r.Get("/", h.ListFoods)
			r.Post("/", h.CreateFood)
			r.Post("/batch", h.BatchUpload)
			// static segment, matched before {id}
			r.Get("/ranking", h.Ranking)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", h.UpdateFood)
				r.Delete("/", h.DeleteFood)
				r.Get("/rating", h.GetRating)
				r.Post("/rating", h.RateFood)
				r.Delete("/rating", h.DeleteRating)
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", h.CatalogStats)
			r.Post("/recommendation", h.StartSession)
			r.Put("/recommendation", h.UpdateSession)
			r.Get("/recommendation", h.SessionStats)
			r.Post("/usage", h.RecordUsage)
			r.Get("/usage", h.UsageStats)
		})
	})

	return r
}
