// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/affinity/internal/auth"
	"github.com/tomtom215/affinity/internal/authz"
	"github.com/tomtom215/affinity/internal/middleware"
)

// Router wires handlers to routes behind the middleware stack.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. Authentication and authorization failures are
// rendered with the API error envelope.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware) *Router {
	authn.SetErrorWriter(WriteError)
	authzMW.SetErrorWriter(WriteError)
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, authn: authn, authz: authzMW, chiMiddleware: chiMW}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authn.Authenticate)

		require := router.authz.Require

		r.With(require(authz.ObjectRecommendations, authz.ActionRead)).Group(func(r chi.Router) {
			r.Get("/recommendations/{actorID}", router.handler.Recommendations)
			r.Get("/users/{actorID}/similar", router.handler.SimilarUsers)
			r.Get("/content/{actorID}/{itemID}", router.handler.ContentSimilarity)
		})

		r.With(require(authz.ObjectTeams, authz.ActionMatch)).Post("/teams/match", router.handler.TeamMatch)

		r.With(require(authz.ObjectCatalog, authz.ActionWrite)).Group(func(r chi.Router) {
			r.Put("/profiles/{actorID}", router.handler.PutProfile)
			r.Put("/items/{itemID}", router.handler.PutItem)
		})

		r.With(require(authz.ObjectInteractions, authz.ActionWrite)).Group(func(r chi.Router) {
			r.Post("/interactions", router.handler.PostInteraction)
			r.Post("/interactions/batch", router.handler.PostInteractionBatch)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(require(authz.ObjectAdmin, authz.ActionManage))
			r.Post("/train", router.handler.AdminTrain)
			r.Get("/status", router.handler.AdminStatus)
		})
	})

	return r
}
