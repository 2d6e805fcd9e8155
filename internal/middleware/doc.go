// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: X-Request-ID propagation plus request and correlation ids in
    the logging context
  - PrometheusMetrics: request counter, latency histogram and in-flight gauge,
    labelled by chi route pattern
  - AccessLog: one zerolog line per request

All three are func(http.Handler) http.Handler and are installed with
chi.Router.Use, after chi's RealIP and Recoverer:

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
*/
package middleware
