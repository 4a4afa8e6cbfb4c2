// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/handlers"
	"github.com/mostafamaarof/AI-Survey/metrics"
	"github.com/mostafamaarof/AI-Survey/middleware"
	"github.com/mostafamaarof/AI-Survey/sessions"
)

// NewRouter registers every endpoint. limiter guards the write endpoints and
// may be nil.
func NewRouter(db *sql.DB, cfg cliparse.Config, store sessions.Store, m *metrics.Collector, limiter *middleware.RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	submitService := handlers.NewSubmitService(db)
	surveyHandler := handlers.NewSurveyHandler(db, cfg)
	submitHandler := handlers.NewSubmitHandler(submitService, cfg, m)
	statsHandler := handlers.NewStatsHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg, store, submitService, m)
	adminHandler := handlers.NewAdminHandler(db, cfg)
	systemHandler := handlers.NewSystemHandler(db, cfg)

	// Health check and metrics
	mux.HandleFunc("GET /health", systemHandler.Health)
	mux.Handle("GET /metrics", m.Handler())

	// Survey definition, direct submission and aggregates
	mux.HandleFunc("GET /api/survey", middleware.WithLogging(surveyHandler.GetSurvey))
	mux.HandleFunc("POST /api/submit", middleware.WithLogging(limiter.Limit(submitHandler.Submit)))
	mux.HandleFunc("GET /api/stats", middleware.WithLogging(statsHandler.GetStats))

	// Wizard sessions
	mux.HandleFunc("POST /api/sessions", middleware.WithLogging(limiter.Limit(sessionHandler.CreateSession)))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("PUT /api/sessions/{id}/answers/{code}", middleware.WithLogging(sessionHandler.SetAnswer))
	mux.HandleFunc("PUT /api/sessions/{id}/answers/{code}/other", middleware.WithLogging(sessionHandler.SetOtherText))
	mux.HandleFunc("POST /api/sessions/{id}/next", middleware.WithLogging(sessionHandler.Next))
	mux.HandleFunc("POST /api/sessions/{id}/back", middleware.WithLogging(sessionHandler.Back))
	mux.HandleFunc("POST /api/sessions/{id}/jump", middleware.WithLogging(sessionHandler.Jump))
	mux.HandleFunc("POST /api/sessions/{id}/submit", middleware.WithLogging(limiter.Limit(sessionHandler.Submit)))

	// Admin operations
	mux.HandleFunc("POST /api/admin/surveys/{id}/tokens", middleware.WithLogging(limiter.Limit(adminHandler.IssueToken)))

	// Deployment info
	mux.HandleFunc("GET /api/version", middleware.WithLogging(systemHandler.GetVersion))
	mux.HandleFunc("GET /api/debug", middleware.WithLogging(systemHandler.GetDebug))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("AI survey API v1"))
	})

	return mux
}
