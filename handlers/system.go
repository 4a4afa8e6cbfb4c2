// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/middleware"
	"github.com/mostafamaarof/AI-Survey/models"
)

// Build information, set with -ldflags "-X".
var (
	Version = "local-dev"
	Branch  = "unknown"
)

type SystemHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	startedAt time.Time
}

func NewSystemHandler(db *sql.DB, cfg cliparse.Config) *SystemHandler {
	return &SystemHandler{db: db, cfg: cfg, startedAt: time.Now().UTC()}
}

// GetVersion handles GET /api/version
func (h *SystemHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.VersionResponse{
		Version:    Version,
		Branch:     Branch,
		DeployedAt: h.startedAt,
	})
}

// GetDebug handles GET /api/debug
// Reports configuration presence, never secret values.
func (h *SystemHandler) GetDebug(w http.ResponseWriter, r *http.Request) {
	surveys, err := ListSurveys(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to list surveys", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := models.DebugResponse{
		Env: models.DebugEnv{
			DatabaseType:    h.cfg.DatabaseType,
			HasAdminKeySalt: h.cfg.AdminKeySalt != "",
			SessionStore:    "memory",
		},
		Counts: models.Counts{Surveys: len(surveys)},
	}
	if h.cfg.RedisURL != "" {
		resp.Env.SessionStore = "redis"
	}
	if h.cfg.SurveyID != "" {
		id := h.cfg.SurveyID
		resp.Env.SurveyIDEnv = &id
	}

	for i := range surveys {
		if surveys[i].IsActive {
			resp.ActiveSurvey = &surveys[i]
			break
		}
	}
	if len(surveys) > 0 {
		resp.NewestSurvey = &surveys[0]
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
