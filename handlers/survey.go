// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/middleware"
)

type SurveyHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSurveyHandler(db *sql.DB, cfg cliparse.Config) *SurveyHandler {
	return &SurveyHandler{db: db, cfg: cfg}
}

// GetSurvey handles GET /api/survey
// ?survey_id= overrides the configured survey.
func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID := r.URL.Query().Get("survey_id")
	if surveyID == "" {
		surveyID = h.cfg.SurveyID
	}

	payload, err := LoadSurvey(r.Context(), h.db, surveyID)
	if errors.Is(err, ErrNoActiveSurvey) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active survey")
		return
	}
	if err != nil {
		slog.Error("failed to load survey", "survey_id", surveyID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load survey")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, payload)
}
