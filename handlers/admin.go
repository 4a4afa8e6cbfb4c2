// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mostafamaarof/AI-Survey/auth"
	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/middleware"
	"github.com/mostafamaarof/AI-Survey/models"
)

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// IssueToken handles POST /api/admin/surveys/{id}/tokens
func (h *AdminHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	surveyID := r.PathValue("id")
	if surveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "survey_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(surveyID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var exists string
	err := h.db.QueryRowContext(r.Context(), "SELECT id FROM surveys WHERE id = $1", surveyID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to query survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	token, err := auth.GenerateInviteToken()
	if err != nil {
		slog.Error("failed to generate invite token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO invite_tokens (token, survey_id, created_at)
		VALUES ($1, $2, $3)
	`, token, surveyID, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert invite token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	slog.Info("invite token issued", "survey_id", surveyID)

	middleware.JSONResponse(w, http.StatusCreated, models.IssueTokenResponse{
		Token:    token,
		SurveyID: surveyID,
	})
}
