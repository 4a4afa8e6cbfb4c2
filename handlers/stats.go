// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/middleware"
	"github.com/mostafamaarof/AI-Survey/models"
)

type StatsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStatsHandler(db *sql.DB, cfg cliparse.Config) *StatsHandler {
	return &StatsHandler{db: db, cfg: cfg}
}

// CountResponses returns the number of respondents of a survey.
func CountResponses(ctx context.Context, db *sql.DB, surveyID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM respondents WHERE survey_id = $1`, surveyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// BreakdownSingleChoice counts answers per option of one question, in option
// order. Options nobody picked are included with a zero count.
func BreakdownSingleChoice(ctx context.Context, db *sql.DB, surveyID, questionCode string) ([]models.BreakdownRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT o.label, COUNT(a.id)
		FROM questions q
		JOIN question_options o ON o.question_id = q.id
		LEFT JOIN answers a ON a.option_id = o.id
		WHERE q.survey_id = $1 AND q.code = $2
		GROUP BY o.id, o.label, o.order_index
		ORDER BY o.order_index
	`, surveyID, questionCode)
	if err != nil {
		return nil, fmt.Errorf("breakdown %s: %w", questionCode, err)
	}
	defer rows.Close()

	breakdown := []models.BreakdownRow{}
	for rows.Next() {
		var row models.BreakdownRow
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		breakdown = append(breakdown, row)
	}
	return breakdown, rows.Err()
}

// GetStats handles GET /api/stats
// Aggregate failures degrade to zero and an empty breakdown.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := LoadSurvey(ctx, h.db, h.cfg.SurveyID)
	if errors.Is(err, ErrNoActiveSurvey) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No survey")
		return
	}
	if err != nil {
		slog.Error("failed to load survey for stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load survey")
		return
	}
	surveyID := payload.Survey.ID

	responses, err := CountResponses(ctx, h.db, surveyID)
	if err != nil {
		slog.Warn("response count unavailable", "survey_id", surveyID, "error", err)
		responses = 0
	}

	breakdown, err := BreakdownSingleChoice(ctx, h.db, surveyID, h.cfg.BreakdownCode)
	if err != nil {
		slog.Warn("breakdown unavailable", "survey_id", surveyID, "code", h.cfg.BreakdownCode, "error", err)
		breakdown = []models.BreakdownRow{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatsResponse{
		Survey:      payload.Survey,
		Totals:      models.Totals{Responses: responses},
		Q7Breakdown: breakdown,
	})
}
