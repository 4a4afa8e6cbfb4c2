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
	"strings"
	"time"

	"github.com/mostafamaarof/AI-Survey/auth"
	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/metrics"
	"github.com/mostafamaarof/AI-Survey/middleware"
	"github.com/mostafamaarof/AI-Survey/models"
)

// Client-facing rejection messages.
const (
	msgMissingPayload = "Missing payload"
	msgInvalidToken   = "Invalid or used token"
	msgUnknownSurvey  = "Unknown survey"
	msgForeignAnswer  = "Answer does not belong to this survey"
)

// ClientInfo identifies where a submission came from.
type ClientInfo struct {
	IPHash    string
	UserAgent string
}

type clientInfoKey struct{}

// WithClientInfo attaches info to ctx for SubmitService.Submit.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

func clientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}

func badRequest(msg string) *models.APIError {
	return &models.APIError{Status: http.StatusBadRequest, Message: msg}
}

// SubmitService stores submissions. It is the in-process wizard.Submitter.
type SubmitService struct {
	db *sql.DB
}

func NewSubmitService(db *sql.DB) *SubmitService {
	return &SubmitService{db: db}
}

// Submit stores req using the ClientInfo carried by ctx.
func (s *SubmitService) Submit(ctx context.Context, req models.SubmitRequest) (models.SubmitResponse, error) {
	respondentID, err := s.Store(ctx, req, clientInfoFrom(ctx))
	if err != nil {
		return models.SubmitResponse{}, err
	}
	return models.SubmitResponse{OK: true, RespondentID: respondentID}, nil
}

// Store validates and saves one submission in a single transaction.
// Rejections are returned as *models.APIError.
func (s *SubmitService) Store(ctx context.Context, req models.SubmitRequest, info ClientInfo) (string, error) {
	if req.SurveyID == "" || req.Answers == nil {
		return "", badRequest(msgMissingPayload)
	}

	var token string
	if req.Token != nil && *req.Token != "" {
		token = *req.Token
		if err := auth.ValidateTokenFormat(token); err != nil {
			return "", badRequest(msgInvalidToken)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin submission: %w", err)
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM surveys WHERE id = $1`, req.SurveyID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return "", badRequest(msgUnknownSurvey)
	}
	if err != nil {
		return "", fmt.Errorf("check survey: %w", err)
	}

	// Anonymous submissions skip the token lookup entirely
	if token != "" {
		if err := checkToken(ctx, tx, token, req.SurveyID); err != nil {
			return "", err
		}
	}

	if err := checkMembership(ctx, tx, req.SurveyID, req.Answers); err != nil {
		return "", err
	}

	now := time.Now().UTC()

	var institutionID *string
	if inst := req.Institution; inst != nil && strings.TrimSpace(inst.Name) != "" {
		id := auth.NewID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO institutions (id, name, country, employees_total, employees_it, employees_it_audit, has_ai_unit, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, strings.TrimSpace(inst.Name), inst.Country, inst.EmployeesTotal, inst.EmployeesIT, inst.EmployeesITAudit, inst.HasAIUnit, now)
		if err != nil {
			return "", fmt.Errorf("insert institution: %w", err)
		}
		institutionID = &id
	}

	var tokenCol *string
	if token != "" {
		tokenCol = &token
	}

	respondentID := auth.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO respondents (id, survey_id, institution_id, ip_hash, user_agent, token, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, respondentID, req.SurveyID, institutionID, info.IPHash, info.UserAgent, tokenCol, now)
	if err != nil {
		return "", fmt.Errorf("insert respondent: %w", err)
	}

	for _, a := range req.Answers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO answers (id, respondent_id, question_id, option_id, value_text, value_number)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, auth.NewID(), respondentID, a.QuestionID, a.OptionID, a.ValueText, a.ValueNumber)
		if err != nil {
			return "", fmt.Errorf("insert answer: %w", err)
		}
	}

	if token != "" {
		res, err := tx.ExecContext(ctx, `
			UPDATE invite_tokens SET used_at = $1
			WHERE token = $2 AND used_at IS NULL
		`, now, token)
		if err != nil {
			return "", fmt.Errorf("mark token used: %w", err)
		}
		// a concurrent submission may have taken the token since checkToken
		if n, err := res.RowsAffected(); err == nil && n != 1 {
			return "", badRequest(msgInvalidToken)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit submission: %w", err)
	}

	slog.Info("submission stored",
		"survey_id", req.SurveyID,
		"respondent_id", respondentID,
		"answers", len(req.Answers),
		"with_token", token != "",
	)
	return respondentID, nil
}

func checkToken(ctx context.Context, tx *sql.Tx, token, surveyID string) error {
	var tokenSurvey string
	var usedAt sql.NullTime
	err := tx.QueryRowContext(ctx, `
		SELECT survey_id, used_at FROM invite_tokens WHERE token = $1
	`, token).Scan(&tokenSurvey, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return badRequest(msgInvalidToken)
	}
	if err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	if usedAt.Valid || tokenSurvey != surveyID {
		return badRequest(msgInvalidToken)
	}
	return nil
}

// checkMembership rejects answers pointing at questions of another survey or
// options of another question.
func checkMembership(ctx context.Context, tx *sql.Tx, surveyID string, answers []models.SubmittedAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT q.id, o.id
		FROM questions q
		LEFT JOIN question_options o ON o.question_id = q.id
		WHERE q.survey_id = $1
	`, surveyID)
	if err != nil {
		return fmt.Errorf("load survey questions: %w", err)
	}
	defer rows.Close()

	questions := make(map[string]bool)
	optionOwner := make(map[string]string)
	for rows.Next() {
		var questionID string
		var optionID sql.NullString
		if err := rows.Scan(&questionID, &optionID); err != nil {
			return fmt.Errorf("scan survey questions: %w", err)
		}
		questions[questionID] = true
		if optionID.Valid {
			optionOwner[optionID.String] = questionID
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load survey questions: %w", err)
	}

	for _, a := range answers {
		if !questions[a.QuestionID] {
			return badRequest(msgForeignAnswer)
		}
		if a.OptionID != nil && optionOwner[*a.OptionID] != a.QuestionID {
			return badRequest(msgForeignAnswer)
		}
	}
	return nil
}

type SubmitHandler struct {
	service *SubmitService
	cfg     cliparse.Config
	metrics *metrics.Collector
}

func NewSubmitHandler(service *SubmitService, cfg cliparse.Config, m *metrics.Collector) *SubmitHandler {
	return &SubmitHandler{service: service, cfg: cfg, metrics: m}
}

// ClientInfoFromRequest hashes the caller's IP and reads its user agent.
func ClientInfoFromRequest(r *http.Request, salt string) ClientInfo {
	return ClientInfo{
		IPHash:    auth.HashIP(middleware.GetClientIP(r), salt),
		UserAgent: r.UserAgent(),
	}
}

// Submit handles POST /api/submit
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	respondentID, err := h.service.Store(r.Context(), req, ClientInfoFromRequest(r, h.cfg.IPHashSalt))
	h.metrics.Submission("direct", err == nil)
	if err != nil {
		writeSubmitError(w, err, req.SurveyID)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponse{OK: true, RespondentID: respondentID})
}

func writeSubmitError(w http.ResponseWriter, err error, surveyID string) {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		middleware.ErrorResponse(w, apiErr.Status, apiErr.Message)
		return
	}
	slog.Error("failed to store submission", "survey_id", surveyID, "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save response")
}
