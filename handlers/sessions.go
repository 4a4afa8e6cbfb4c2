// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mostafamaarof/AI-Survey/answers"
	"github.com/mostafamaarof/AI-Survey/auth"
	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/metrics"
	"github.com/mostafamaarof/AI-Survey/middleware"
	"github.com/mostafamaarof/AI-Survey/models"
	"github.com/mostafamaarof/AI-Survey/sessions"
	"github.com/mostafamaarof/AI-Survey/wizard"
)

// SessionView is what every session endpoint returns.
type SessionView struct {
	ID           string           `json:"id"`
	Survey       models.Survey    `json:"survey"`
	Steps        []wizard.Step    `json:"steps"`
	Current      int              `json:"current"`
	State        answers.State    `json:"state"`
	Progress     answers.Progress `json:"progress"`
	Submitted    bool             `json:"submitted"`
	RespondentID string           `json:"respondent_id,omitempty"`
	// Moved reports whether the last next/back request changed step.
	Moved   *bool           `json:"moved,omitempty"`
	Outcome *wizard.Outcome `json:"outcome,omitempty"`
}

type SessionHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	store     sessions.Store
	submitter wizard.Submitter
	metrics   *metrics.Collector
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config, store sessions.Store, submitter wizard.Submitter, m *metrics.Collector) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg, store: store, submitter: submitter, metrics: m}
}

func viewOf(s *sessions.Session, wz *wizard.Wizard) SessionView {
	return SessionView{
		ID:           s.ID,
		Survey:       s.Survey.Survey,
		Steps:        wz.Steps(),
		Current:      wz.Current(),
		State:        wz.State(),
		Progress:     wz.Progress(),
		Submitted:    s.Submitted,
		RespondentID: s.RespondentID,
	}
}

// load fetches the session named in the path and restores its wizard. It
// writes the error response itself and returns ok=false on failure.
func (h *SessionHandler) load(w http.ResponseWriter, r *http.Request) (*sessions.Session, *wizard.Wizard, bool) {
	id := r.PathValue("id")
	s, err := h.store.Get(r.Context(), id)
	if errors.Is(err, sessions.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return nil, nil, false
	}
	if err != nil {
		slog.Error("failed to load session", "session_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load session")
		return nil, nil, false
	}
	return s, wizard.Restore(s.Survey.Questions, s.State, s.Current), true
}

// loadOpen is load for the editing endpoints; submitted sessions are frozen.
func (h *SessionHandler) loadOpen(w http.ResponseWriter, r *http.Request) (*sessions.Session, *wizard.Wizard, bool) {
	s, wz, ok := h.load(w, r)
	if !ok {
		return nil, nil, false
	}
	if s.Submitted {
		middleware.ErrorResponse(w, http.StatusConflict, "Session already submitted")
		return nil, nil, false
	}
	return s, wz, true
}

func (h *SessionHandler) save(w http.ResponseWriter, r *http.Request, s *sessions.Session, wz *wizard.Wizard) bool {
	s.State = wz.State()
	s.Current = wz.Current()
	err := h.store.Save(r.Context(), s)
	if errors.Is(err, sessions.ErrSubmitted) {
		middleware.ErrorResponse(w, http.StatusConflict, "Session already submitted")
		return false
	}
	if err != nil {
		slog.Error("failed to save session", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save session")
		return false
	}
	return true
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	if req.Token != nil && *req.Token != "" {
		if err := auth.ValidateTokenFormat(*req.Token); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidToken)
			return
		}
	}

	surveyID := req.SurveyID
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

	s := &sessions.Session{
		ID:        auth.NewID(),
		Survey:    *payload,
		Token:     req.Token,
		State:     answers.NewState(),
		CreatedAt: time.Now().UTC(),
	}
	wz := wizard.New(payload.Questions)
	if !h.save(w, r, s, wz) {
		return
	}

	slog.Info("session created", "session_id", s.ID, "survey_id", payload.Survey.ID)

	middleware.JSONResponse(w, http.StatusCreated, viewOf(s, wz))
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, wz, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, viewOf(s, wz))
}

// SetAnswer handles PUT /api/sessions/{id}/answers/{code}
// The body is the bare answer value; null clears it.
func (h *SessionHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	s, wz, ok := h.loadOpen(w, r)
	if !ok {
		return
	}

	code := r.PathValue("code")
	q, found := wz.Question(code)
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown question")
		return
	}

	var raw json.RawMessage
	if err := middleware.ParseJSONBody(r, &raw); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	v, err := answers.ParseValue(q.QType, raw)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := answers.CheckOptions(q, v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown option")
		return
	}

	wz.SetValue(code, v)
	if !h.save(w, r, s, wz) {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, viewOf(s, wz))
}

// SetOtherText handles PUT /api/sessions/{id}/answers/{code}/other
func (h *SessionHandler) SetOtherText(w http.ResponseWriter, r *http.Request) {
	s, wz, ok := h.loadOpen(w, r)
	if !ok {
		return
	}

	code := r.PathValue("code")
	q, found := wz.Question(code)
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown question")
		return
	}
	if !q.HasOtherOption() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Question has no other option")
		return
	}

	var req models.OtherTextRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	wz.SetOtherText(code, req.Text)
	if !h.save(w, r, s, wz) {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, viewOf(s, wz))
}

// Next handles POST /api/sessions/{id}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "next", (*wizard.Wizard).Next)
}

// Back handles POST /api/sessions/{id}/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "back", (*wizard.Wizard).Back)
}

func (h *SessionHandler) move(w http.ResponseWriter, r *http.Request, action string, step func(*wizard.Wizard) bool) {
	s, wz, ok := h.loadOpen(w, r)
	if !ok {
		return
	}

	moved := step(wz)
	h.metrics.Transition(action, moved)

	if !h.save(w, r, s, wz) {
		return
	}
	view := viewOf(s, wz)
	view.Moved = &moved
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Jump handles POST /api/sessions/{id}/jump
func (h *SessionHandler) Jump(w http.ResponseWriter, r *http.Request) {
	s, wz, ok := h.loadOpen(w, r)
	if !ok {
		return
	}

	var req models.JumpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := wz.JumpToStep(req.Step)
	h.metrics.Transition("jump", err == nil)
	if errors.Is(err, wizard.ErrStepOutOfRange) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Step out of range")
		return
	}

	if !h.save(w, r, s, wz) {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, viewOf(s, wz))
}

// Submit handles POST /api/sessions/{id}/submit
// Validation failures and rejected submissions are reported in the outcome
// with status 200; the session keeps every answer either way.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, _, ok := h.loadOpen(w, r)
	if !ok {
		return
	}

	// Step 1: Take the store-level lock so a parallel request cannot submit twice
	release, err := h.store.AcquireSubmit(ctx, s.ID)
	if errors.Is(err, sessions.ErrSubmitLocked) {
		middleware.ErrorResponse(w, http.StatusConflict, "Submission already in progress")
		return
	}
	if err != nil {
		slog.Error("failed to lock session", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit")
		return
	}
	defer release()

	// Step 2: Re-read under the lock; the first request may have finished
	s, wz, ok := h.loadOpen(w, r)
	if !ok {
		return
	}

	// Step 3: Validate, assemble and hand over to the submitter
	meta := wizard.Meta{
		SurveyID: s.Survey.Survey.ID,
		Token:    s.Token,
		Fields:   InstitutionFieldsOf(s.Survey.Survey),
	}
	ctx = WithClientInfo(ctx, ClientInfoFromRequest(r, h.cfg.IPHashSalt))

	out, err := wz.SubmitAttempt(ctx, h.submitter, meta)
	if errors.Is(err, wizard.ErrSubmitInFlight) {
		middleware.ErrorResponse(w, http.StatusConflict, "Submission already in progress")
		return
	}
	if err != nil {
		slog.Error("submit attempt failed", "session_id", s.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit")
		return
	}

	if out.Status != wizard.OutcomeInvalid {
		h.metrics.Submission("session", out.Status == wizard.OutcomeSubmitted)
	}

	// Step 4: Persist the outcome
	if out.Status == wizard.OutcomeSubmitted {
		s.Submitted = true
		s.RespondentID = out.RespondentID
	}
	if !h.save(w, r, s, wz) {
		return
	}

	slog.Info("session submit attempt",
		"session_id", s.ID,
		"status", out.Status,
		"respondent_id", out.RespondentID,
	)

	view := viewOf(s, wz)
	view.Outcome = &out
	middleware.JSONResponse(w, http.StatusOK, view)
}
