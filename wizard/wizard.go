// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mostafamaarof/AI-Survey/answers"
	"github.com/mostafamaarof/AI-Survey/models"
)

var (
	ErrStepOutOfRange = errors.New("step out of range")
	ErrSubmitInFlight = errors.New("submission already in flight")
)

// FallbackMessage is shown when a failed submission carries no message.
const FallbackMessage = "Failed to submit"

// Submitter sends an assembled submission to the store.
type Submitter interface {
	Submit(ctx context.Context, req models.SubmitRequest) (models.SubmitResponse, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req models.SubmitRequest) (models.SubmitResponse, error)

func (f SubmitterFunc) Submit(ctx context.Context, req models.SubmitRequest) (models.SubmitResponse, error) {
	return f(ctx, req)
}

// Meta is the per-survey data a submission needs besides the answers.
type Meta struct {
	SurveyID string
	Token    *string
	Fields   models.InstitutionFields
}

// OutcomeStatus describes how a submit attempt ended.
type OutcomeStatus string

const (
	OutcomeInvalid   OutcomeStatus = "invalid"
	OutcomeSubmitted OutcomeStatus = "submitted"
	OutcomeFailed    OutcomeStatus = "failed"
)

type Outcome struct {
	Status       OutcomeStatus `json:"status"`
	RespondentID string        `json:"respondent_id,omitempty"`
	Message      string        `json:"message,omitempty"`
	// Step is the step the wizard is on after the attempt.
	Step int `json:"step"`
}

// Wizard drives one respondent through the steps of a survey. It is safe for
// concurrent use; only one submission may be in flight at a time.
type Wizard struct {
	mu        sync.Mutex
	questions []models.Question
	steps     []Step
	current   int
	state     answers.State
	inFlight  bool
}

// New starts a wizard on step 0 with an empty state.
func New(questions []models.Question) *Wizard {
	return &Wizard{
		questions: questions,
		steps:     BuildSteps(questions),
		state:     answers.NewState(),
	}
}

// Restore rebuilds a wizard from saved state. current is clamped to the
// valid step range.
func Restore(questions []models.Question, state answers.State, current int) *Wizard {
	w := New(questions)
	if state.Values == nil {
		state.Values = answers.Values{}
	}
	if state.Errors == nil {
		state.Errors = answers.Errors{}
	}
	w.state = state
	w.current = clamp(current, len(w.steps))
	return w
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (w *Wizard) Steps() []Step { return w.steps }

func (w *Wizard) Questions() []models.Question { return w.questions }

// Current returns the index of the current step.
func (w *Wizard) Current() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// CurrentStep returns the current step; ok is false for a survey without
// questions.
func (w *Wizard) CurrentStep() (Step, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.steps) == 0 {
		return Step{}, false
	}
	return w.steps[w.current], true
}

func (w *Wizard) State() answers.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Question returns the question with code.
func (w *Wizard) Question(code string) (models.Question, bool) {
	for _, q := range w.questions {
		if q.Code == code {
			return q, true
		}
	}
	return models.Question{}, false
}

func (w *Wizard) SetValue(code string, v answers.Value) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = w.state.SetValue(code, v)
}

func (w *Wizard) SetOtherText(code, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = w.state.SetOtherText(code, text)
}

// Progress counts answered questions over the whole survey.
func (w *Wizard) Progress() answers.Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return answers.ComputeProgress(w.questions, w.state.Values)
}

// Next validates the current step. When every question passes it moves
// forward, staying put on the last step, and returns true. Otherwise it
// records the step's errors and returns false.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.steps) == 0 {
		return false
	}

	errs := answers.Validate(w.steps[w.current].Questions, w.state.Values)
	w.state = w.state.WithErrors(errs)
	if !errs.OK() {
		return false
	}
	if w.current < len(w.steps)-1 {
		w.current++
	}
	return true
}

// Back moves to the previous step. Errors are left as they are.
func (w *Wizard) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == 0 {
		return false
	}
	w.current--
	return true
}

// JumpToStep moves to step j without validating.
func (w *Wizard) JumpToStep(j int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if j < 0 || j >= len(w.steps) {
		return fmt.Errorf("jump to %d of %d: %w", j, len(w.steps), ErrStepOutOfRange)
	}
	w.current = j
	return nil
}

// SubmitAttempt validates every question. On failure it records all errors,
// moves to the first step holding a failing question and returns
// OutcomeInvalid without calling s. Otherwise it assembles the request and
// hands it to s. A failed submission keeps every answer so the attempt can be
// repeated.
func (w *Wizard) SubmitAttempt(ctx context.Context, s Submitter, meta Meta) (Outcome, error) {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return Outcome{}, ErrSubmitInFlight
	}

	errs := answers.Validate(w.questions, w.state.Values)
	w.state = w.state.WithErrors(errs)
	if !errs.OK() {
		w.current = w.firstFailingStep(errs)
		out := Outcome{Status: OutcomeInvalid, Step: w.current}
		w.mu.Unlock()
		return out, nil
	}

	payload, err := answers.BuildAnswerPayload(w.questions, w.state.Values)
	if err != nil {
		out := Outcome{Status: OutcomeFailed, Message: err.Error(), Step: w.current}
		w.mu.Unlock()
		return out, nil
	}

	req := models.SubmitRequest{
		SurveyID: meta.SurveyID,
		Answers:  payload,
		Token:    meta.Token,
	}
	inst := answers.DeriveInstitution(meta.Fields, w.state.Values)
	req.Institution = &inst

	w.inFlight = true
	w.mu.Unlock()

	resp, err := s.Submit(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if err != nil {
		return Outcome{Status: OutcomeFailed, Message: FailureMessage(err), Step: w.current}, nil
	}
	return Outcome{Status: OutcomeSubmitted, RespondentID: resp.RespondentID, Step: w.current}, nil
}

func (w *Wizard) firstFailingStep(errs answers.Errors) int {
	for i, step := range w.steps {
		for _, q := range step.Questions {
			if errs.Failed(q.Code) {
				return i
			}
		}
	}
	return w.current
}

// FailureMessage returns the text shown for a failed submission: the
// server's message when there is one, FallbackMessage otherwise.
func FailureMessage(err error) string {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackMessage
}
