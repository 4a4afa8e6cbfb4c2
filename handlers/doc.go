// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the AI survey API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - SurveyHandler: Active survey with its questions and options
  - SubmitHandler: Direct submissions of a complete answer set
  - StatsHandler: Response count and single-choice breakdown
  - SessionHandler: Server-side wizard sessions
  - AdminHandler: Invite token issuing
  - SystemHandler: Version, debug and health endpoints

Handlers are created via constructor functions:

	surveyHandler := handlers.NewSurveyHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg, store, submitService, collector)

# Submission

SubmitService stores a submission in one transaction: institution,
respondent and answer rows, and the invite token is marked used. It checks
that the survey exists, that a given token is unused and belongs to the
survey, and that every answer points at a question and option of that
survey. Rejections are *models.APIError values whose message is shown to the
respondent:

	"Missing payload"
	"Invalid or used token"
	"Unknown survey"
	"Answer does not belong to this survey"

SubmitService also implements wizard.Submitter, so session submissions go
through the same path. The client IP hash and user agent travel on the
context (WithClientInfo).

# Wizard Sessions

A session holds one respondent's answers and current step between requests:

	POST /api/sessions                    → CreateSession
	PUT  /api/sessions/{id}/answers/{code} → SetAnswer (bare JSON value)
	POST /api/sessions/{id}/next          → Next (validates the step)
	POST /api/sessions/{id}/submit        → Submit (validates everything)

Submit takes the store's per-session lock first; a second request while one
is running gets 409. Validation failures and rejected submissions are
reported in the outcome and keep every answer.

# Admin Authentication

Token issuing requires the X-Admin-Key header, an HMAC of the survey ID
(see auth.GenerateAdminKey).
*/
package handlers
