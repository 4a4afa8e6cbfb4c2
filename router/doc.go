// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the AI survey API.

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, store, collector, limiter)

The write endpoints (submissions, session creation and token issuing) go
through the per-client rate limiter when one is given.

# Endpoints

Survey and submission:

	GET  /api/survey  - Active survey (or ?survey_id=) with its questions
	POST /api/submit  - Store a complete submission
	GET  /api/stats   - Response count and single-choice breakdown

Wizard sessions:

	POST /api/sessions                          - Start a wizard
	GET  /api/sessions/{id}                     - Current view
	PUT  /api/sessions/{id}/answers/{code}      - Set an answer
	PUT  /api/sessions/{id}/answers/{code}/other - Set "other" text
	POST /api/sessions/{id}/next                - Validate step and advance
	POST /api/sessions/{id}/back                - Previous step
	POST /api/sessions/{id}/jump                - Go to step
	POST /api/sessions/{id}/submit              - Validate all and submit

Admin (requires X-Admin-Key):

	POST /api/admin/surveys/{id}/tokens - Issue an invite token

Operations:

	GET /health, GET /metrics, GET /api/version, GET /api/debug

The caller wraps the mux with middleware.WithMetrics and middleware.CORS.
*/
package router
