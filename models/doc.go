// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Survey: survey metadata and its institution field mapping
  - Question: code, section, prompt, type and ordered options
  - Option: label shown to respondents and its semantic value
  - Institution: profile derived from the answers
  - SubmittedAnswer: one answer row on the wire

# Request Types

  - SubmitRequest: survey_id, institution, answers, token
  - CreateSessionRequest: survey_id, token
  - JumpRequest: step
  - OtherTextRequest: text

# Response Types

  - SurveyPayload: survey, questions
  - SubmitResponse: ok, respondent_id
  - StatsResponse: survey, totals, q7_breakdown
  - IssueTokenResponse: token, survey_id
  - VersionResponse, DebugResponse: deployment info
  - ErrorResponse: error, message

APIError is the error value for a rejected submission; its Message is what
the respondent sees.

# Constants

Question types:

	QTypeText     = "text"
	QTypeNumber   = "number"
	QTypeSingle   = "single"
	QTypeMulti    = "multi"
	QTypeLongText = "longtext"

The option value "other" (OtherValue) asks for a free-text companion field.
*/
package models
