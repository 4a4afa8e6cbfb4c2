// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mostafamaarof/AI-Survey/models"
	"github.com/mostafamaarof/AI-Survey/testutil"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// validAnswers answers every question of testutil.TestDefinition.
func validAnswers(t *testing.T, db *sql.DB, surveyID string) []models.SubmittedAnswer {
	t.Helper()
	return []models.SubmittedAnswer{
		{QuestionID: testutil.QuestionID(t, db, surveyID, "Q1"), ValueText: strPtr("Acme Audit Office")},
		{QuestionID: testutil.QuestionID(t, db, surveyID, "Q2"), ValueText: strPtr("Egypt")},
		{QuestionID: testutil.QuestionID(t, db, surveyID, "Q3"), ValueNumber: floatPtr(120)},
		{QuestionID: testutil.QuestionID(t, db, surveyID, "Q6"), OptionID: strPtr(testutil.OptionID(t, db, surveyID, "Q6", "yes"))},
		{QuestionID: testutil.QuestionID(t, db, surveyID, "Q7"), OptionID: strPtr(testutil.OptionID(t, db, surveyID, "Q7", "production"))},
		{QuestionID: testutil.QuestionID(t, db, surveyID, "Q8"), OptionID: strPtr(testutil.OptionID(t, db, surveyID, "Q8", "openai"))},
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}
