// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mostafamaarof/AI-Survey/models"
	"github.com/mostafamaarof/AI-Survey/testutil"
)

func TestSubmitServiceRejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewSubmitService(db)

	surveyID := testutil.CreateTestSurvey(t, db, "Main", true)
	otherID := testutil.CreateTestSurvey(t, db, "Other", true)

	usedToken := testutil.CreateTestToken(t, db, surveyID, true)
	otherToken := testutil.CreateTestToken(t, db, otherID, false)

	foreignQuestion := []models.SubmittedAnswer{
		{QuestionID: testutil.QuestionID(t, db, otherID, "Q1"), ValueText: strPtr("x")},
	}
	foreignOption := []models.SubmittedAnswer{
		{
			QuestionID: testutil.QuestionID(t, db, surveyID, "Q7"),
			OptionID:   strPtr(testutil.OptionID(t, db, surveyID, "Q6", "yes")),
		},
	}

	tests := []struct {
		name    string
		req     models.SubmitRequest
		message string
	}{
		{
			name:    "missing survey id",
			req:     models.SubmitRequest{Answers: []models.SubmittedAnswer{}},
			message: "Missing payload",
		},
		{
			name:    "missing answers",
			req:     models.SubmitRequest{SurveyID: surveyID},
			message: "Missing payload",
		},
		{
			name:    "unknown survey",
			req:     models.SubmitRequest{SurveyID: "missing", Answers: []models.SubmittedAnswer{}},
			message: "Unknown survey",
		},
		{
			name:    "unknown token",
			req:     models.SubmitRequest{SurveyID: surveyID, Answers: []models.SubmittedAnswer{}, Token: strPtr("no-such-token")},
			message: "Invalid or used token",
		},
		{
			name:    "malformed token",
			req:     models.SubmitRequest{SurveyID: surveyID, Answers: []models.SubmittedAnswer{}, Token: strPtr("bad token!")},
			message: "Invalid or used token",
		},
		{
			name:    "used token",
			req:     models.SubmitRequest{SurveyID: surveyID, Answers: []models.SubmittedAnswer{}, Token: &usedToken},
			message: "Invalid or used token",
		},
		{
			name:    "token of another survey",
			req:     models.SubmitRequest{SurveyID: surveyID, Answers: []models.SubmittedAnswer{}, Token: &otherToken},
			message: "Invalid or used token",
		},
		{
			name:    "question of another survey",
			req:     models.SubmitRequest{SurveyID: surveyID, Answers: foreignQuestion},
			message: "Answer does not belong to this survey",
		},
		{
			name:    "option of another question",
			req:     models.SubmitRequest{SurveyID: surveyID, Answers: foreignOption},
			message: "Answer does not belong to this survey",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Store(context.Background(), tt.req, ClientInfo{})

			var apiErr *models.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *models.APIError, got %v", err)
			}
			if apiErr.Status != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", apiErr.Status)
			}
			if apiErr.Message != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, apiErr.Message)
			}
		})
	}

	if n := testutil.CountRows(t, db, "respondents"); n != 0 {
		t.Errorf("Expected no respondents after rejections, got %d", n)
	}
}

func TestSubmitServiceAnonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewSubmitService(db)
	surveyID := testutil.CreateTestSurvey(t, db, "Main", true)

	req := models.SubmitRequest{
		SurveyID: surveyID,
		Answers:  validAnswers(t, db, surveyID),
		Institution: &models.Institution{
			Name:           "  Acme Audit Office ",
			Country:        strPtr("Egypt"),
			EmployeesTotal: func() *int { n := 120; return &n }(),
		},
	}

	respondentID, err := service.Store(context.Background(), req, ClientInfo{IPHash: "abc", UserAgent: "test"})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if respondentID == "" {
		t.Fatal("Expected a respondent ID")
	}

	if n := testutil.CountRows(t, db, "answers"); n != 6 {
		t.Errorf("Expected 6 answers, got %d", n)
	}
	if n := testutil.CountRows(t, db, "institutions"); n != 1 {
		t.Errorf("Expected 1 institution, got %d", n)
	}

	var name, ipHash, userAgent string
	var token *string
	err = db.QueryRow(`
		SELECT i.name, r.ip_hash, r.user_agent, r.token
		FROM respondents r JOIN institutions i ON i.id = r.institution_id
		WHERE r.id = $1
	`, respondentID).Scan(&name, &ipHash, &userAgent, &token)
	if err != nil {
		t.Fatalf("Failed to read respondent: %v", err)
	}
	if name != "Acme Audit Office" {
		t.Errorf("Expected trimmed institution name, got '%s'", name)
	}
	if ipHash != "abc" || userAgent != "test" {
		t.Errorf("Expected client info to be stored, got %s / %s", ipHash, userAgent)
	}
	if token != nil {
		t.Errorf("Expected no token on anonymous respondent, got %s", *token)
	}
}

func TestSubmitServiceSkipsUnnamedInstitution(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewSubmitService(db)
	surveyID := testutil.CreateTestSurvey(t, db, "Main", true)

	req := models.SubmitRequest{
		SurveyID:    surveyID,
		Answers:     validAnswers(t, db, surveyID),
		Institution: &models.Institution{Name: "   ", Country: strPtr("Egypt")},
	}
	if _, err := service.Store(context.Background(), req, ClientInfo{}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if n := testutil.CountRows(t, db, "institutions"); n != 0 {
		t.Errorf("Expected no institution row, got %d", n)
	}
	if n := testutil.CountRows(t, db, "respondents"); n != 1 {
		t.Errorf("Expected 1 respondent, got %d", n)
	}
}

func TestSubmitServiceTokenIsSingleUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewSubmitService(db)
	surveyID := testutil.CreateTestSurvey(t, db, "Main", true)
	token := testutil.CreateTestToken(t, db, surveyID, false)

	req := models.SubmitRequest{SurveyID: surveyID, Answers: validAnswers(t, db, surveyID), Token: &token}

	resp, err := service.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("First submission failed: %v", err)
	}
	if !resp.OK || resp.RespondentID == "" {
		t.Errorf("Expected ok response with respondent ID, got %+v", resp)
	}

	var usedAt *string
	if err := db.QueryRow(`SELECT used_at FROM invite_tokens WHERE token = $1`, token).Scan(&usedAt); err != nil {
		t.Fatalf("Failed to read token: %v", err)
	}
	if usedAt == nil {
		t.Error("Expected token to be marked used")
	}

	_, err = service.Submit(context.Background(), req)
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid or used token" {
		t.Errorf("Expected second submission to be rejected, got %v", err)
	}
	if n := testutil.CountRows(t, db, "respondents"); n != 1 {
		t.Errorf("Expected 1 respondent, got %d", n)
	}
}

func TestSubmitServiceUsesClientInfoFromContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewSubmitService(db)
	surveyID := testutil.CreateTestSurvey(t, db, "Main", true)

	ctx := WithClientInfo(context.Background(), ClientInfo{IPHash: "hash", UserAgent: "agent"})
	resp, err := service.Submit(ctx, models.SubmitRequest{SurveyID: surveyID, Answers: validAnswers(t, db, surveyID)})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var ipHash string
	if err := db.QueryRow(`SELECT ip_hash FROM respondents WHERE id = $1`, resp.RespondentID).Scan(&ipHash); err != nil {
		t.Fatalf("Failed to read respondent: %v", err)
	}
	if ipHash != "hash" {
		t.Errorf("Expected ip hash from context, got '%s'", ipHash)
	}
}

func TestSubmitHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSubmitHandler(NewSubmitService(db), cfg, nil)
	surveyID := testutil.CreateTestSurvey(t, db, "Main", true)

	t.Run("valid submission", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/submit", models.SubmitRequest{
			SurveyID: surveyID,
			Answers:  validAnswers(t, db, surveyID),
		}, map[string]string{"User-Agent": "survey-test"})

		w := serve(http.HandlerFunc(handler.Submit), req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.SubmitResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.OK || resp.RespondentID == "" {
			t.Errorf("Expected ok response, got %+v", resp)
		}

		var ipHash string
		if err := db.QueryRow(`SELECT ip_hash FROM respondents WHERE id = $1`, resp.RespondentID).Scan(&ipHash); err != nil {
			t.Fatalf("Failed to read respondent: %v", err)
		}
		if ipHash == "" || ipHash == "192.0.2.1" {
			t.Errorf("Expected hashed client IP, got '%s'", ipHash)
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/submit", map[string]string{"survey_id": surveyID}, nil)
		w := serve(http.HandlerFunc(handler.Submit), req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		if resp := decodeError(t, w); resp.Message != "Missing payload" {
			t.Errorf("Expected 'Missing payload', got '%s'", resp.Message)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/submit", bytes.NewBufferString("{not json"))
		w := serve(http.HandlerFunc(handler.Submit), req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
