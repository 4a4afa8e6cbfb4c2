// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mostafamaarof/AI-Survey/auth"
	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/db"
	"github.com/mostafamaarof/AI-Survey/models"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The pool is limited to one connection so the database lives as long as the
// *sql.DB does.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		SessionTTL:    time.Hour,
		AdminKeySalt:  "test-admin-salt",
		IPHashSalt:    "test-ip-salt",
		BreakdownCode: "Q7",
	}
}

// TestDefinition is a two-step survey: Org holds the institution questions,
// Usage holds Q7 (single) and Q8 (multi with an "other" option).
func TestDefinition(title string) *db.Definition {
	fields := models.DefaultInstitutionFields()
	return &db.Definition{
		Title:             title,
		Active:            true,
		InstitutionFields: &fields,
		Questions: []db.QuestionDefinition{
			{Code: "Q1", Section: "Org", Prompt: "Institution name", Type: models.QTypeText},
			{Code: "Q2", Section: "Org", Prompt: "Country", Type: models.QTypeText},
			{Code: "Q3", Section: "Org", Prompt: "Employees", Type: models.QTypeNumber},
			{Code: "Q6", Section: "Org", Prompt: "AI unit?", Type: models.QTypeSingle, Options: []db.OptionDefinition{
				{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"},
			}},
			{Code: "Q7", Section: "Usage", Prompt: "Uses AI?", Type: models.QTypeSingle, Options: []db.OptionDefinition{
				{Label: "Production", Value: "production"}, {Label: "Pilot", Value: "pilot"}, {Label: "No", Value: "no"},
			}},
			{Code: "Q8", Section: "Usage", Prompt: "Tools", Type: models.QTypeMulti, Options: []db.OptionDefinition{
				{Label: "ChatGPT", Value: "openai"}, {Label: "Copilot", Value: "copilot"}, {Label: "Other", Value: "other"},
			}},
		},
	}
}

// CreateTestSurvey seeds TestDefinition and returns the survey ID.
func CreateTestSurvey(t *testing.T, conn *sql.DB, title string, active bool) string {
	t.Helper()

	def := TestDefinition(title)
	def.Active = active
	surveyID, _, err := db.SeedSurvey(context.Background(), conn, def)
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}
	return surveyID
}

// QuestionID returns the ID of the question with code.
func QuestionID(t *testing.T, conn *sql.DB, surveyID, code string) string {
	t.Helper()

	var id string
	err := conn.QueryRow(`SELECT id FROM questions WHERE survey_id = $1 AND code = $2`, surveyID, code).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to find question %s: %v", code, err)
	}
	return id
}

// OptionID returns the ID of the option with value on question code.
func OptionID(t *testing.T, conn *sql.DB, surveyID, code, value string) string {
	t.Helper()

	var id string
	err := conn.QueryRow(`
		SELECT o.id FROM question_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.survey_id = $1 AND q.code = $2 AND o.value = $3
	`, surveyID, code, value).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to find option %s/%s: %v", code, value, err)
	}
	return id
}

// CreateTestToken stores an invite token, already used when used is true.
func CreateTestToken(t *testing.T, conn *sql.DB, surveyID string, used bool) string {
	t.Helper()

	token, err := auth.GenerateInviteToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	var usedAt *time.Time
	if used {
		now := time.Now().UTC()
		usedAt = &now
	}

	_, err = conn.Exec(`
		INSERT INTO invite_tokens (token, survey_id, used_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, token, surveyID, usedAt, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}
	return token
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
