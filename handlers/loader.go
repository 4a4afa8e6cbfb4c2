// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mostafamaarof/AI-Survey/models"
)

var ErrNoActiveSurvey = errors.New("no active survey")

const surveyColumns = `id, title, description, is_active, institution_fields, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (models.Survey, error) {
	var s models.Survey
	var description, fields sql.NullString
	var createdAt time.Time

	if err := row.Scan(&s.ID, &s.Title, &description, &s.IsActive, &fields, &createdAt); err != nil {
		return models.Survey{}, err
	}
	s.CreatedAt = createdAt.UTC()
	if description.Valid {
		s.Description = &description.String
	}
	if fields.Valid && fields.String != "" {
		var f models.InstitutionFields
		if err := json.Unmarshal([]byte(fields.String), &f); err != nil {
			// a broken mapping falls back to the default layout
			slog.Warn("invalid institution_fields", "survey_id", s.ID, "error", err)
		} else {
			s.InstitutionFields = &f
		}
	}
	return s, nil
}

// InstitutionFieldsOf returns the survey's mapping or the default Q1..Q6.
func InstitutionFieldsOf(s models.Survey) models.InstitutionFields {
	if s.InstitutionFields != nil {
		return *s.InstitutionFields
	}
	return models.DefaultInstitutionFields()
}

// LoadSurvey returns the survey with surveyID, or the newest active survey
// when surveyID is empty, together with its ordered questions and options.
func LoadSurvey(ctx context.Context, db *sql.DB, surveyID string) (*models.SurveyPayload, error) {
	var row *sql.Row
	if surveyID != "" {
		row = db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, surveyID)
	} else {
		row = db.QueryRowContext(ctx, `
			SELECT `+surveyColumns+` FROM surveys
			WHERE is_active = $1
			ORDER BY created_at DESC
			LIMIT 1
		`, true)
	}

	survey, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSurvey
	}
	if err != nil {
		return nil, fmt.Errorf("load survey: %w", err)
	}

	questions, err := loadQuestions(ctx, db, survey.ID)
	if err != nil {
		return nil, err
	}

	return &models.SurveyPayload{Survey: survey, Questions: questions}, nil
}

func loadQuestions(ctx context.Context, db *sql.DB, surveyID string) ([]models.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, code, section, prompt, qtype, order_index
		FROM questions
		WHERE survey_id = $1
		ORDER BY order_index, code
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	questions := []models.Question{}
	index := make(map[string]int)
	for rows.Next() {
		q := models.Question{Options: []models.Option{}}
		if err := rows.Scan(&q.ID, &q.Code, &q.Section, &q.Prompt, &q.QType, &q.OrderIndex); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan question: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("load questions: %w", err)
	}
	rows.Close()

	optRows, err := db.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.label, o.value, o.order_index
		FROM question_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.survey_id = $1
		ORDER BY o.question_id, o.order_index
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var o models.Option
		var questionID string
		if err := optRows.Scan(&o.ID, &questionID, &o.Label, &o.Value, &o.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		if i, ok := index[questionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}

	return questions, nil
}

// ListSurveys returns every survey, newest first.
func ListSurveys(ctx context.Context, db *sql.DB) ([]models.Survey, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+surveyColumns+` FROM surveys ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []models.Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, s)
	}
	return surveys, rows.Err()
}
