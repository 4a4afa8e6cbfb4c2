// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mostafamaarof/AI-Survey/auth"
	"github.com/mostafamaarof/AI-Survey/models"
)

// Definition is a survey as written in a seed file.
type Definition struct {
	Title             string                    `yaml:"title"`
	Description       string                    `yaml:"description"`
	Active            bool                      `yaml:"active"`
	InstitutionFields *models.InstitutionFields `yaml:"institution_fields"`
	Questions         []QuestionDefinition      `yaml:"questions"`
}

type QuestionDefinition struct {
	Code    string             `yaml:"code"`
	Section string             `yaml:"section"`
	Prompt  string             `yaml:"prompt"`
	Type    string             `yaml:"type"`
	Options []OptionDefinition `yaml:"options"`
}

type OptionDefinition struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// ParseDefinition decodes and checks a YAML survey definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse survey definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDefinition reads a definition from a YAML file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read survey definition: %w", err)
	}
	return ParseDefinition(data)
}

// Validate checks the rules the wizard relies on: unique codes, known types,
// options on choice questions and at most one "other" option per question.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("survey definition: title is required")
	}
	if len(d.Questions) == 0 {
		return errors.New("survey definition: at least one question is required")
	}

	codes := make(map[string]bool)
	for i, q := range d.Questions {
		if q.Code == "" {
			return fmt.Errorf("question %d: code is required", i+1)
		}
		if codes[q.Code] {
			return fmt.Errorf("question %s: duplicate code", q.Code)
		}
		codes[q.Code] = true

		if q.Section == "" || q.Prompt == "" {
			return fmt.Errorf("question %s: section and prompt are required", q.Code)
		}

		switch q.Type {
		case models.QTypeText, models.QTypeLongText, models.QTypeNumber:
			if len(q.Options) > 0 {
				return fmt.Errorf("question %s: %s questions take no options", q.Code, q.Type)
			}
		case models.QTypeSingle, models.QTypeMulti:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %s: %s questions need options", q.Code, q.Type)
			}
			values := make(map[string]bool)
			for _, o := range q.Options {
				if o.Value == "" || o.Label == "" {
					return fmt.Errorf("question %s: option label and value are required", q.Code)
				}
				if values[o.Value] {
					return fmt.Errorf("question %s: duplicate option value %q", q.Code, o.Value)
				}
				values[o.Value] = true
			}
		default:
			return fmt.Errorf("question %s: unknown type %q", q.Code, q.Type)
		}
	}

	if f := d.InstitutionFields; f != nil {
		for _, code := range []string{f.Name, f.Country, f.EmployeesTotal, f.EmployeesIT, f.EmployeesITAudit, f.HasAIUnit} {
			if code != "" && !codes[code] {
				return fmt.Errorf("institution_fields: unknown question code %q", code)
			}
		}
	}
	return nil
}

// SeedSurvey inserts def in one transaction. A survey with the same title is
// left alone and its ID returned with created set to false.
func SeedSurvey(ctx context.Context, conn *sql.DB, def *Definition) (surveyID string, created bool, err error) {
	err = conn.QueryRowContext(ctx, `SELECT id FROM surveys WHERE title = $1`, def.Title).Scan(&surveyID)
	if err == nil {
		return surveyID, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("look up survey: %w", err)
	}

	var fields *string
	if def.InstitutionFields != nil {
		raw, err := json.Marshal(def.InstitutionFields)
		if err != nil {
			return "", false, fmt.Errorf("encode institution fields: %w", err)
		}
		s := string(raw)
		fields = &s
	}

	var description *string
	if def.Description != "" {
		description = &def.Description
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	surveyID = auth.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO surveys (id, title, description, is_active, institution_fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, surveyID, def.Title, description, def.Active, fields, time.Now().UTC())
	if err != nil {
		return "", false, fmt.Errorf("insert survey: %w", err)
	}

	for qi, q := range def.Questions {
		questionID := auth.NewID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO questions (id, survey_id, code, section, prompt, qtype, order_index)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, questionID, surveyID, q.Code, q.Section, q.Prompt, q.Type, qi+1)
		if err != nil {
			return "", false, fmt.Errorf("insert question %s: %w", q.Code, err)
		}

		for oi, o := range q.Options {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO question_options (id, question_id, label, value, order_index)
				VALUES ($1, $2, $3, $4, $5)
			`, auth.NewID(), questionID, o.Label, o.Value, oi+1)
			if err != nil {
				return "", false, fmt.Errorf("insert option %s/%s: %w", q.Code, o.Value, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit seed: %w", err)
	}
	return surveyID, true, nil
}

// SeedFile loads path and seeds it.
func SeedFile(ctx context.Context, conn *sql.DB, path string) (string, bool, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return "", false, err
	}
	return SeedSurvey(ctx, conn, def)
}
