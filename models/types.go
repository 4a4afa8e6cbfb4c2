// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"time"
)

// Question types
const (
	QTypeText     = "text"
	QTypeNumber   = "number"
	QTypeSingle   = "single"
	QTypeMulti    = "multi"
	QTypeLongText = "longtext"
)

// OtherValue is the option value that asks for a free-text companion field.
const OtherValue = "other"

// Domain types

type Survey struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       *string            `json:"description,omitempty"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
	InstitutionFields *InstitutionFields `json:"institution_fields,omitempty"`
}

type Option struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	OrderIndex int    `json:"order_index"`
}

type Question struct {
	ID         string   `json:"id"`
	Code       string   `json:"code"`
	Section    string   `json:"section"`
	Prompt     string   `json:"prompt"`
	QType      string   `json:"qtype"`
	OrderIndex int      `json:"order_index"`
	Options    []Option `json:"options"`
}

// HasOtherOption reports whether one of the question's options carries the
// "other" value.
func (q Question) HasOtherOption() bool {
	_, ok := q.OptionByValue(OtherValue)
	return ok
}

// OptionByValue finds the option whose semantic value matches v.
func (q Question) OptionByValue(v string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == v {
			return o, true
		}
	}
	return Option{}, false
}

type SurveyPayload struct {
	Survey    Survey     `json:"survey"`
	Questions []Question `json:"questions"`
}

// InstitutionFields names the question codes the institution profile is
// harvested from. Each survey may carry its own mapping.
type InstitutionFields struct {
	Name             string `json:"name" yaml:"name"`
	Country          string `json:"country" yaml:"country"`
	EmployeesTotal   string `json:"employees_total" yaml:"employees_total"`
	EmployeesIT      string `json:"employees_it" yaml:"employees_it"`
	EmployeesITAudit string `json:"employees_it_audit" yaml:"employees_it_audit"`
	HasAIUnit        string `json:"has_ai_unit" yaml:"has_ai_unit"`
}

// DefaultInstitutionFields is the Q1..Q6 layout of the AI audit questionnaire.
func DefaultInstitutionFields() InstitutionFields {
	return InstitutionFields{
		Name:             "Q1",
		Country:          "Q2",
		EmployeesTotal:   "Q3",
		EmployeesIT:      "Q4",
		EmployeesITAudit: "Q5",
		HasAIUnit:        "Q6",
	}
}

type Institution struct {
	Name             string  `json:"name"`
	Country          *string `json:"country"`
	EmployeesTotal   *int    `json:"employees_total"`
	EmployeesIT      *int    `json:"employees_it"`
	EmployeesITAudit *int    `json:"employees_it_audit"`
	HasAIUnit        *bool   `json:"has_ai_unit"`
}

// SubmittedAnswer is one answer row as sent over the wire.
type SubmittedAnswer struct {
	QuestionID  string   `json:"question_id"`
	OptionID    *string  `json:"option_id"`
	ValueText   *string  `json:"value_text"`
	ValueNumber *float64 `json:"value_number"`
}

type InviteToken struct {
	Token     string     `json:"token"`
	SurveyID  string     `json:"survey_id"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Request types

type SubmitRequest struct {
	SurveyID    string            `json:"survey_id"`
	Institution *Institution      `json:"institution"`
	Answers     []SubmittedAnswer `json:"answers"`
	Token       *string           `json:"token"`
}

type CreateSessionRequest struct {
	SurveyID string  `json:"survey_id"`
	Token    *string `json:"token"`
}

type JumpRequest struct {
	Step int `json:"step"`
}

type OtherTextRequest struct {
	Text string `json:"text"`
}

// Response types

type SubmitResponse struct {
	OK           bool   `json:"ok"`
	RespondentID string `json:"respondent_id,omitempty"`
}

type BreakdownRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Totals struct {
	Responses int `json:"responses"`
}

type StatsResponse struct {
	Survey      Survey         `json:"survey"`
	Totals      Totals         `json:"totals"`
	Q7Breakdown []BreakdownRow `json:"q7_breakdown"`
}

type IssueTokenResponse struct {
	Token    string `json:"token"`
	SurveyID string `json:"survey_id"`
}

type VersionResponse struct {
	Version    string    `json:"version"`
	Branch     string    `json:"branch"`
	DeployedAt time.Time `json:"deployedAt"`
}

type DebugResponse struct {
	Env          DebugEnv `json:"env"`
	Counts       Counts   `json:"counts"`
	ActiveSurvey *Survey  `json:"activeSurvey"`
	NewestSurvey *Survey  `json:"newestSurvey"`
}

type DebugEnv struct {
	DatabaseType    string  `json:"databaseType"`
	HasAdminKeySalt bool    `json:"hasAdminKeySalt"`
	SurveyIDEnv     *string `json:"surveyIdEnv"`
	SessionStore    string  `json:"sessionStore"`
}

type Counts struct {
	Surveys int `json:"surveys"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// APIError is a failure reported by the submission boundary. Message is the
// server-provided text and is shown to respondents verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}
