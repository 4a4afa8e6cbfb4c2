// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package answers

import (
	"fmt"
	"math"
	"strings"

	"github.com/mostafamaarof/AI-Survey/models"
)

// NumberError reports a number field whose input cannot be coerced.
type NumberError struct {
	Code  string
	Input string
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("question %s: %q is not a valid number", e.Code, e.Input)
}

// BuildAnswerPayload turns stored values into wire answers, in question
// order. Questions without a stored value are skipped; validation is the
// caller's job.
func BuildAnswerPayload(questions []models.Question, vs Values) ([]models.SubmittedAnswer, error) {
	out := make([]models.SubmittedAnswer, 0, len(questions))

	for _, q := range questions {
		v, ok := vs[q.Code]
		if !ok || v.IsEmpty() {
			continue
		}

		switch q.QType {
		case models.QTypeSingle:
			if v.Kind != KindChoice {
				continue
			}
			opt, found := q.OptionByValue(v.Choice)
			if !found {
				continue
			}
			out = append(out, optionAnswer(q, opt, vs))

		case models.QTypeMulti:
			if v.Kind != KindChoices {
				continue
			}
			for _, choice := range v.Choices {
				opt, found := q.OptionByValue(choice)
				if !found {
					continue
				}
				out = append(out, optionAnswer(q, opt, vs))
			}

		case models.QTypeNumber:
			if v.Kind != KindNumber || v.Text == "" {
				continue
			}
			f, ok := v.Float()
			if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, &NumberError{Code: q.Code, Input: v.Text}
			}
			out = append(out, models.SubmittedAnswer{QuestionID: q.ID, ValueNumber: &f})

		case models.QTypeText, models.QTypeLongText:
			if v.Kind != KindText {
				continue
			}
			text := v.Text
			out = append(out, models.SubmittedAnswer{QuestionID: q.ID, ValueText: &text})
		}
	}
	return out, nil
}

// optionAnswer builds the record for one picked option. Only the "other"
// option carries the trimmed companion text.
func optionAnswer(q models.Question, opt models.Option, vs Values) models.SubmittedAnswer {
	id := opt.ID
	a := models.SubmittedAnswer{QuestionID: q.ID, OptionID: &id}
	if opt.Value == models.OtherValue {
		if text := strings.TrimSpace(vs.OtherText(q.Code)); text != "" {
			a.ValueText = &text
		}
	}
	return a
}

// DeriveInstitution reads the institution profile out of the answers using
// the codes in fields. Unanswered or unusable fields stay nil.
func DeriveInstitution(fields models.InstitutionFields, vs Values) models.Institution {
	inst := models.Institution{
		Name:             strings.TrimSpace(stringOf(vs.Get(fields.Name))),
		EmployeesTotal:   intOf(vs.Get(fields.EmployeesTotal)),
		EmployeesIT:      intOf(vs.Get(fields.EmployeesIT)),
		EmployeesITAudit: intOf(vs.Get(fields.EmployeesITAudit)),
	}

	if country := strings.TrimSpace(stringOf(vs.Get(fields.Country))); country != "" {
		inst.Country = &country
	}

	switch stringOf(vs.Get(fields.HasAIUnit)) {
	case "yes":
		t := true
		inst.HasAIUnit = &t
	case "no":
		f := false
		inst.HasAIUnit = &f
	}
	return inst
}

func stringOf(v Value) string {
	switch v.Kind {
	case KindText, KindNumber:
		return v.Text
	case KindChoice:
		return v.Choice
	}
	return ""
}

func intOf(v Value) *int {
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	return &n
}
