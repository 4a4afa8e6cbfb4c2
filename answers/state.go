// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package answers

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/mostafamaarof/AI-Survey/models"
)

// RequiredMessage is the validation error for an unanswered question.
const RequiredMessage = "This question is required."

// OtherKey is the key of the free-text companion of a question's "other"
// option.
func OtherKey(code string) string { return code + "_other" }

// Values maps question codes (and companion keys) to stored answers.
type Values map[string]Value

// Get returns the value stored under key, or an empty Value.
func (vs Values) Get(key string) Value { return vs[key] }

// OtherText returns the companion text of a question.
func (vs Values) OtherText(code string) string {
	return vs[OtherKey(code)].Text
}

func (vs Values) clone() Values {
	cp := make(Values, len(vs)+1)
	for k, v := range vs {
		cp[k] = v
	}
	return cp
}

// Errors maps question codes to a validation message. An empty message means
// the question passed and is encoded as JSON null.
type Errors map[string]string

// OK reports whether no question failed.
func (e Errors) OK() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Failed reports whether code carries a validation message.
func (e Errors) Failed(code string) bool { return e[code] != "" }

func (e Errors) MarshalJSON() ([]byte, error) {
	out := make(map[string]*string, len(e))
	for code, msg := range e {
		if msg == "" {
			out[code] = nil
			continue
		}
		m := msg
		out[code] = &m
	}
	return json.Marshal(out)
}

func (e *Errors) UnmarshalJSON(data []byte) error {
	var in map[string]*string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Errors, len(in))
	for code, msg := range in {
		if msg == nil {
			out[code] = ""
			continue
		}
		out[code] = *msg
	}
	*e = out
	return nil
}

func (e Errors) clone() Errors {
	cp := make(Errors, len(e)+1)
	for k, v := range e {
		cp[k] = v
	}
	return cp
}

// State is one respondent's answers together with the last validation
// messages. Updates return a new State and never modify the receiver.
type State struct {
	Values Values `json:"values"`
	Errors Errors `json:"errors"`
}

// NewState returns an empty state.
func NewState() State {
	return State{Values: Values{}, Errors: Errors{}}
}

// SetValue stores v for code and clears the error on code. The error is not
// recomputed until the next explicit validation.
func (s State) SetValue(code string, v Value) State {
	next := State{Values: s.Values.clone(), Errors: s.Errors.clone()}
	next.Values[code] = v
	delete(next.Errors, code)
	return next
}

// SetOtherText stores the companion text of code. The error on code stays
// because the primary selection did not change.
func (s State) SetOtherText(code, text string) State {
	next := State{Values: s.Values.clone(), Errors: s.Errors.clone()}
	next.Values[OtherKey(code)] = Text(text)
	return next
}

// WithErrors merges errs over the current messages.
func (s State) WithErrors(errs Errors) State {
	next := State{Values: s.Values, Errors: s.Errors.clone()}
	for code, msg := range errs {
		next.Errors[code] = msg
	}
	return next
}

// IsAnswered is the one completion rule shared by the progress counter, the
// step gate and the submit gate.
func IsAnswered(q models.Question, vs Values) bool {
	v := vs.Get(q.Code)

	switch q.QType {
	case models.QTypeText, models.QTypeLongText:
		return v.Kind == KindText && strings.TrimSpace(v.Text) != ""
	case models.QTypeNumber:
		return v.Kind == KindNumber && v.Text != ""
	case models.QTypeSingle:
		if v.Kind != KindChoice || v.Choice == "" {
			return false
		}
		if v.Choice == models.OtherValue && q.HasOtherOption() {
			return strings.TrimSpace(vs.OtherText(q.Code)) != ""
		}
		return true
	case models.QTypeMulti:
		if v.Kind != KindChoices || len(v.Choices) == 0 {
			return false
		}
		if v.Selected(models.OtherValue) {
			return strings.TrimSpace(vs.OtherText(q.Code)) != ""
		}
		return true
	}
	return false
}

// Progress summarizes how much of a question set is answered.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// ComputeProgress counts answered questions. An empty set is 0 percent.
func ComputeProgress(questions []models.Question, vs Values) Progress {
	p := Progress{Total: len(questions)}
	for _, q := range questions {
		if IsAnswered(q, vs) {
			p.Answered++
		}
	}
	if p.Total == 0 {
		return p
	}
	p.Percent = int(math.Round(float64(p.Answered) / float64(p.Total) * 100))
	return p
}

// Validate returns a message for every question in questions: RequiredMessage
// when unanswered, empty otherwise.
func Validate(questions []models.Question, vs Values) Errors {
	errs := make(Errors, len(questions))
	for _, q := range questions {
		if IsAnswered(q, vs) {
			errs[q.Code] = ""
			continue
		}
		errs[q.Code] = RequiredMessage
	}
	return errs
}
