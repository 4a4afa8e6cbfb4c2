// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package answers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mostafamaarof/AI-Survey/models"
)

// Kind tags the shape of a Value.
type Kind string

const (
	KindEmpty   Kind = ""
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindChoice  Kind = "choice"
	KindChoices Kind = "choices"
)

var (
	ErrValueShape    = errors.New("value does not match question type")
	ErrUnknownOption = errors.New("value is not one of the question's options")
)

// Value is one stored answer. Exactly one payload field is meaningful for a
// given Kind: Text for text and number (raw input), Choice for single
// selection, Choices for multi selection.
type Value struct {
	Kind    Kind
	Text    string
	Choice  string
	Choices []string
}

// Text holds free text for text and longtext questions, and companion
// "other" text.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Number holds the raw input of a number field. An empty string means the
// field was cleared.
func Number(raw string) Value { return Value{Kind: KindNumber, Text: raw} }

// NumberOf is Number for an already numeric input.
func NumberOf(f float64) Value {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// Choice holds the option value picked in a single-choice question.
func Choice(v string) Value { return Value{Kind: KindChoice, Choice: v} }

// Choices holds the option values picked in a multi-choice question, in the
// order they were picked.
func Choices(vs ...string) Value {
	cp := make([]string, len(vs))
	copy(cp, vs)
	return Value{Kind: KindChoices, Choices: cp}
}

// IsEmpty reports whether nothing was stored.
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// Selected reports whether choice is part of a choice or choices value.
func (v Value) Selected(choice string) bool {
	switch v.Kind {
	case KindChoice:
		return v.Choice == choice
	case KindChoices:
		for _, c := range v.Choices {
			if c == choice {
				return true
			}
		}
	}
	return false
}

// Float coerces a number value. ok is false for blank or non-numeric input.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

type valueJSON struct {
	Kind    Kind     `json:"kind"`
	Text    string   `json:"text,omitempty"`
	Choice  string   `json:"choice,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(valueJSON{Kind: v.Kind, Text: v.Text, Choice: v.Choice, Choices: v.Choices})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Value{Kind: raw.Kind, Text: raw.Text, Choice: raw.Choice, Choices: raw.Choices}
	return nil
}

// ParseValue decodes the wire form of an answer for a question type:
// a string for text and longtext, a number or string for number, a string
// for single and an array of strings for multi. JSON null clears the field.
func ParseValue(qtype string, raw json.RawMessage) (Value, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return emptyFor(qtype), nil
	}

	switch qtype {
	case models.QTypeText, models.QTypeLongText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("%s answer: %w", qtype, ErrValueShape)
		}
		return Text(s), nil
	case models.QTypeNumber:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return Number(s), nil
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Value{}, fmt.Errorf("number answer: %w", ErrValueShape)
		}
		return NumberOf(f), nil
	case models.QTypeSingle:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("single answer: %w", ErrValueShape)
		}
		return Choice(s), nil
	case models.QTypeMulti:
		var vs []string
		if err := json.Unmarshal(raw, &vs); err != nil {
			return Value{}, fmt.Errorf("multi answer: %w", ErrValueShape)
		}
		return Choices(vs...), nil
	}
	return Value{}, fmt.Errorf("unknown question type %q", qtype)
}

// CheckOptions rejects single and multi values naming an option the question
// does not have. Cleared values pass.
func CheckOptions(q models.Question, v Value) error {
	var picked []string
	switch v.Kind {
	case KindChoice:
		if v.Choice != "" {
			picked = []string{v.Choice}
		}
	case KindChoices:
		picked = v.Choices
	}

	for _, choice := range picked {
		if _, ok := q.OptionByValue(choice); !ok {
			return fmt.Errorf("question %s: %q: %w", q.Code, choice, ErrUnknownOption)
		}
	}
	return nil
}

func emptyFor(qtype string) Value {
	switch qtype {
	case models.QTypeText, models.QTypeLongText:
		return Text("")
	case models.QTypeNumber:
		return Number("")
	case models.QTypeSingle:
		return Choice("")
	case models.QTypeMulti:
		return Choices()
	}
	return Value{}
}
