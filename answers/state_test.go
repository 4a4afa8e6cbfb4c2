// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package answers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostafamaarof/AI-Survey/models"
)

func singleQuestion(code string, values ...string) models.Question {
	q := models.Question{ID: "id-" + code, Code: code, Section: "Org", QType: models.QTypeSingle}
	for _, v := range values {
		q.Options = append(q.Options, models.Option{ID: "opt-" + code + "-" + v, Label: v, Value: v})
	}
	return q
}

func multiQuestion(code string, values ...string) models.Question {
	q := singleQuestion(code, values...)
	q.QType = models.QTypeMulti
	return q
}

func TestIsAnswered(t *testing.T) {
	text := models.Question{Code: "Q1", QType: models.QTypeText}
	long := models.Question{Code: "Q9", QType: models.QTypeLongText}
	number := models.Question{Code: "Q3", QType: models.QTypeNumber}
	single := singleQuestion("Q6", "yes", "no", "other")
	singleNoOther := singleQuestion("Q8", "yes", "no")
	multi := multiQuestion("Q7", "chatgpt", "copilot", "other")

	tests := []struct {
		name   string
		q      models.Question
		values Values
		want   bool
	}{
		{"text missing", text, Values{}, false},
		{"text whitespace", text, Values{"Q1": Text("  \t")}, false},
		{"text filled", text, Values{"Q1": Text("Audit Office")}, true},
		{"longtext filled", long, Values{"Q9": Text("notes")}, true},
		{"number zero", number, Values{"Q3": NumberOf(0)}, true},
		{"number empty string", number, Values{"Q3": Number("")}, false},
		{"number missing", number, Values{}, false},
		{"single unselected", single, Values{"Q6": Choice("")}, false},
		{"single selected", single, Values{"Q6": Choice("yes")}, true},
		{"single other without text", single, Values{"Q6": Choice("other")}, false},
		{"single other blank text", single, Values{"Q6": Choice("other"), "Q6_other": Text("   ")}, false},
		{"single other with text", single, Values{"Q6": Choice("other"), "Q6_other": Text("partly")}, true},
		{"single other not offered", singleNoOther, Values{"Q8": Choice("other")}, true},
		{"multi empty", multi, Values{"Q7": Choices()}, false},
		{"multi selected", multi, Values{"Q7": Choices("chatgpt")}, true},
		{"multi other without text", multi, Values{"Q7": Choices("chatgpt", "other")}, false},
		{"multi other with text", multi, Values{"Q7": Choices("other"), "Q7_other": Text("in-house")}, true},
		{"unknown type", models.Question{Code: "QX", QType: "date"}, Values{"QX": Text("2024")}, false},
		{"wrong shape", text, Values{"Q1": Choices("a")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnswered(tt.q, tt.values))
		})
	}
}

func TestComputeProgress(t *testing.T) {
	qs := []models.Question{
		{Code: "Q1", QType: models.QTypeText},
		{Code: "Q2", QType: models.QTypeText},
		{Code: "Q3", QType: models.QTypeNumber},
	}

	t.Run("empty question set", func(t *testing.T) {
		p := ComputeProgress(nil, Values{})
		assert.Equal(t, Progress{Answered: 0, Total: 0, Percent: 0}, p)
	})

	t.Run("rounds percent", func(t *testing.T) {
		p := ComputeProgress(qs, Values{"Q1": Text("a"), "Q3": NumberOf(0)})
		assert.Equal(t, 2, p.Answered)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, 67, p.Percent)
	})

	t.Run("complete", func(t *testing.T) {
		p := ComputeProgress(qs, Values{"Q1": Text("a"), "Q2": Text("b"), "Q3": Number("12")})
		assert.Equal(t, 100, p.Percent)
	})
}

func TestValidate(t *testing.T) {
	qs := []models.Question{
		{Code: "Q1", QType: models.QTypeText},
		singleQuestion("Q2", "yes", "no"),
	}

	t.Run("covers every question", func(t *testing.T) {
		errs := Validate(qs, Values{"Q2": Choice("no")})
		require.Len(t, errs, 2)
		assert.Equal(t, RequiredMessage, errs["Q1"])
		assert.Equal(t, "", errs["Q2"])
		assert.False(t, errs.OK())
		assert.True(t, errs.Failed("Q1"))
	})

	t.Run("fully answered", func(t *testing.T) {
		errs := Validate(qs, Values{"Q1": Text("x"), "Q2": Choice("yes")})
		assert.True(t, errs.OK())
	})

	t.Run("encodes passing questions as null", func(t *testing.T) {
		errs := Validate(qs, Values{"Q2": Choice("no")})
		data, err := json.Marshal(errs)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Q1":"This question is required.","Q2":null}`, string(data))

		var back Errors
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, errs, back)
	})
}

func TestSetValueClearsError(t *testing.T) {
	st := NewState().WithErrors(Errors{"Q1": RequiredMessage, "Q7": RequiredMessage})

	next := st.SetValue("Q1", Text("Audit Office"))
	assert.NotContains(t, next.Errors, "Q1")
	assert.Equal(t, RequiredMessage, next.Errors["Q7"])

	// receiver is untouched
	assert.Equal(t, RequiredMessage, st.Errors["Q1"])
	assert.NotContains(t, st.Values, "Q1")
}

func TestSetOtherTextKeepsError(t *testing.T) {
	st := NewState().
		SetValue("Q7", Choices("other")).
		WithErrors(Errors{"Q7": RequiredMessage})

	next := st.SetOtherText("Q7", "in-house model")
	assert.Equal(t, RequiredMessage, next.Errors["Q7"])
	assert.Equal(t, "in-house model", next.Values.OtherText("Q7"))
	assert.Equal(t, Text("in-house model"), next.Values["Q7_other"])
}

func TestStateJSONRoundTrip(t *testing.T) {
	st := NewState().
		SetValue("Q1", Text("Audit Office")).
		SetValue("Q3", Number("")).
		SetValue("Q7", Choices("chatgpt", "other")).
		SetOtherText("Q7", "custom").
		WithErrors(Errors{"Q4": RequiredMessage, "Q1": ""})

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, st, back)
	assert.False(t, IsAnswered(models.Question{Code: "Q3", QType: models.QTypeNumber}, back.Values))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		qtype   string
		raw     string
		want    Value
		wantErr bool
	}{
		{"text", models.QTypeText, `"hello"`, Text("hello"), false},
		{"longtext null", models.QTypeLongText, `null`, Text(""), false},
		{"number literal", models.QTypeNumber, `42`, Number("42"), false},
		{"number zero", models.QTypeNumber, `0`, Number("0"), false},
		{"number raw string", models.QTypeNumber, `"12abc"`, Number("12abc"), false},
		{"number cleared", models.QTypeNumber, `""`, Number(""), false},
		{"single", models.QTypeSingle, `"yes"`, Choice("yes"), false},
		{"multi", models.QTypeMulti, `["b","a"]`, Choices("b", "a"), false},
		{"multi null", models.QTypeMulti, `null`, Choices(), false},
		{"multi wrong shape", models.QTypeMulti, `"a"`, Value{}, true},
		{"text wrong shape", models.QTypeText, `12`, Value{}, true},
		{"unknown type", "date", `"2024-01-01"`, Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.qtype, json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckOptions(t *testing.T) {
	single := models.Question{Code: "Q7", QType: models.QTypeSingle, Options: []models.Option{
		{ID: "o1", Value: "production"}, {ID: "o2", Value: "pilot"},
	}}
	multi := models.Question{Code: "Q8", QType: models.QTypeMulti, Options: []models.Option{
		{ID: "o3", Value: "openai"}, {ID: "o4", Value: "other"},
	}}

	assert.NoError(t, CheckOptions(single, Choice("pilot")))
	assert.NoError(t, CheckOptions(single, Choice("")))
	assert.NoError(t, CheckOptions(multi, Choices("openai", "other")))
	assert.NoError(t, CheckOptions(multi, Choices()))
	assert.NoError(t, CheckOptions(models.Question{Code: "Q1", QType: models.QTypeText}, Text("banana")))

	assert.ErrorIs(t, CheckOptions(single, Choice("banana")), ErrUnknownOption)
	assert.ErrorIs(t, CheckOptions(multi, Choices("openai", "banana")), ErrUnknownOption)
}
