// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package answers holds a respondent's answers and the rules applied to them.

# State

State is a plain value: Values keyed by question code plus the last
validation Errors. SetValue and SetOtherText return a new State.

	st := answers.NewState()
	st = st.SetValue("Q7", answers.Choices("chatgpt", "other"))
	st = st.SetOtherText("Q7", "in-house model")

Companion text for an "other" option is stored under OtherKey(code), which is
"<code>_other". An option counts as "other" when its value equals "other".

# Rules

IsAnswered is the single completion predicate. ComputeProgress and Validate
are built on it, and so is the step gate in package wizard.

# Payload

BuildAnswerPayload produces the wire answers in question order.
DeriveInstitution reads the institution profile from the codes named by a
models.InstitutionFields mapping.
*/
package answers
