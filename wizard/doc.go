// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wizard is the step-by-step navigation over a survey.

Questions are grouped into steps by section in the order sections first
appear. A Wizard starts on step 0:

	w := wizard.New(payload.Questions)
	w.SetValue("Q1", answers.Text("State Audit Office"))
	if !w.Next() {
		// w.State().Errors holds the messages for the current step
	}

Next is gated on every question of the current step being answered. Back and
JumpToStep never validate. SubmitAttempt validates the whole survey, moves to
the first failing step when something is missing, and otherwise hands the
assembled request to a Submitter. Only one submission runs at a time;
a second call returns ErrSubmitInFlight.

A failed submission never clears answers. The Outcome carries the server's
message, or FallbackMessage when there is none.
*/
package wizard
