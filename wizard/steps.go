// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import "github.com/mostafamaarof/AI-Survey/models"

// Step is one section's questions, shown together.
type Step struct {
	Section   string            `json:"section"`
	Questions []models.Question `json:"questions"`
}

// BuildSteps groups questions by section, keeping the order in which each
// section first appears. Question order inside a step is preserved.
func BuildSteps(questions []models.Question) []Step {
	var steps []Step
	index := make(map[string]int)

	for _, q := range questions {
		i, ok := index[q.Section]
		if !ok {
			i = len(steps)
			index[q.Section] = i
			steps = append(steps, Step{Section: q.Section})
		}
		steps[i].Questions = append(steps[i].Questions, q)
	}
	return steps
}
