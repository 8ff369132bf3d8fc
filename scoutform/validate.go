package scoutform

// StepResult is the outcome of validating one form step.
type StepResult struct {
	Valid  bool
	Errors map[string]string
}

// ValidateStep checks a draft against one step of the form. Step 0 is the
// fixed match-info step and requires a team number and a match number; steps
// 1..N correspond to config categories and currently pass unconditionally.
// Required is carried on the schema but the original form never enforced it
// past step 0, and dashboards built against that behavior expect sparse
// entries. Pure function, no side effects.
func ValidateStep(step int, draft *Entry, cfg *Config) StepResult {
	errs := make(map[string]string)

	if step == 0 {
		if draft.TeamNumber == "" {
			errs["teamNumber"] = "Team number is required"
		}
		if draft.MatchNumber == "" {
			errs["matchNumber"] = "Match number is required"
		}
	}

	return StepResult{Valid: len(errs) == 0, Errors: errs}
}
