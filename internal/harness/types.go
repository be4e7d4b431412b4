package harness

import "github.com/axiomkit/axiom/internal/protocol"

// StepTrace records the observable outcome of one executed step.
type StepTrace struct {
	// Step is the 1-based position of this step in the scenario.
	Step int `json:"step"`

	// Events is the batch that was dispatched.
	Events []protocol.Event `json:"events"`

	// NewFacts are the facts this step appended to the fact log.
	NewFacts []protocol.Fact `json:"newFacts"`

	// Diagnostics are the diagnostics this step surfaced.
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	// Trace contains the per-step outcomes in execution order.
	Trace []StepTrace `json:"trace"`

	// Errors contains expectation and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the engine state after the last step.
	Final protocol.State `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
