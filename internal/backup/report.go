package backup

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Outcome is the result of backing up one container
type Outcome struct {
	Container  string
	BackupType string
	Path       string
	Bytes      int64
	Duration   time.Duration
	Err        error
}

// Succeeded reports whether the dump was written completely
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Line renders the outcome as a single report line
func (o Outcome) Line(detailed bool) string {
	if o.Err != nil {
		// A container error already names its container
		var ce *ContainerError
		if errors.As(o.Err, &ce) && ce.Container == o.Container {
			return fmt.Sprintf("[FAILED] %v", o.Err)
		}
		return fmt.Sprintf("[FAILED] %s: %v", o.Container, o.Err)
	}
	if detailed {
		return fmt.Sprintf("[FINISHED] %s after %.1fs", o.Container, o.Duration.Seconds())
	}
	return o.Container
}

// Report accumulates the outcomes of one run in processing order
type Report struct {
	Detailed bool
	Outcomes []Outcome

	// runErr is a failure that stopped the run before or between containers
	runErr error
}

// NewReport creates an empty report
func NewReport(detailed bool) *Report {
	return &Report{Detailed: detailed}
}

// Record appends an outcome
func (r *Report) Record(outcome Outcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}

// SetError records a run-level failure
func (r *Report) SetError(err error) {
	r.runErr = err
}

// Lines returns the report lines, one per processed container
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Outcomes)+1)
	if r.runErr != nil {
		lines = append(lines, fmt.Sprintf("[FAILED] %v", r.runErr))
	}
	for _, o := range r.Outcomes {
		lines = append(lines, o.Line(r.Detailed))
	}
	return lines
}

// String returns the newline-joined report body
func (r *Report) String() string {
	return strings.Join(r.Lines(), "\n")
}

// Failed returns the outcomes that did not succeed
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins the run-level failure and every container failure
func (r *Report) Err() error {
	errs := []error{r.runErr}
	for _, o := range r.Failed() {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}
