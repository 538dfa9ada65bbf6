package pipeline

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"
)

// Outcome is a unit's terminal state.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Failure and skip reasons recorded in the report.
const (
	ReasonBadTranslation = "bad-translation"
	ReasonRequestFailure = "request-failure"
	ReasonWriteFailure   = "write-failure"
	ReasonConcurrentEdit = "concurrent-edit"
)

// UnitOutcome records how one unit ended.
type UnitOutcome struct {
	Component string
	Language  string
	Key       string
	Outcome   Outcome
	Reason    string
	Detail    string
	Attempts  int
}

// PairError records a (component, language) pair whose unit enumeration
// failed. The pair's units are unknown, so they appear nowhere else in the
// report.
type PairError struct {
	Component string
	Language  string
	Err       string
}

// RunReport aggregates one run. Append-only and safe for concurrent
// recording; it lives only as long as the process.
type RunReport struct {
	mu sync.Mutex

	StartedAt  time.Time
	FinishedAt time.Time
	Canceled   bool

	// Fatal is the error that cut the run short, if any. Set when the
	// platform rejects credentials mid-run; the counters then cover only
	// the units processed before the abort.
	Fatal error

	Attempted int
	Succeeded int
	Skipped   int
	Failed    int

	Outcomes   []UnitOutcome
	PairErrors []PairError
}

// NewRunReport starts an empty report clocked at now.
func NewRunReport() *RunReport {
	return &RunReport{StartedAt: time.Now()}
}

// Record appends a unit outcome and bumps the matching counter.
func (r *RunReport) Record(o UnitOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Attempted++
	switch o.Outcome {
	case OutcomeDone:
		r.Succeeded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// RecordPairError notes a pair whose enumeration failed.
func (r *RunReport) RecordPairError(component, language string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PairErrors = append(r.PairErrors, PairError{
		Component: component,
		Language:  language,
		Err:       err.Error(),
	})
}

// RecordFatal marks the run as aborted. The first fatal error wins.
func (r *RunReport) RecordFatal(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fatal == nil {
		r.Fatal = err
	}
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

// Problems returns the outcomes that were not successful.
func (r *RunReport) Problems() []UnitOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []UnitOutcome
	for _, o := range r.Outcomes {
		if o.Outcome != OutcomeDone {
			out = append(out, o)
		}
	}
	return out
}

// Print writes the end-of-run summary. It is emitted even after partial
// failure or cancellation.
func (r *RunReport) Print(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(w, "attempted=%d succeeded=%d skipped=%d failed=%d",
		r.Attempted, r.Succeeded, r.Skipped, r.Failed)
	if r.Canceled {
		fmt.Fprint(w, " (canceled)")
	}
	if r.Fatal != nil {
		fmt.Fprintf(w, " (aborted: %v)", r.Fatal)
	}
	fmt.Fprintln(w)

	if len(r.PairErrors) > 0 {
		fmt.Fprintln(w, "\nFailed pairs:")
		for _, pe := range r.PairErrors {
			fmt.Fprintf(w, "  %s/%s: %s\n", pe.Component, pe.Language, pe.Err)
		}
	}

	problems := false
	for _, o := range r.Outcomes {
		if o.Outcome != OutcomeDone {
			problems = true
			break
		}
	}
	if !problems {
		return
	}

	fmt.Fprintln(w, "\nProblem units:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tLANGUAGE\tKEY\tOUTCOME\tREASON")
	for _, o := range r.Outcomes {
		if o.Outcome == OutcomeDone {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			o.Component, o.Language, o.Key, o.Outcome, o.Reason)
	}
	tw.Flush()
}
