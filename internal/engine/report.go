package engine

import (
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/internal/insert"
	"github.com/simonhull/firebird-suite/plume/internal/materialize"
)

// Phase tracks how far a run progressed.
type Phase int

const (
	Validating Phase = iota
	Rendering
	Materializing
	Inserting
	Done
	Aborted
)

func (p Phase) String() string {
	switch p {
	case Validating:
		return "validating"
	case Rendering:
		return "rendering"
	case Materializing:
		return "materializing"
	case Inserting:
		return "inserting"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Report is the structured outcome of one run. Phase is Done on
// success, Aborted when validation failed before any write, or the
// phase a write-class error interrupted.
type Report struct {
	Phase       Phase
	Config      *config.Context
	Items       []materialize.Item
	Created     int
	Skipped     int
	Overwritten int
	Insertions  []InsertionResult
}

// AnchorFailures returns the insertion results that failed on a
// missing anchor or target.
func (r *Report) AnchorFailures() []InsertionResult {
	var failed []InsertionResult
	for _, ins := range r.Insertions {
		if ins.Status == InsertFailed {
			failed = append(failed, ins)
		}
	}
	return failed
}

// InsertStatus classifies the outcome of one insertion point.
type InsertStatus int

const (
	// InsertApplied means the fragment was spliced in and recorded.
	InsertApplied InsertStatus = iota

	// InsertRecorded means the ledger already held the fragment hash,
	// so the file was not touched.
	InsertRecorded

	// InsertPresent means the fragment was already between the
	// markers; the hash was recorded for next time.
	InsertPresent

	// InsertSkipped means the point's condition evaluated false.
	InsertSkipped

	// InsertPlanned means a dry run would have applied the fragment.
	InsertPlanned

	// InsertFailed means the anchor or target was missing; the
	// fragment is reported for manual application.
	InsertFailed
)

func (s InsertStatus) String() string {
	switch s {
	case InsertApplied:
		return "applied"
	case InsertRecorded:
		return "already recorded"
	case InsertPresent:
		return "already present"
	case InsertSkipped:
		return "skipped"
	case InsertPlanned:
		return "planned"
	case InsertFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// InsertionResult reports one insertion point's outcome. Fragment
// holds the substituted text so a failed insertion can be applied by
// hand.
type InsertionResult struct {
	Target   string
	Status   InsertStatus
	Fragment string
	Err      error
}

// UnknownGeneratorError means the requested generator is not
// registered.
type UnknownGeneratorError struct {
	Name  string
	Known []string
}

func (e *UnknownGeneratorError) Error() string {
	return fmt.Sprintf("unknown generator %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// AnchorFailureError aggregates anchor failures when the caller asked
// for them to be treated as hard errors.
type AnchorFailureError struct {
	Failures []*insert.AnchorError
}

func (e *AnchorFailureError) Error() string {
	if len(e.Failures) == 1 {
		return e.Failures[0].Error()
	}
	return fmt.Sprintf("%d insertion anchors not found", len(e.Failures))
}

func (e *AnchorFailureError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
