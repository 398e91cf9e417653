package ooo

import "github.com/pkg/errors"

// Kind distinguishes the fatal failure modes a partition splice can hit
// (spec §7). Each is fatal for the partition that produced it.
type Kind int

const (
	OpenFailure Kind = iota
	MkdirFailure
	MapFailure
	AllocFailure
)

func (k Kind) String() string {
	switch k {
	case OpenFailure:
		return "open failure"
	case MkdirFailure:
		return "mkdir failure"
	case MapFailure:
		return "map failure"
	case AllocFailure:
		return "alloc failure"
	default:
		return "unknown failure"
	}
}

// PlanError wraps a fatal planner error with its kind, the offending path,
// and the underlying errno so it can be reported without losing context.
type PlanError struct {
	Kind  Kind
	Path  string
	Errno error
}

func (e *PlanError) Error() string {
	if e.Path == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Path
}

func (e *PlanError) Unwrap() error { return e.Errno }

func newPlanError(kind Kind, path string, cause error) error {
	return errors.WithStack(&PlanError{Kind: kind, Path: path, Errno: cause})
}

// IsFatal reports whether err is a PlanError of the given kind.
func IsFatal(err error, kind Kind) bool {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
