// Package ccvterr implements the error kinds of spec §7: every failure the
// core can surface is one of DegenerateTriangulation, SolverDivergence,
// InvalidConfig or InvariantViolation. Messages are built with gosl/chk.Err,
// the same formatting gofem uses at every return-site failure; the Kind
// wrapper on top lets callers (in particular the optimizer driver) branch
// on failure class via errors.As instead of string matching.
package ccvterr

import (
	"errors"

	"github.com/cpmech/gosl/chk"
)

// Kind classifies a CCVT-N failure.
type Kind int

const (
	// DegenerateTriangulation: duplicate or collinear sites prevent a
	// valid power diagram; the current step is aborted.
	DegenerateTriangulation Kind = iota
	// SolverDivergence: the Laplacian solve failed tolerance after the
	// maximum number of iterations.
	SolverDivergence
	// InvalidConfig: domain extent non-positive, sigma<=0, or a
	// capacity/neighbor vector size mismatch.
	InvalidConfig
	// InvariantViolation: the area sum drifted too far from the domain
	// integral.
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case DegenerateTriangulation:
		return "DegenerateTriangulation"
	case SolverDivergence:
		return "SolverDivergence"
	case InvalidConfig:
		return "InvalidConfig"
	case InvariantViolation:
		return "InvariantViolation"
	default:
		return "Unknown"
	}
}

// Error wraps a classified failure.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.err.Error() }
func (e *Error) Unwrap() error { return e.err }

// New builds a classified error with a chk.Err-formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, err: chk.Err(format, args...)}
}

// Is reports whether err is (or wraps) a classified error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
