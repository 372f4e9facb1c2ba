package knngraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knngraph/internal/refine"
	"github.com/hupe1980/knngraph/internal/rptree"
)

var (
	// ErrTreeSplitFailure is returned when tree recursion is invoked on
	// fewer than two points. It indicates malformed input.
	ErrTreeSplitFailure = errors.New("knngraph: tree split failure")

	// ErrDegenerateData is returned when the forest phase cannot produce
	// usable candidate neighborhoods, typically because too many points
	// coincide.
	ErrDegenerateData = errors.New("knngraph: degenerate data")

	// ErrEmptyNeighborhood is returned when a point ends a refinement
	// iteration with no selected neighbors.
	ErrEmptyNeighborhood = errors.New("knngraph: empty neighborhood")

	// ErrNilData is returned when Build is called without a data matrix.
	ErrNilData = errors.New("knngraph: nil data matrix")
)

// ErrInvalidK indicates a K that is not positive or exceeds the candidate
// threshold L.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidK struct {
	K         int
	Threshold int
	cause     error
}

func (e *ErrInvalidK) Error() string {
	return fmt.Sprintf("invalid k: %d (threshold %d)", e.K, e.Threshold)
}

func (e *ErrInvalidK) Unwrap() error { return e.cause }

// ErrInvalidParameter indicates an out-of-range structural parameter: a
// non-positive tree count or leaf threshold, or a negative max depth or
// iteration count.
type ErrInvalidParameter struct {
	Name  string
	Value int
}

func (e *ErrInvalidParameter) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Name, e.Value)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, rptree.ErrSplitFailure) {
		return fmt.Errorf("%w: %w", ErrTreeSplitFailure, err)
	}
	if errors.Is(err, rptree.ErrDegenerate) || errors.Is(err, rptree.ErrEmptyColumn) {
		return fmt.Errorf("%w: %w", ErrDegenerateData, err)
	}
	if errors.Is(err, refine.ErrEmptyNeighborhood) {
		return fmt.Errorf("%w: %w", ErrEmptyNeighborhood, err)
	}

	return err
}
