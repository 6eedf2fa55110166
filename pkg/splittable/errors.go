package splittable

import (
	"errors"
	"fmt"
)

// ErrContractViolation marks a broken precondition. The page being laid out
// must be abandoned; errors.Is matches every error built from it.
var ErrContractViolation = errors.New("splittable: contract violation")

var (
	// ErrNegativeBudget is returned by Split for a height budget below zero.
	ErrNegativeBudget = fmt.Errorf("%w: negative height budget", ErrContractViolation)
	// ErrDummyCell is returned when a span placeholder is handed to Split.
	ErrDummyCell = fmt.Errorf("%w: span placeholder has no content to split", ErrContractViolation)
)

// contractViolation tags a collaborator error (a dummy pointing at a missing
// row, an unknown cell ID) as a contract violation while keeping it visible
// to errors.Is.
func contractViolation(err error) error {
	if err == nil || errors.Is(err, ErrContractViolation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrContractViolation, err)
}
