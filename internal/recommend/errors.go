package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks caller-input faults: an unknown mood, an
	// intensity or personalization weight outside bounds, a blank search
	// query. They are rejected before any vector math runs.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a row index outside corpus bounds. A track id
	// missing from the corpus is not this error; that case degrades to the
	// fallback path internally.
	ErrNotFound = errors.New("not found")

	// ErrNotReady marks a fatal precondition: the engine cannot exist over
	// an empty or unbuilt corpus.
	ErrNotReady = errors.New("recommender not ready")
)

func wrapf(marker error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", marker, fmt.Sprintf(format, args...))
}
