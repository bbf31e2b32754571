package cvss

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue is returned when a value is outside a metric's domain.
	ErrInvalidValue = errors.New("invalid metric value")
	// ErrUnknownMacroVector signals a macro vector missing from the lookup
	// table. The classifier cannot produce one, so seeing it is a bug.
	ErrUnknownMacroVector = errors.New("macro vector not found in lookup table")
	// ErrUnsupportedVersion is returned for vectors of other CVSS versions.
	ErrUnsupportedVersion = errors.New("unsupported CVSS version")
)

// ValueError reports a metric value rejected by Vector.Set.
type ValueError struct {
	Metric Metric
	Value  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %q is not one of %v", e.Metric, e.Value, e.Metric.Values())
}

func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}
