package montecarlo

import "errors"

var (
	// ErrInvalidParameter reports an argument outside its domain.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientData reports too few observations for an estimate.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateData reports observations that make an estimate undefined.
	ErrDegenerateData = errors.New("degenerate data")
	// ErrEmptyInput reports an empty sample.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnknownScenario reports a scenario name missing from a Catalog.
	ErrUnknownScenario = errors.New("unknown scenario")
)
