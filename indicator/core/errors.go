package core

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Sentinel errors – exported so callers can compare with errors.Is()
// ---------------------------------------------------------------------------
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingInput     = errors.New("missing input")
	ErrUnknownIndicator = errors.New("unknown indicator")
	ErrNonFinite        = errors.New("non-finite input value")
	ErrCycle            = errors.New("dependency cycle")
)

// ParamError describes a parameter outside its valid domain.
type ParamError struct {
	Param  string
	Reason string
}

// InvalidParam builds a ParamError with a formatted reason.
func InvalidParam(param, format string, args ...any) *ParamError {
	return &ParamError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

func (e *ParamError) Error() string { return e.Param + " " + e.Reason }

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// ConfigError reports an indicator request rejected before computation.
type ConfigError struct {
	Indicator string
	Param     string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("indicator %q: %v", e.Indicator, e.Err)
	}
	return fmt.Sprintf("indicator %q: parameter %q: %v", e.Indicator, e.Param, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MissingInputError reports an input column required by an indicator that is
// absent from the evaluated frame.
type MissingInputError struct {
	Indicator string
	Field     string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("indicator %q: input field %q not present", e.Indicator, e.Field)
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// NumericError reports a fail-fast numeric problem at a specific position.
type NumericError struct {
	Indicator string
	Field     string
	Index     int
	Value     float64
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("indicator %q: field %q holds %v at position %d", e.Indicator, e.Field, e.Value, e.Index)
}

func (e *NumericError) Unwrap() error { return ErrNonFinite }
