// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dist

import (
	"errors"
	"fmt"
)

// Sentinel errors for distribution operations.
//
// Each typed error below matches exactly one sentinel through errors.Is,
// so callers can either branch on the kind or extract details with
// errors.As.
var (
	// ErrParameter is matched by ParameterError.
	ErrParameter = errors.New("invalid parameter")

	// ErrRange is matched by RangeError.
	ErrRange = errors.New("value out of range")

	// ErrOracle is matched by OracleError.
	ErrOracle = errors.New("distribution rejected parameters")

	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("distribution not found")
)

// =============================================================================
// ParameterError
// =============================================================================

// ParameterError reports parameter or input text that is missing,
// non-numeric, or not a finite real number.
//
// # Example
//
//	_, err := dist.ParseParam("abc")
//	var pe *dist.ParameterError
//	if errors.As(err, &pe) {
//	    fmt.Println(pe.Input) // "abc"
//	}
type ParameterError struct {
	// Name is the parameter label, or "" when not known.
	Name string

	// Input is the offending text (may be empty).
	Input string

	// Reason is a short description of the failure.
	Reason string
}

// Error returns a formatted error message.
func (e *ParameterError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %q %s", e.Name, e.Input, e.Reason)
	}
	return fmt.Sprintf("%q %s", e.Input, e.Reason)
}

// Is reports whether target is ErrParameter.
func (e *ParameterError) Is(target error) bool {
	return target == ErrParameter
}

// =============================================================================
// RangeError
// =============================================================================

// RangeError reports a numeric input outside its permitted interval,
// such as an inverse-query probability outside [0, 1].
type RangeError struct {
	// Name labels the quantity (e.g. "probability").
	Name string

	// Value is the rejected number.
	Value float64

	// Min and Max bound the permitted closed interval.
	Min, Max float64
}

// Error returns a formatted error message.
func (e *RangeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s must be between %g and %g, got %g", e.Name, e.Min, e.Max, e.Value)
	}
	return fmt.Sprintf("%g must be between %g and %g", e.Value, e.Min, e.Max)
}

// Is reports whether target is ErrRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// =============================================================================
// OracleError
// =============================================================================

// OracleError reports that the numerical backend rejected a parameter
// combination (for example a non-positive scale) or failed to evaluate.
type OracleError struct {
	// Family is the oracle family key (e.g. "gamma").
	Family string

	// Reason describes the rejection.
	Reason string
}

// Error returns a formatted error message.
func (e *OracleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Family, e.Reason)
}

// Is reports whether target is ErrOracle.
func (e *OracleError) Is(target error) bool {
	return target == ErrOracle
}

// =============================================================================
// NotFoundError
// =============================================================================

// NotFoundError reports an unknown distribution id.
type NotFoundError struct {
	ID string
}

// Error returns a formatted error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown distribution %q", e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// =============================================================================
// Presentation
// =============================================================================

// ErrorMessage converts any error into the short line shown to users.
//
// # Description
//
// Known kinds produce "Error: <message>". Anything else becomes the
// generic "Error in calculation" so numerical internals never leak into
// the result display.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		pe *ParameterError
		re *RangeError
		oe *OracleError
		ne *NotFoundError
	)
	switch {
	case errors.As(err, &re):
		return "Error: " + re.Error()
	case errors.As(err, &pe):
		return "Error: " + pe.Error()
	case errors.As(err, &oe):
		return "Error: " + oe.Error()
	case errors.As(err, &ne):
		return "Error: " + ne.Error()
	default:
		return "Error in calculation"
	}
}

// Kind returns a stable label for err, used as a metrics label.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrParameter):
		return "parameter"
	case errors.Is(err, ErrRange):
		return "range"
	case errors.Is(err, ErrOracle):
		return "oracle"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}
