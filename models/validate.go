package models

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of all model validation failures. Constructors
// detect these before any database access happens, so a validation failure
// never leaves a partial write behind.
var ErrValidation = errors.New("model validation failed")

// Field length ceilings enforced by the schema
const (
	MaxNameLen  = 12  // nomenclature component names
	MaxShortLen = 25  // short form of units, e.g. m/s
	MaxTextLen  = 255 // descriptions, URLs, long form of units
)

// checkText verifies that a required text field is non-empty and within bounds
func checkText(field, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
	}
	if len(value) > max {
		return fmt.Errorf("%w: %s exceeds %d char max", ErrValidation, field, max)
	}
	return nil
}
