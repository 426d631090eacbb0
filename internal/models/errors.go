// internal/models/errors.go
package models

import "errors"

var (
	// ErrInvalidRange is returned for a range whose lower bound exceeds its upper bound.
	ErrInvalidRange = errors.New("invalid range")
	// ErrMissingVariantRule is returned when a decision table has no branch
	// for the patient's age/weight combination.
	ErrMissingVariantRule = errors.New("missing variant rule")
	ErrUnknownVariant     = errors.New("unknown patient variant")
	ErrInvalidProfile     = errors.New("invalid patient profile")
	ErrUnknownCondition   = errors.New("unknown condition")
	ErrInvalidDayCount    = errors.New("total days must be at least 1")
	// ErrUnitMismatch is returned when an add_fixed supplement is expressed in
	// a different dose unit than the entry it is added to.
	ErrUnitMismatch = errors.New("unit mismatch")
)

// WarningCode classifies a non-fatal resolution finding.
type WarningCode string

const (
	WarnAmbiguousPrecedence WarningCode = "ambiguous_condition_precedence"
	WarnPopulationMismatch  WarningCode = "condition_population_mismatch"
)

// Warning is surfaced to callers alongside a schedule; it never fails resolution.
type Warning struct {
	Code       WarningCode `json:"code"`
	Category   string      `json:"category,omitempty"`
	Nutrient   string      `json:"nutrient,omitempty"`
	Conditions []string    `json:"conditions,omitempty"`
	Message    string      `json:"message"`
}
