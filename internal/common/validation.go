package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError represents a single field failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every failing field of one record.
type ValidationErrors struct {
	Fields []ValidationError
}

func (e *ValidationErrors) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Error())
	}
	return strings.Join(messages, "; ")
}

// Is lets errors.Is(err, ErrValidation) match aggregated failures.
func (e *ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors. Rules after the first failure are skipped.
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
			break
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns the aggregated failures, or nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return &ValidationErrors{Fields: append([]ValidationError(nil), v.errors...)}
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}
	return v.Error().Error()
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required fails on nil, nil pointers and blank strings.
func Required(fieldName string, value interface{}) *ValidationError {
	missing := &ValidationError{Field: fieldName, Value: value, Message: "field is required"}
	switch v := value.(type) {
	case nil:
		return missing
	case string:
		if strings.TrimSpace(v) == "" {
			return missing
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return missing
		}
	case *decimal.Decimal:
		if v == nil {
			return missing
		}
	case *int64:
		if v == nil {
			return missing
		}
	}
	return nil
}

// OneOf builds a rule accepting only the listed string values.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := stringValue(value)
		if !ok {
			return nil
		}
		for _, a := range allowed {
			if str == a {
				return nil
			}
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("invalid value %q, expected one of %s", str, strings.Join(allowed, ", ")),
		}
	}
}

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseISODateTime accepts the ISO-8601 shapes produced by extractors and LLMs.
func ParseISODateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 date", ErrInvalidInput, s)
}

// ISODateTime checks that a string value parses as ISO-8601.
func ISODateTime(fieldName string, value interface{}) *ValidationError {
	str, ok := stringValue(value)
	if !ok {
		return nil
	}
	if _, err := ParseISODateTime(str); err != nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "invalid date format"}
	}
	return nil
}

// PositiveDecimal requires a decimal strictly greater than zero.
func PositiveDecimal(fieldName string, value interface{}) *ValidationError {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	if !d.IsPositive() {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be greater than zero"}
	}
	return nil
}

// NonNegativeDecimal rejects decimals below zero.
func NonNegativeDecimal(fieldName string, value interface{}) *ValidationError {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	if d.IsNegative() {
		return &ValidationError{Field: fieldName, Value: value, Message: "must not be negative"}
	}
	return nil
}

var (
	currencyRegex   = regexp.MustCompile(`^[A-Z]{3}$`)
	maskedCardRegex = regexp.MustCompile(`^\*\d{4}$`)
)

// CurrencyCode requires three uppercase letters (ISO 4217 shape).
func CurrencyCode(fieldName string, value interface{}) *ValidationError {
	str, ok := stringValue(value)
	if !ok || str == "" {
		return nil
	}
	if !currencyRegex.MatchString(str) {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be 3 uppercase letters (ISO 4217)",
		}
	}
	return nil
}

// MaskedCard requires the "*NNNN" card suffix form.
func MaskedCard(fieldName string, value interface{}) *ValidationError {
	str, ok := stringValue(value)
	if !ok || str == "" {
		return nil
	}
	if !maskedCardRegex.MatchString(str) {
		return &ValidationError{Field: fieldName, Value: value, Message: "must look like *NNNN"}
	}
	return nil
}

func UUID(fieldName string, value interface{}) *ValidationError {
	str, ok := stringValue(value)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}

	if _, err := uuid.Parse(str); err != nil {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be a valid UUID",
		}
	}
	return nil
}

// ValidateAndReturnError validates and returns InvalidArgumentError if validation fails
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return InvalidArgumentError(validator.ErrorMessage())
	}
	return nil
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}
