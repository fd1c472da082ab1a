package validation

import (
	"fmt"
	"strings"
)

// ValidationErrorType represents the type of validation error
type ValidationErrorType string

const (
	ErrorTypeRequired     ValidationErrorType = "required"
	ErrorTypeInvalidValue ValidationErrorType = "invalid_value"
	ErrorTypeInvalidType  ValidationErrorType = "invalid_type"
)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   interface{}
}

// Error implements the error interface for FieldError
func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface for ValidationError
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation error"
	}

	if len(ve.Errors) == 1 {
		return ve.Errors[0].Error()
	}

	var messages []string
	for _, err := range ve.Errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

// AddError adds a new field error to the validation error
func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value interface{}) {
	ve.Errors = append(ve.Errors, FieldError{
		Field:   field,
		Type:    errorType,
		Message: message,
		Value:   value,
	})
}

// AddRequiredError adds a required field error with a caller-supplied message
func (ve *ValidationError) AddRequiredError(field string, message string) {
	ve.AddError(field, ErrorTypeRequired, message, nil)
}

// AddInvalidValueError adds an invalid value error with a caller-supplied message
func (ve *ValidationError) AddInvalidValueError(field string, value interface{}, message string) {
	ve.AddError(field, ErrorTypeInvalidValue, message, value)
}

// AddInvalidTypeError adds an error for a value of the wrong JSON type
func (ve *ValidationError) AddInvalidTypeError(field string, value interface{}, expected string) {
	message := fmt.Sprintf("%s must be a %s", strings.ToUpper(field[:1])+field[1:], expected)
	ve.AddError(field, ErrorTypeInvalidType, message, value)
}

// NewValidationError creates a new ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{
		Errors: make([]FieldError, 0),
	}
}

// GetUserFriendlyMessage returns a user-friendly error message
func (ve *ValidationError) GetUserFriendlyMessage() string {
	if len(ve.Errors) == 0 {
		return "Input validation failed"
	}

	if len(ve.Errors) == 1 {
		return ve.Errors[0].Message
	}

	var messages []string
	for _, err := range ve.Errors {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}
