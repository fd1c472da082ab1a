package errors

import (
	"fmt"
	"sort"
)

// ErrorType is the category of an AppError. Its value is the name used in
// messages and logs.
type ErrorType string

// Categories the service distinguishes. Validation, NotFound and InvalidInput
// are caused by the client; the rest are failures of the service itself.
const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeStorage      ErrorType = "storage"
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeInternal     ErrorType = "internal"
)

func (et ErrorType) String() string {
	if et == "" {
		return "unknown"
	}
	return string(et)
}

// clientCaused reports whether errors of this type come from a bad request
// rather than from the service.
func (et ErrorType) clientCaused() bool {
	switch et {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput:
		return true
	}
	return false
}

// AppError carries a category, a client-facing message and a machine code,
// plus the underlying cause and any fields worth logging.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// IsType reports whether e belongs to the given category.
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext records key on the error and returns it for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields flattens Context into key/value pairs for a structured logger,
// in the order the keys sort.
func (e *AppError) LogFields() []interface{} {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		fields = append(fields, k, e.Context[k])
	}
	return fields
}
