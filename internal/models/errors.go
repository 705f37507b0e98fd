package models

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInvalidType  = "INVALID_TYPE"
	ErrCodeFileTooLarge = "FILE_TOO_LARGE"
	ErrCodeNoImages     = "NO_IMAGES"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidID    = "INVALID_ID"
)

// DomainError is a recoverable input error: the handler reports it to the
// caller for correction instead of failing the request. IO and persistence
// errors are never wrapped in DomainError; they propagate raw and map to 500.
type DomainError struct {
	Code    string
	Message string
	Field   string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewFieldError creates a validation error bound to a form field
func NewFieldError(code, field, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// Common domain errors
var (
	ErrProductNotFound  = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrCategoryNotFound = NewDomainError(ErrCodeNotFound, "Category not found")
	ErrInvalidProductID = NewDomainError(ErrCodeInvalidID, "Invalid product ID format")
	ErrNoImages         = NewDomainError(ErrCodeNoImages, "At least one product photo is required")
)
