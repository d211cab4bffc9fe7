package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidationError reports malformed input or a referenced entity that is
// missing or ineligible. Nothing was written when it is returned.
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that the entity targeted by a read, update or delete
// does not exist.
type NotFoundError struct {
	Resource string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NewNotFoundError creates a NotFoundError for resource ("Task", "User").
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// StoreError wraps a persistence failure. Retryable is set for transaction
// conflicts; the transaction has already been rolled back, so the whole
// operation may be repeated.
type StoreError struct {
	Op        string
	Err       error
	Retryable bool
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for op.
func NewStoreError(op string, err error, retryable bool) *StoreError {
	return &StoreError{Op: op, Err: err, Retryable: retryable}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsStore reports whether err is or wraps a StoreError.
func IsStore(err error) bool {
	var target *StoreError
	return stderrors.As(err, &target)
}

// Respond sends the {message, data} envelope
func Respond(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, gin.H{
		"message": message,
		"data":    data,
	})
}

// RespondWithError maps err onto its status code and sends the envelope
func RespondWithError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		storeErr      *StoreError
	)

	switch {
	case stderrors.As(err, &validationErr):
		BadRequest(c, "Validation Error: "+validationErr.Message)
	case stderrors.As(err, &notFoundErr):
		NotFound(c, notFoundErr.Error())
	case stderrors.As(err, &storeErr):
		Respond(c, http.StatusInternalServerError, "Database Error", gin.H{
			"error":     storeErr.Error(),
			"retryable": storeErr.Retryable,
		})
	default:
		InternalError(c, err)
	}
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	Respond(c, http.StatusBadRequest, message, gin.H{})
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Respond(c, http.StatusNotFound, message, gin.H{})
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, err error) {
	Respond(c, http.StatusInternalServerError, "Internal Server Error", gin.H{
		"error": err.Error(),
	})
}
