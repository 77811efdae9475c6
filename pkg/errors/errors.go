package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so sentinel comparisons survive Clone and Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Enrollment engine errors.
var (
	ErrStudentNotFound  = New("STUDENT_NOT_FOUND", http.StatusNotFound, "student not found")
	ErrSubjectNotFound  = New("SUBJECT_NOT_FOUND", http.StatusNotFound, "subject not found")
	ErrInvalidTerm      = New("INVALID_TERM", http.StatusBadRequest, "invalid academic term")
	ErrGraduated        = New("GRADUATED", http.StatusConflict, "student has completed the curriculum")
	ErrMandatoryOmitted = New("MANDATORY_OMITTED", http.StatusUnprocessableEntity, "every mandatory retake must be selected")
	ErrUnitsExceeded    = New("UNITS_EXCEEDED", http.StatusUnprocessableEntity, "selected units exceed the semester limit")
	ErrNothingSelected  = New("NOTHING_SELECTED", http.StatusUnprocessableEntity, "select at least one subject")
	ErrUnknownCandidate = New("UNKNOWN_CANDIDATE", http.StatusConflict, "selected subject is not offered for this term")
	ErrInvalidGrade     = New("INVALID_GRADE", http.StatusBadRequest, "grade must be 0 or between 1.0 and 5.0")
	ErrStoreUnavailable = New("STORE_UNAVAILABLE", http.StatusServiceUnavailable, "record store unavailable")
	ErrNothingChanged   = New("NOTHING_CHANGED", http.StatusConflict, "student record changed since it was read")
)

// UnitsExceeded reports a selection whose unit load is above the limit.
func UnitsExceeded(actual, limit int) *Error {
	return WithDetails(
		Clone(ErrUnitsExceeded, fmt.Sprintf("selected units (%d) exceed the maximum allowed (%d)", actual, limit)),
		map[string]interface{}{"actual": actual, "limit": limit},
	)
}

// UnknownCandidate reports a selected code that was not offered.
func UnknownCandidate(code string) *Error {
	return WithDetails(
		Clone(ErrUnknownCandidate, fmt.Sprintf("subject %s is not offered for this term", code)),
		map[string]interface{}{"code": code},
	)
}

// InvalidGrade reports a grade outside the accepted scale.
func InvalidGrade(value float64) *Error {
	return WithDetails(
		Clone(ErrInvalidGrade, fmt.Sprintf("grade %.2f must be 0 or between 1.0 and 5.0", value)),
		map[string]interface{}{"value": value},
	)
}

// StoreUnavailable wraps a record store failure.
func StoreUnavailable(err error, message string) *Error {
	return Wrap(err, ErrStoreUnavailable.Code, ErrStoreUnavailable.Status, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	if err.Details != nil {
		clone.Details = make(map[string]interface{}, len(err.Details))
		for k, v := range err.Details {
			clone.Details[k] = v
		}
	}
	return &clone
}

// WithDetails attaches structured details to the error.
func WithDetails(err *Error, details map[string]interface{}) *Error {
	if err == nil {
		return nil
	}
	if err.Details == nil {
		err.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		err.Details[k] = v
	}
	return err
}
