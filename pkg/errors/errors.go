package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error codes
const (
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// Friend request lifecycle error codes
const (
	ErrCodeSelfRequest      = "SELF_REQUEST"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	ErrCodeAlreadyFriends   = "ALREADY_FRIENDS"
	ErrCodeWrongActor       = "WRONG_ACTOR"
	ErrCodeInvalidState     = "INVALID_STATE"
)

// Privacy gate error codes
const (
	ErrCodeNotFriends      = "NOT_FRIENDS"
	ErrCodeCategoryPrivate = "CATEGORY_PRIVATE"
)

// CodeOf returns the error code of err, or ErrCodeInternalError for
// anything that is not an *AppError.
func CodeOf(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// HasCode reports whether err is an *AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
