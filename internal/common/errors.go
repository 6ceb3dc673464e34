package common

// AppError is a failure that already knows how it should be presented:
// a stable machine code, a human message, and the HTTP status to use.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError wrapping err.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// WithDetails attaches structured detail (field errors and the like) and
// returns the receiver for chaining.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}
