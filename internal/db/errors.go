package db

import "errors"

var (
	ErrAlreadyOpen     = errors.New("already clocked in")
	ErrNoOpenShift     = errors.New("no open shift to clock out")
	ErrInvalidInterval = errors.New("clock out time must be after clock in time")
	ErrNotFound        = errors.New("shift not found")
	ErrValidation      = errors.New("invalid shift")
)

// ValidationError describes the first rule a manual shift or setting broke
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Is lets callers match any validation failure with errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
