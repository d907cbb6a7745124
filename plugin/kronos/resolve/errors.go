package resolve

import (
	"github.com/pkg/errors"
)

// Every error below, together with value.ErrInvalidDate,
// value.ErrUnsupportedInterval and calendar.ErrUnknownName, finalizes to a
// datetime parsing error for the fragment that produced it.
var (
	ErrWeekdayMismatch  = errors.New("date does not fall on the named weekday")
	ErrUnsupportedShape = errors.New("unsupported fragment shape")
	ErrAmbiguous        = errors.New("fragment is invalid under one of its timezone readings")
	ErrRejected         = errors.New("phrase rejected")
	ErrOutOfRange       = errors.New("value out of range")
)

// ambiguityError marks a deferral where exactly one of the two evaluations
// failed. It matches ErrAmbiguous and unwraps to the failing evaluation.
type ambiguityError struct {
	cause error
}

func (e *ambiguityError) Error() string        { return ErrAmbiguous.Error() + ": " + e.cause.Error() }
func (e *ambiguityError) Is(target error) bool { return target == ErrAmbiguous }
func (e *ambiguityError) Unwrap() error        { return e.cause }
