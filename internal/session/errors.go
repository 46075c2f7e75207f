package session

import "errors"

// ErrRunInFlight is returned by Run while an optimization request is pending.
var ErrRunInFlight = errors.New("an optimization request is already in flight")

// UserInputError reports a run requested on an incomplete scene. Nothing is
// changed when it is returned.
type UserInputError struct {
	Reason string
}

func (e *UserInputError) Error() string { return e.Reason }
