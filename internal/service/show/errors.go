package show

import "errors"

var (
	ErrStartTimeTooEarly = errors.New("start time must be at least five minutes in the future")
	ErrPassCodeInUse     = errors.New("pass code already used by an active show")
	ErrNotResubmittable  = errors.New("only errored shows can be resubmitted")
)
