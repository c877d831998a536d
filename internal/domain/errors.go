package domain

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrNothingToDefer   = errors.New("nothing to defer")
	ErrAlarmScheduling  = errors.New("alarm scheduling failed")
	ErrDuplicateID      = errors.New("duplicate reminder id")
)
