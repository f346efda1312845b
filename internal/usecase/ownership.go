package usecase

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

// Scope carries the authenticated caller and the user named in the route, if
// any. Rows are only ever visible to their owner, and new rows always belong
// to the caller.
type Scope struct {
	Caller uuid.UUID
	Path   uuid.UUID
}

func Own(caller uuid.UUID) Scope {
	return Scope{Caller: caller}
}

// Foreign reports whether the route names a user other than the caller.
func (s Scope) Foreign() bool {
	return s.Path != uuid.Nil && s.Path != s.Caller
}
