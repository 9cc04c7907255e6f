package errors

import (
	"fmt"
)

var (
	// ErrNotFound is returned when the target row is absent, or absent in
	// the state the operation requires.
	ErrNotFound = fmt.Errorf("not found")
	// ErrInvalidState is returned when a restore targets a row that is
	// already active.
	ErrInvalidState = fmt.Errorf("invalid state")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrDuplicateName = fmt.Errorf("duplicate name")
)
