package types

import "errors"

// ErrInvalidInput marks requests rejected before any computation because a
// required field is missing or out of range. Callers can test for it with
// errors.Is.
var ErrInvalidInput = errors.New("invalid input")
