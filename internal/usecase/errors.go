package usecase

import "errors"

// ErrInvalidInput marks caller input that could not be parsed.
var ErrInvalidInput = errors.New("invalid input")
