package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidOption      = fmt.Errorf("%w: option does not belong to this poll", ErrValidation)
	ErrPollNotFound       = errors.New("poll not found")
	ErrInvalidOptionCount = fmt.Errorf("poll must have between %d and %d options", MinPollOptions, MaxPollOptions)
	ErrMalformedItem      = errors.New("malformed item")
	ErrStore              = errors.New("store operation failed")
)
