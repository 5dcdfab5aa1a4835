package wall

import (
	"errors"
)

var (
	ErrInternal       = errors.New("internal error")
	ErrInvalidContent = errors.New("content must be between 1 and 280 characters")
)
