package storage

import (
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrNoEvents = errors.New("no events to handle")
	ErrClose    = errors.New("failed to close database")
)
