package sl

import (
	"log/slog"
)

// Err wraps an error into a slog attribute
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
