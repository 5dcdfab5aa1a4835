package validate

import (
	"fmt"
	"unicode/utf8"
)

// MaxContentLength is the compose cap, counted in characters rather than
// bytes so pasted multi-byte input behaves the same as typed ASCII.
const MaxContentLength = 280

func Content(content string) error {
	n := utf8.RuneCountInString(content)

	if n == 0 {
		return fmt.Errorf("%s", "content can't be empty")
	}
	if n > MaxContentLength {
		return fmt.Errorf("content can't exceed %d characters", MaxContentLength)
	}

	return nil
}

// Remaining is the derived counter value shown next to the compose box
func Remaining(content string) int {
	return MaxContentLength - utf8.RuneCountInString(content)
}
