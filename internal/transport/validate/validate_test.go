package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContent(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty", "", true},
		{"single char", "a", false},
		{"exactly at cap", strings.Repeat("a", 280), false},
		{"one over cap", strings.Repeat("a", 281), true},
		{"multibyte at cap", strings.Repeat("é", 280), false},
		{"multibyte over cap", strings.Repeat("é", 281), true},
		{"plain message", "Hello", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Content(tc.content)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	require.Equal(t, 280, Remaining(""))
	require.Equal(t, 275, Remaining("Hello"))
	require.Equal(t, 0, Remaining(strings.Repeat("a", 280)))
	require.Equal(t, -1, Remaining(strings.Repeat("a", 281)))

	// counted per character, not per byte
	require.Equal(t, 277, Remaining("привет"[:6])) // 3 cyrillic runes, 6 bytes
	require.Equal(t, 274, Remaining("привет"))
}
