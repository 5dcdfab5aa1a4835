package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("photo.png")

	require.True(t, strings.HasPrefix(key, Namespace+"/"))
	require.True(t, strings.HasSuffix(key, "-photo.png"))
}

func TestObjectKeyAvoidsCollisions(t *testing.T) {
	first := ObjectKey("photo.png")
	second := ObjectKey("photo.png")

	require.NotEqual(t, first, second)
}

func TestObjectKeyStripsPath(t *testing.T) {
	key := ObjectKey("../../etc/passwd")

	require.True(t, strings.HasPrefix(key, Namespace+"/"))
	require.NotContains(t, key, "..")
	require.True(t, strings.HasSuffix(key, "-passwd"))
}

func TestObjectKeySanitizesName(t *testing.T) {
	key := ObjectKey("my photo (1).png")

	require.NotContains(t, key, " ")
	require.NotContains(t, key, "(")
	require.True(t, strings.HasSuffix(key, ".png"))
}

func TestObjectKeyEmptyName(t *testing.T) {
	key := ObjectKey("")

	require.True(t, strings.HasPrefix(key, Namespace+"/"))
	require.True(t, strings.HasSuffix(key, "-image"))
}
