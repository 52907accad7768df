package api_test

import (
	"strings"
	"testing"

	"github.com/programme-lv/pathtester/api"
	"github.com/stretchr/testify/require"
)

func TestTrimStrToRect(t *testing.T) {
	require.Equal(t, "", api.TrimStrToRect("", 2, 3))
	require.Equal(t, "ab\ncd", api.TrimStrToRect("ab\ncd", 2, 3))
	require.Equal(t, "abc[...]\nd\n[...]", api.TrimStrToRect("abcdef\nd\ne\nf", 2, 3))

	long := strings.Repeat("7 ", 1000)
	trimmed := api.TrimStrToRect(long, api.MaxMessageHeight, api.MaxMessageWidth)
	require.Len(t, trimmed, api.MaxMessageWidth+len("[...]"))
}
