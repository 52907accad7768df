package compare_test

import (
	"bytes"
	"testing"

	"github.com/programme-lv/pathtester/internal/compare"
	"github.com/stretchr/testify/require"
)

func TestCheckAbsolute(t *testing.T) {
	sources := []int{0, 2}
	expected := [][]int64{{0, 5, 12}, {-1, -1, 0}}

	tests := []struct {
		name     string
		out      string
		line     int
		mismatch *compare.MismatchError
	}{
		{name: "exact", out: "0 5 12\n-1 -1 0\n"},
		{name: "no trailing newline", out: "0 5 12\n-1 -1 0"},
		{name: "crlf and extra blanks", out: "0  5\t12\r\n-1 -1 0\r\n\n\n"},
		{name: "wrong value", out: "0 5 13\n-1 -1 0\n",
			mismatch: &compare.MismatchError{Source: 0, Target: 2, Expected: 12, Actual: 13}},
		{name: "reachable reported unreachable", out: "0 -1 12\n-1 -1 0\n",
			mismatch: &compare.MismatchError{Source: 0, Target: 1, Expected: 5, Actual: -1}},
		{name: "second row wrong", out: "0 5 12\n0 -1 0\n",
			mismatch: &compare.MismatchError{Source: 2, Target: 0, Expected: -1, Actual: 0}},
		{name: "too few lines", out: "0 5 12\n", line: -1},
		{name: "too many lines", out: "0 5 12\n-1 -1 0\n1 1 1\n", line: -1},
		{name: "short row", out: "0 5\n-1 -1 0\n", line: 1},
		{name: "long row", out: "0 5 12\n-1 -1 0 7\n", line: 2},
		{name: "not an integer", out: "0 five 12\n-1 -1 0\n", line: 1},
		{name: "float", out: "0 5 12\n-1 -1 0.0\n", line: 2},
		{name: "empty", out: "", line: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compare.CheckAbsolute([]byte(tt.out), sources, expected, 3)
			switch {
			case tt.line != 0:
				var fe *compare.FormatError
				require.ErrorAs(t, err, &fe)
				if tt.line > 0 {
					require.Equal(t, tt.line, fe.Line)
				} else {
					require.Zero(t, fe.Line)
				}
			case tt.mismatch != nil:
				var me *compare.MismatchError
				require.ErrorAs(t, err, &me)
				require.Equal(t, tt.mismatch, me)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestCheckAbsoluteNoSources(t *testing.T) {
	require.NoError(t, compare.CheckAbsolute(nil, nil, nil, 4))
	require.NoError(t, compare.CheckAbsolute([]byte("\n"), nil, nil, 4))
}

func TestParseGrid(t *testing.T) {
	grid, err := compare.ParseGrid([]byte("0 5 12\n-1 -1 0\n"), 2, 3)
	require.NoError(t, err)
	require.Equal(t, [][]int64{{0, 5, 12}, {-1, -1, 0}}, grid)

	_, err = compare.ParseGrid([]byte("0 5 12\n"), 2, 3)
	require.Error(t, err)
}

func TestWriteGridIsParsedBack(t *testing.T) {
	grid := [][]int64{{0, 5, 12}, {-1, -1, 0}}
	var buf bytes.Buffer
	require.NoError(t, compare.WriteGrid(&buf, grid))
	require.Equal(t, "0 5 12\n-1 -1 0\n", buf.String())

	parsed, err := compare.ParseGrid(buf.Bytes(), 2, 3)
	require.NoError(t, err)
	require.Equal(t, grid, parsed)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "0 5 12\n-1 -1 0\n", string(compare.Normalize([]byte("  0\t5  12 \r\n-1 -1 0\n\n"))))
	require.Equal(t, compare.Digest([]byte("0 5 12\n")), compare.Digest([]byte("0  5 12")))
	require.NotEqual(t, compare.Digest([]byte("0 5 12\n")), compare.Digest([]byte("0 5 13\n")))
	require.Equal(t, "7 0 -1\n", string(compare.Normalize([]byte("007 -0 -01\n"))))
}

func TestCheckRelativeComparesValuesNotText(t *testing.T) {
	sources := []int{0}
	r := compare.NewRegistry()

	_, err := r.CheckRelative("s", "alpha", []byte("0 5 12\n"), sources, 3)
	require.NoError(t, err)

	isBase, err := r.CheckRelative("s", "padded", []byte("-0 005 +12\n"), sources, 3)
	require.NoError(t, err)
	require.False(t, isBase)

	_, err = r.CheckRelative("s", "off", []byte("00 05 13\n"), sources, 3)
	var me *compare.MismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, &compare.MismatchError{Source: 0, Target: 2, Expected: 12, Actual: 13, Against: "alpha"}, me)
}

func TestCheckRelative(t *testing.T) {
	sources := []int{0, 2}
	r := compare.NewRegistry()

	// Malformed output never becomes the baseline.
	_, err := r.CheckRelative("s1", "broken", []byte("0 5\n"), sources, 3)
	var fe *compare.FormatError
	require.ErrorAs(t, err, &fe)
	_, ok := r.Baseline("s1")
	require.False(t, ok)

	isBase, err := r.CheckRelative("s1", "alpha", []byte("0 5 12\n-1 -1 0\n"), sources, 3)
	require.NoError(t, err)
	require.True(t, isBase)
	who, ok := r.Baseline("s1")
	require.True(t, ok)
	require.Equal(t, "alpha", who)

	isBase, err = r.CheckRelative("s1", "beta", []byte("0 5 12 \n-1  -1 0"), sources, 3)
	require.NoError(t, err)
	require.False(t, isBase)

	_, err = r.CheckRelative("s1", "gamma", []byte("0 5 12\n-1 4 0\n"), sources, 3)
	var me *compare.MismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, &compare.MismatchError{Source: 2, Target: 1, Expected: -1, Actual: 4, Against: "alpha"}, me)

	// Scenarios keep separate baselines.
	isBase, err = r.CheckRelative("s2", "gamma", []byte("0 5 12\n-1 4 0\n"), sources, 3)
	require.NoError(t, err)
	require.True(t, isBase)
}

func TestMismatchErrorMessage(t *testing.T) {
	err := &compare.MismatchError{Source: 1, Target: 3, Expected: 7, Actual: 9}
	require.Equal(t, "wrong distance from 1 to 3: expected 7, got 9", err.Error())
	err.Against = "alpha"
	require.Equal(t, "distance from 1 to 3 differs from alpha: expected 7, got 9", err.Error())
}
