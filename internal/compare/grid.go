// Package compare checks candidate output: against reference distances
// (absolute mode) or against the first well-formed output seen for the same
// scenario (relative mode).
package compare

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// FormatError means the output is not a K x N grid of integers.
type FormatError struct {
	Line   int // 1-based; 0 when the problem is the line count
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return "invalid output format: " + e.Reason
	}
	return fmt.Sprintf("invalid output format on line %d: %s", e.Line, e.Reason)
}

// MismatchError is the first distance that disagrees with the baseline.
type MismatchError struct {
	Source   int
	Target   int
	Expected int64
	Actual   int64
	// Against names the candidate that supplied the baseline in relative mode.
	Against string
}

func (e *MismatchError) Error() string {
	if e.Against != "" {
		return fmt.Sprintf("distance from %d to %d differs from %s: expected %d, got %d",
			e.Source, e.Target, e.Against, e.Expected, e.Actual)
	}
	return fmt.Sprintf("wrong distance from %d to %d: expected %d, got %d",
		e.Source, e.Target, e.Expected, e.Actual)
}

// scanGrid walks out as k lines of n integers, calling row for every line.
// Trailing blank lines are ignored; any other deviation is a *FormatError.
func scanGrid(out []byte, k, n int, row func(i int, vals []int64) error) error {
	lines := splitLines(out)
	if len(lines) != k {
		return &FormatError{Reason: fmt.Sprintf("expected %d lines, got %d", k, len(lines))}
	}

	vals := make([]int64, 0, n)
	for i, line := range lines {
		vals = vals[:0]
		for _, tok := range bytes.Fields(line) {
			if len(vals) == n {
				return &FormatError{Line: i + 1, Reason: fmt.Sprintf("expected %d values, got more", n)}
			}
			v, err := strconv.ParseInt(string(tok), 10, 64)
			if err != nil {
				return &FormatError{Line: i + 1, Reason: fmt.Sprintf("token %d %q is not an integer", len(vals)+1, truncate(tok))}
			}
			vals = append(vals, v)
		}
		if len(vals) != n {
			return &FormatError{Line: i + 1, Reason: fmt.Sprintf("expected %d values, got %d", n, len(vals))}
		}
		if err := row(i, vals); err != nil {
			return err
		}
	}
	return nil
}

// ParseGrid parses out into k rows of n distances.
func ParseGrid(out []byte, k, n int) ([][]int64, error) {
	grid := make([][]int64, 0, k)
	err := scanGrid(out, k, n, func(_ int, vals []int64) error {
		grid = append(grid, append([]int64(nil), vals...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// WriteGrid writes grid in the candidate output format, one row per line.
func WriteGrid(w io.Writer, grid [][]int64) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	buf := make([]byte, 0, 1<<10)
	for _, row := range grid {
		buf = buf[:0]
		for j, v := range row {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendInt(buf, v, 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// CheckAbsolute compares out line by line against expected, where expected[i]
// is the reference vector of sources[i]. It returns nil, a *FormatError or the
// first *MismatchError.
func CheckAbsolute(out []byte, sources []int, expected [][]int64, n int) error {
	if len(expected) != len(sources) {
		return fmt.Errorf("have %d reference vectors for %d sources", len(expected), len(sources))
	}
	return scanGrid(out, len(sources), n, func(i int, vals []int64) error {
		for j, v := range vals {
			if v != expected[i][j] {
				return &MismatchError{Source: sources[i], Target: j, Expected: expected[i][j], Actual: v}
			}
		}
		return nil
	})
}

// splitLines splits on '\n', strips '\r' and drops trailing blank lines.
func splitLines(out []byte) [][]byte {
	lines := bytes.Split(out, []byte{'\n'})
	for i := range lines {
		lines[i] = bytes.TrimSuffix(lines[i], []byte{'\r'})
	}
	for len(lines) > 0 && len(bytes.TrimSpace(lines[len(lines)-1])) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func truncate(tok []byte) string {
	if len(tok) > 20 {
		return string(tok[:20]) + "..."
	}
	return string(tok)
}
