package compare

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/puzpuzpuz/xsync/v3"
)

// Normalize collapses runs of whitespace inside each line to a single space,
// trims every line and drops trailing blank lines. Integer tokens are rewritten
// in canonical form, so "007" and "7" normalize alike.
func Normalize(out []byte) []byte {
	lines := splitLines(out)
	b := make([]byte, 0, len(out))
	for _, line := range lines {
		for i, f := range bytes.Fields(line) {
			if i > 0 {
				b = append(b, ' ')
			}
			if v, err := strconv.ParseInt(string(f), 10, 64); err == nil {
				b = strconv.AppendInt(b, v, 10)
			} else {
				b = append(b, f...)
			}
		}
		b = append(b, '\n')
	}
	return b
}

// Digest is the hex sha256 of the normalized output.
func Digest(out []byte) string {
	sum := sha256.Sum256(Normalize(out))
	return hex.EncodeToString(sum[:])
}

type baseline struct {
	candidate  string
	digest     string
	normalized []byte
}

// Registry remembers, per scenario, the first well-formed output it was shown.
// Later outputs for that scenario are compared to it by digest.
type Registry struct {
	baselines *xsync.MapOf[string, *baseline]
}

func NewRegistry() *Registry {
	return &Registry{baselines: xsync.NewMapOf[string, *baseline]()}
}

// CheckRelative validates the shape of out and compares it with the scenario's
// baseline. The first well-formed output becomes the baseline and is reported
// with isBaseline set.
func (r *Registry) CheckRelative(
	scenario, candidate string,
	out []byte,
	sources []int,
	n int,
) (isBaseline bool, err error) {
	if err := scanGrid(out, len(sources), n, func(int, []int64) error { return nil }); err != nil {
		return false, err
	}

	norm := Normalize(out)
	sum := sha256.Sum256(norm)
	mine := &baseline{candidate: candidate, digest: hex.EncodeToString(sum[:]), normalized: norm}

	base, loaded := r.baselines.LoadOrStore(scenario, mine)
	if !loaded {
		return true, nil
	}
	if base.digest == mine.digest {
		return false, nil
	}
	return false, firstDifference(base, norm, sources)
}

// Baseline returns the candidate whose output is the scenario's baseline.
func (r *Registry) Baseline(scenario string) (string, bool) {
	b, ok := r.baselines.Load(scenario)
	if !ok {
		return "", false
	}
	return b.candidate, true
}

func firstDifference(base *baseline, norm []byte, sources []int) error {
	want := bytes.Split(base.normalized, []byte{'\n'})
	got := bytes.Split(norm, []byte{'\n'})
	for i := 0; i < len(sources) && i < len(want) && i < len(got); i++ {
		wf, gf := bytes.Fields(want[i]), bytes.Fields(got[i])
		for j := 0; j < len(wf) && j < len(gf); j++ {
			exp, _ := strconv.ParseInt(string(wf[j]), 10, 64)
			act, _ := strconv.ParseInt(string(gf[j]), 10, 64)
			if exp == act {
				continue
			}
			return &MismatchError{Source: sources[i], Target: j, Expected: exp, Actual: act, Against: base.candidate}
		}
	}
	return fmt.Errorf("output digest differs from %s", base.candidate)
}
