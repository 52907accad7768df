package graph

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Layout selects how the header and the source list are laid out when encoding.
type Layout string

const (
	// LayoutCanonical writes "N M K", M edge lines, then the K sources on one line.
	LayoutCanonical Layout = "canonical"
	// LayoutTrailingK writes "N M", M edge lines, then K on its own line followed
	// by the sources on one line.
	LayoutTrailingK Layout = "trailing-k"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutCanonical, LayoutTrailingK:
		return Layout(s), nil
	case "":
		return LayoutCanonical, nil
	}
	return "", fmt.Errorf("unknown graph layout %q (want %q or %q)", s, LayoutCanonical, LayoutTrailingK)
}

// Encode writes g in the requested layout.
func Encode(w io.Writer, g *Graph, layout Layout) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	buf := make([]byte, 0, 64)

	switch layout {
	case LayoutTrailingK:
		buf = appendInts(buf[:0], int64(g.N), int64(len(g.Edges)))
	default:
		buf = appendInts(buf[:0], int64(g.N), int64(len(g.Edges)), int64(len(g.Sources)))
	}
	if _, err := bw.Write(buf); err != nil {
		return err
	}

	for _, e := range g.Edges {
		buf = appendInts(buf[:0], int64(e.From), int64(e.To), e.Weight)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	if layout == LayoutTrailingK {
		buf = appendInts(buf[:0], int64(len(g.Sources)))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	srcs := make([]int64, len(g.Sources))
	for i, s := range g.Sources {
		srcs[i] = int64(s)
	}
	if _, err := bw.Write(appendInts(nil, srcs...)); err != nil {
		return err
	}
	return bw.Flush()
}

func appendInts(buf []byte, vals ...int64) []byte {
	for i, v := range vals {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, v, 10)
	}
	return append(buf, '\n')
}

// Decode reads a graph in either layout. Parsing is token based, so line breaks
// inside the header or between sources are accepted.
func Decode(r io.Reader) (*Graph, error) {
	toks, err := readInts(r)
	if err != nil {
		return nil, err
	}
	if len(toks) < 2 {
		return nil, fmt.Errorf("graph header is truncated: got %d values", len(toks))
	}
	n, m := toks[0], toks[1]
	if n <= 0 || n > math.MaxInt32 || m < 0 {
		return nil, fmt.Errorf("invalid graph header: n=%d m=%d", n, m)
	}
	// Bound every header count by the number of values present before using it
	// in offsets, so no sum below can overflow.
	total := int64(len(toks))
	if m > (total-2)/3 {
		return nil, fmt.Errorf("graph header declares %d edges but only %d values follow", m, total-2)
	}
	fits := func(k int64) bool { return k >= 0 && k <= total }

	var edgeAt, srcAt, k int64
	switch {
	case total >= 3 && fits(toks[2]) && total == 3+3*m+toks[2]:
		k, edgeAt, srcAt = toks[2], 3, 3+3*m
	case total >= 3+3*m && fits(toks[2+3*m]) && total == 3+3*m+toks[2+3*m]:
		k, edgeAt, srcAt = toks[2+3*m], 2, 3+3*m
	default:
		return nil, fmt.Errorf("graph token count %d matches neither layout for n=%d m=%d", total, n, m)
	}

	g := &Graph{
		N:       int(n),
		Edges:   make([]Edge, m),
		Sources: make([]int, k),
	}
	for i := int64(0); i < m; i++ {
		at := edgeAt + 3*i
		g.Edges[i] = Edge{From: int(toks[at]), To: int(toks[at+1]), Weight: toks[at+2]}
	}
	for i := int64(0); i < k; i++ {
		g.Sources[i] = int(toks[srcAt+i])
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return g, nil
}

func readInts(r io.Reader) ([]int64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<20)
	sc.Split(bufio.ScanWords)

	var toks []int64
	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", len(toks)+1, err)
		}
		toks = append(toks, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}
	return toks, nil
}

// ReadFile decodes a graph file, decompressing it first when the name ends in .zst.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		d, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer d.Close()
		r = d
	}

	g, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return g, nil
}

// WriteFile encodes g to path, compressing with zstd when the name ends in .zst.
func WriteFile(path string, g *Graph, layout Layout) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return Encode(f, g, layout)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := Encode(enc, g, layout); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
