package proc

import (
	"fmt"
	"time"

	"github.com/programme-lv/pathtester/internal/graph"
	"github.com/programme-lv/pathtester/internal/memmon"
)

// Transport is how the encoded graph reaches the candidate.
type Transport string

const (
	// TransportFile passes the path of a staged input file as the only argument.
	TransportFile Transport = "file"
	// TransportStdin streams the staged input file on standard input.
	TransportStdin Transport = "stdin"
)

func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case TransportFile, TransportStdin:
		return Transport(s), nil
	case "":
		return TransportFile, nil
	}
	return "", fmt.Errorf("unknown transport %q (want %q or %q)", s, TransportFile, TransportStdin)
}

type Constraints struct {
	WallTimeLimit  time.Duration
	SampleInterval time.Duration
	Transport      Transport
	Layout         graph.Layout
}

func DefaultConstraints() Constraints {
	return Constraints{
		WallTimeLimit:  30 * time.Second,
		SampleInterval: memmon.DefaultInterval,
		Transport:      TransportFile,
		Layout:         graph.LayoutCanonical,
	}
}
