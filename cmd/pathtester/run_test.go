package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioName(t *testing.T) {
	cases := map[string]string{
		"graphs/chain.txt":                        "chain",
		"/tmp/big.txt.zst":                        "big",
		"https://example.com/g/medium.txt?sig=ab": "medium",
		"s3://bucket/tests/dense.txt.zst":         "dense",
		"plain":                                   "plain",
	}
	for src, want := range cases {
		require.Equal(t, want, scenarioName(src), src)
	}
}
