package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKVPairsSplitsCommaJoinedPairs(t *testing.T) {
	kv, err := parseKVPairs("stepsPerMmX=40,stepsPerMmY=40.5, defaultDeviceAlias = axidraw ")
	require.NoError(t, err)
	require.Equal(t, "40", kv["stepsPerMmX"])
	require.Equal(t, "40.5", kv["stepsPerMmY"])
	require.Equal(t, " axidraw ", kv["defaultDeviceAlias"])
}

func TestParseKVPairsRejectsMalformedPair(t *testing.T) {
	_, err := parseKVPairs("stepsPerMmX")
	require.Error(t, err)
}

func TestParseKVPairsRejectsEmptyInput(t *testing.T) {
	_, err := parseKVPairs("   ")
	require.Error(t, err)
}

func TestStdinIsPipeRunsStatPath(t *testing.T) {
	// os.Stdin in a test binary is neither a pipe nor a redirect in the
	// common case; this just exercises the stat path without requiring a
	// real terminal.
	_ = stdinIsPipe()
}
