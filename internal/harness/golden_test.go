package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomkit/axiom/internal/protocol"
)

func TestGoldenEchoBasic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/echo-basic.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario, newEchoRegistry(t, 0), echoCtx{})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

// Two runs of the same scenario serialize to byte-identical snapshots.
func TestGoldenSnapshotDeterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/echo-basic.yaml")
	require.NoError(t, err)

	result1, err := Run(scenario, newEchoRegistry(t, 0), echoCtx{})
	require.NoError(t, err)
	result2, err := Run(scenario, newEchoRegistry(t, 0), echoCtx{})
	require.NoError(t, err)

	snap1, err := snapshotObject(scenario.Name, result1)
	require.NoError(t, err)
	snap2, err := snapshotObject(scenario.Name, result2)
	require.NoError(t, err)

	json1, err := protocol.MarshalCanonical(snap1)
	require.NoError(t, err)
	json2, err := protocol.MarshalCanonical(snap2)
	require.NoError(t, err)
	assert.Equal(t, json1, json2)
}
