package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateHash_StableAcrossClones(t *testing.T) {
	s := sampleState()

	h1, err := StateHash(s)
	require.NoError(t, err)
	h2, err := StateHash(s.Clone())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex-encoded SHA-256
}

func TestStateHash_SensitiveToContent(t *testing.T) {
	s := sampleState()
	h1 := MustStateHash(s)

	changed := s.Clone()
	changed.Facts = append(changed.Facts, Fact{Tag: "extra", Payload: Null{}})
	h2 := MustStateHash(changed)

	assert.NotEqual(t, h1, h2)
}

func TestStepHash_ChainsOnPrev(t *testing.T) {
	events := []Event{{Tag: "e1", Payload: Int(1)}}
	stateHash := MustStateHash(sampleState())

	h1, err := StepHash("", 1, events, stateHash)
	require.NoError(t, err)
	h2, err := StepHash(h1, 2, events, stateHash)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)

	// Same inputs reproduce the same chain hash
	again, err := StepHash(h1, 2, events, stateHash)
	require.NoError(t, err)
	assert.Equal(t, h2, again)
}

func TestStepHash_DomainSeparatedFromStateHash(t *testing.T) {
	s := sampleState()
	stateHash := MustStateHash(s)

	stepHash, err := StepHash("", 1, nil, stateHash)
	require.NoError(t, err)
	assert.NotEqual(t, stateHash, stepHash)
}
