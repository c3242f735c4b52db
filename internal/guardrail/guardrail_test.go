package guardrail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockPII(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		input   string
		flagged bool
	}{
		{"what is 12*9?", false},
		{"my card is 4111 1111 1111 1111", true},
		{"card 4111-1111-1111-1111 please", true},
		{"4111111111111111", true},
		{"order 123456789012", false},
	}
	for _, tc := range cases {
		out, err := BlockPII.Check(ctx, tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.flagged, out.TripwireTriggered, tc.input)
		assert.Equal(t, tc.flagged, out.Info["flagged"], tc.input)
	}
}

func TestRunReturnsTripwireError(t *testing.T) {
	err := Run(context.Background(), "pay with 4111 1111 1111 1111", BlockPII)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTripwireTriggered))

	var tripwire *TripwireError
	require.True(t, errors.As(err, &tripwire))
	assert.Equal(t, "block_pii", tripwire.Guardrail)
}

func TestRunPassesCleanInput(t *testing.T) {
	assert.NoError(t, Run(context.Background(), "write a sentence about cats", BlockPII))
}

func TestRunPropagatesCheckError(t *testing.T) {
	broken := Guardrail{Name: "broken", Check: func(context.Context, string) (Output, error) {
		return Output{}, errors.New("boom")
	}}
	err := Run(context.Background(), "hi", broken, BlockPII)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTripwireTriggered))
}
