package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutRun_HappyPath(t *testing.T) {
	run := newCheckoutRun()

	for _, next := range []checkoutState{stateValidating, stateReserving, statePersisting, stateCommitted} {
		require.NoError(t, run.transition(next), "transition to %s", next)
	}

	assert.True(t, run.state.terminal())
}

func TestCheckoutRun_RetryReentersReserving(t *testing.T) {
	run := newCheckoutRun()
	require.NoError(t, run.transition(stateValidating))
	require.NoError(t, run.transition(stateReserving))
	require.NoError(t, run.transition(stateReserving))
	require.NoError(t, run.transition(statePersisting))
	require.NoError(t, run.transition(stateReserving))
	require.NoError(t, run.transition(statePersisting))
	require.NoError(t, run.transition(stateCommitted))
}

func TestCheckoutRun_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []checkoutState
		next checkoutState
	}{
		{name: "Skip validation", next: stateReserving},
		{name: "Commit before persisting", path: []checkoutState{stateValidating, stateReserving}, next: stateCommitted},
		{name: "Leave committed", path: []checkoutState{stateValidating, stateReserving, statePersisting, stateCommitted}, next: stateAborted},
		{name: "Leave aborted", path: []checkoutState{stateValidating, stateAborted}, next: stateReserving},
		{name: "Abort before validating", next: stateAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := newCheckoutRun()
			for _, s := range tt.path {
				require.NoError(t, run.transition(s))
			}

			before := run.state
			err := run.transition(tt.next)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "illegal checkout transition")
			assert.Equal(t, before, run.state)
		})
	}
}

func TestCheckoutState_Terminal(t *testing.T) {
	assert.True(t, stateCommitted.terminal())
	assert.True(t, stateAborted.terminal())
	assert.False(t, stateReceived.terminal())
	assert.False(t, stateReserving.terminal())
}
