package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestRun_MovesThroughStates(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.Equal(t, StateIdle, a.State())

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, StateDone, a.State())

	err := a.Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRun)
	assert.EqualError(t, err, "app has already been run: cannot move to running from done")
}
