package swipe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_ReleaseBelowThresholdReturnsToIdle(t *testing.T) {
	var r Row
	require.NoError(t, r.Start())
	require.NoError(t, r.Move(-80))
	assert.Equal(t, Dragging, r.State())
	assert.Equal(t, -80.0, r.Offset())

	st, err := r.Release()
	require.NoError(t, err)
	assert.Equal(t, Idle, st)
	assert.Equal(t, 0.0, r.Offset())
}

func TestRow_ReleaseBeyondThresholdDismisses(t *testing.T) {
	var r Row
	require.NoError(t, r.Start())
	require.NoError(t, r.Move(-150))

	st, err := r.Release()
	require.NoError(t, err)
	assert.Equal(t, Dismissing, st)
	assert.True(t, r.Dismissing())

	require.NoError(t, r.Finish())
	assert.Equal(t, Removed, r.State())
}

func TestRow_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		dx   float64
		want State
	}{
		{-120, Idle},
		{-120.5, Dismissing},
		{150, Idle},
		{0, Idle},
	}
	for _, tt := range tests {
		var r Row
		require.NoError(t, r.Start())
		require.NoError(t, r.Move(tt.dx))
		st, err := r.Release()
		require.NoError(t, err)
		assert.Equal(t, tt.want, st, "dx=%v", tt.dx)
	}
}

func TestRow_InvalidTransitions(t *testing.T) {
	var r Row
	assert.ErrorIs(t, r.Move(-10), ErrInvalidTransition)
	_, err := r.Release()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, r.Finish(), ErrInvalidTransition)

	require.NoError(t, r.Start())
	require.NoError(t, r.Start(), "restarting a drag is allowed")
	require.NoError(t, r.Move(-200))
	_, err = r.Release()
	require.NoError(t, err)
	assert.ErrorIs(t, r.Start(), ErrInvalidTransition, "dismissing rows cannot be grabbed")
}

func TestFade(t *testing.T) {
	o, s := Fade(0)
	assert.Equal(t, 1.0, o)
	assert.Equal(t, 1.0, s)

	o, _ = Fade(DismissDuration / 2)
	assert.InDelta(t, 0.5, o, 1e-9)

	o, s = Fade(time.Second)
	assert.Equal(t, 0.0, o)
	assert.Equal(t, 0.0, s)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "dismissing", Dismissing.String())
	assert.Equal(t, "State(9)", State(9).String())
}
