package pace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NonPositiveRate(t *testing.T) {
	assert.Nil(t, New(0))
	assert.Nil(t, New(-3))

	var p *Pacer
	assert.Zero(t, p.Interval())
	assert.NoError(t, p.Wait(context.Background()))
}

func TestPacer_Schedule(t *testing.T) {
	p := New(4)
	require.Equal(t, 250*time.Millisecond, p.Interval())

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	assert.Equal(t, clock, p.Next(), "first slot is immediate")
	assert.Equal(t, clock.Add(250*time.Millisecond), p.Next())
	assert.Equal(t, clock.Add(500*time.Millisecond), p.Next())

	// Falling behind does not accumulate a burst.
	clock = clock.Add(10 * time.Second)
	assert.Equal(t, clock, p.Next())
	assert.Equal(t, clock.Add(250*time.Millisecond), p.Next())
}

func TestPacer_WaitSpacesCalls(t *testing.T) {
	p := New(20)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestPacer_WaitCancelled(t *testing.T) {
	p := New(0.5)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}
