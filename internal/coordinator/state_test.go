package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlsTransitionTable(t *testing.T) {
	t.Run("running pause resumes cycle", func(t *testing.T) {
		c := newControls()
		c.begin()
		assert.Equal(t, StateRunning, c.State())

		assert.True(t, c.Pause())
		assert.Equal(t, StatePaused, c.State())
		assert.True(t, c.shouldPause.Load())

		assert.True(t, c.Resume())
		assert.Equal(t, StateRunning, c.State())
		assert.False(t, c.shouldPause.Load())
	})

	t.Run("stop from running and paused", func(t *testing.T) {
		for _, pauseFirst := range []bool{false, true} {
			c := newControls()
			c.begin()
			if pauseFirst {
				c.Pause()
			}
			assert.True(t, c.Stop())
			assert.Equal(t, StateStopped, c.State())
			assert.True(t, c.shouldStop.Load())
		}
	})

	t.Run("cancel from running and paused", func(t *testing.T) {
		for _, pauseFirst := range []bool{false, true} {
			c := newControls()
			c.begin()
			if pauseFirst {
				c.Pause()
			}
			assert.True(t, c.Cancel())
			assert.Equal(t, StateCancelled, c.State())
			assert.True(t, c.shouldStop.Load())
		}
	})

	t.Run("controls in stopped state are no-ops", func(t *testing.T) {
		c := newControls()
		assert.False(t, c.Pause())
		assert.False(t, c.Resume())
		assert.False(t, c.Stop())
		assert.False(t, c.Cancel())
		assert.Equal(t, StateStopped, c.State())
	})

	t.Run("controls in cancelled state are no-ops", func(t *testing.T) {
		c := newControls()
		c.begin()
		c.Cancel()
		assert.False(t, c.Pause())
		assert.False(t, c.Resume())
		assert.Equal(t, StateCancelled, c.State())
	})

	t.Run("resume requires paused", func(t *testing.T) {
		c := newControls()
		c.begin()
		assert.False(t, c.Resume())
	})
}

func TestWaitWhilePaused(t *testing.T) {
	t.Run("passes through when not paused", func(t *testing.T) {
		c := newControls()
		c.begin()
		assert.True(t, c.waitWhilePaused())
	})

	t.Run("stop during pause aborts the wait", func(t *testing.T) {
		c := newControls()
		c.begin()
		c.Pause()

		done := make(chan bool, 1)
		go func() { done <- c.waitWhilePaused() }()

		c.Stop()
		assert.False(t, <-done)
	})
}
