package order_test

import (
	"testing"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, name := range []string{
		"pending", "received", "in_preparation", "ready",
		"completed", "cancelled", "invalid",
	} {
		parsed, err := order.ParseStatus(name)
		require.NoError(t, err, name)
		assert.Equal(t, order.Status(name), parsed)
	}

	_, err := order.ParseStatus("shipped")
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrUnknownStatus)

	_, err = order.ParseStatus("Pending")
	assert.ErrorIs(t, err, order.ErrUnknownStatus)
}

func TestCanTransitionHappyPath(t *testing.T) {
	steps := []order.Status{
		order.StatusPending,
		order.StatusReceived,
		order.StatusInPreparation,
		order.StatusReady,
		order.StatusCompleted,
	}
	for i := 0; i < len(steps)-1; i++ {
		assert.True(t, steps[i].CanTransition(steps[i+1]),
			"%s -> %s", steps[i], steps[i+1])
	}

	// no skipping
	assert.False(t, order.StatusPending.CanTransition(order.StatusInPreparation))
	assert.False(t, order.StatusPending.CanTransition(order.StatusCompleted))
	assert.False(t, order.StatusReceived.CanTransition(order.StatusReady))

	// no going back
	assert.False(t, order.StatusReceived.CanTransition(order.StatusPending))
	assert.False(t, order.StatusReady.CanTransition(order.StatusInPreparation))
}

func TestCanTransitionCancellation(t *testing.T) {
	for _, s := range []order.Status{
		order.StatusPending, order.StatusReceived,
		order.StatusInPreparation, order.StatusReady,
	} {
		assert.True(t, s.CanTransition(order.StatusCancelled), string(s))
		assert.True(t, s.CanTransition(order.StatusInvalid), string(s))
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	all := []order.Status{
		order.StatusPending, order.StatusReceived, order.StatusInPreparation,
		order.StatusReady, order.StatusCompleted, order.StatusCancelled,
		order.StatusInvalid,
	}
	for _, terminal := range []order.Status{
		order.StatusCompleted, order.StatusCancelled, order.StatusInvalid,
	} {
		assert.True(t, terminal.Terminal())
		for _, target := range all {
			assert.False(t, terminal.CanTransition(target),
				"%s -> %s", terminal, target)
		}
	}
}
