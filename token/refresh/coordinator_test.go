package refresh_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/go-event-portal/token/refresh"
	"github.com/stretchr/testify/require"
)

func TestFirstCallerLeads(t *testing.T) {
	c := refresh.NewCoordinator()
	leader, wait := c.Begin("old", "old")
	require.True(t, leader)
	require.Nil(t, wait)
	require.True(t, c.Refreshing())
	require.Equal(t, 1, c.Attempts())
}

func TestQueueDrainedInOrder(t *testing.T) {
	c := refresh.NewCoordinator()
	leader, _ := c.Begin("old", "old")
	require.True(t, leader)

	waits := make([]<-chan refresh.Result, 3)
	for i := range waits {
		l, w := c.Begin("old", "old")
		require.False(t, l)
		waits[i] = w
	}
	require.Equal(t, 3, c.Pending())

	c.Finish("old", refresh.Result{AccessToken: "new"})
	require.False(t, c.Refreshing())
	require.Zero(t, c.Pending())
	for _, w := range waits {
		require.Equal(t, "new", refresh.Await(context.Background(), w).AccessToken)
	}
	require.Equal(t, 1, c.Attempts())
}

func TestAllQueuedObserveFailure(t *testing.T) {
	c := refresh.NewCoordinator()
	c.Begin("old", "old")
	_, w1 := c.Begin("old", "old")
	_, w2 := c.Begin("old", "old")

	failure := errors.New("refresh rejected")
	c.Finish("old", refresh.Result{Err: failure})
	require.ErrorIs(t, refresh.Await(context.Background(), w1).Err, failure)
	require.ErrorIs(t, refresh.Await(context.Background(), w2).Err, failure)
}

func TestLateCallerReusesSettledOutcome(t *testing.T) {
	c := refresh.NewCoordinator()
	c.Begin("old", "old")
	failure := errors.New("refresh rejected")
	c.Finish("old", refresh.Result{Err: failure})

	leader, wait := c.Begin("old", "old")
	require.False(t, leader)
	require.ErrorIs(t, refresh.Await(context.Background(), wait).Err, failure)
	require.Equal(t, 1, c.Attempts())
}

func TestLateCallerRetriesWithCurrentToken(t *testing.T) {
	c := refresh.NewCoordinator()
	leader, wait := c.Begin("old", "new")
	require.False(t, leader)
	require.Equal(t, "new", refresh.Await(context.Background(), wait).AccessToken)
	require.Zero(t, c.Attempts())
}

func TestNewTokenExpiringStartsNewRefresh(t *testing.T) {
	c := refresh.NewCoordinator()
	c.Begin("old", "old")
	c.Finish("old", refresh.Result{AccessToken: "new"})

	leader, _ := c.Begin("new", "new")
	require.True(t, leader)
	require.Equal(t, 2, c.Attempts())
}

func TestAwaitCancelled(t *testing.T) {
	c := refresh.NewCoordinator()
	c.Begin("old", "old")
	_, wait := c.Begin("old", "old")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, refresh.Await(ctx, wait).Err, context.Canceled)

	// Finish must not block on the abandoned slot
	c.Finish("old", refresh.Result{AccessToken: "new"})
	require.False(t, c.Refreshing())
}
