// Package refresh serialises access-token refreshes so that at most one refresh call
// is in flight and every caller stalled behind it observes the same outcome.
package refresh

import (
	"context"
	"sync"
)

// Result is the outcome of one refresh attempt
type Result struct {
	AccessToken string
	Err         error
}

type settled struct {
	from   string // Access token the refresh replaced
	result Result
}

// Coordinator owns the refresh flag and the pending queue. The zero value is not usable; use NewCoordinator.
type Coordinator struct {
	lock       sync.Mutex
	refreshing bool
	queue      []chan Result
	last       *settled
	attempts   int
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Begin registers a caller whose request, sent with access token sent, was rejected as
// expired. current is the access token now held by the store.
//
// When leader is true the caller must perform the refresh and call Finish. Otherwise the
// outcome is delivered on wait: queued behind the in-flight refresh, or immediately when
// the token the caller sent has already been replaced or its refresh already failed.
func (c *Coordinator) Begin(sent, current string) (leader bool, wait <-chan Result) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.refreshing {
		ch := make(chan Result, 1)
		c.queue = append(c.queue, ch)
		return false, ch
	}
	if current != "" && current != sent {
		return false, ready(Result{AccessToken: current})
	}
	if c.last != nil && c.last.from == sent && sent != "" {
		return false, ready(c.last.result)
	}
	c.refreshing = true
	c.attempts++
	return true, nil
}

// Finish settles the in-flight refresh: every queued caller receives res in arrival
// order and the flag is cleared in the same critical section.
func (c *Coordinator) Finish(from string, res Result) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for _, ch := range c.queue {
		ch <- res
	}
	c.queue = nil
	c.refreshing = false
	c.last = &settled{from: from, result: res}
}

// Await blocks until the outcome arrives or ctx is done. A cancelled caller leaves
// the queue untouched; its buffered slot is simply never read.
func Await(ctx context.Context, wait <-chan Result) Result {
	select {
	case res := <-wait:
		return res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// Refreshing reports whether a refresh is in flight
func (c *Coordinator) Refreshing() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.refreshing
}

// Pending is the number of queued callers
func (c *Coordinator) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.queue)
}

// Attempts counts refreshes started by leaders
func (c *Coordinator) Attempts() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.attempts
}

func ready(res Result) <-chan Result {
	ch := make(chan Result, 1)
	ch <- res
	return ch
}
