package events

import (
	"context"

	"github.com/jrsteele09/go-event-portal/users"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the admin overview: every event and every account
type Dashboard struct {
	Events []Event
	Users  []users.User
}

// PublishedCount is the number of events visible to the public
func (d *Dashboard) PublishedCount() int {
	n := 0
	for _, e := range d.Events {
		if e.IsPublished {
			n++
		}
	}
	return n
}

// CountByRole tallies accounts per role
func (d *Dashboard) CountByRole() map[users.RoleType]int {
	counts := make(map[users.RoleType]int)
	for _, u := range d.Users {
		counts[u.Role]++
	}
	return counts
}

// LoadDashboard fetches events and users concurrently. The first failure cancels the other call.
func LoadDashboard(ctx context.Context, ev *Client, admin *users.AdminClient) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := ev.ListAll(gctx)
		if err != nil {
			return errors.Wrap(err, "[LoadDashboard] events")
		}
		d.Events = list
		return nil
	})
	g.Go(func() error {
		list, err := admin.List(gctx)
		if err != nil {
			return errors.Wrap(err, "[LoadDashboard] users")
		}
		d.Users = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
