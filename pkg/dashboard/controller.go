// Package dashboard owns the view state of the review dashboard: the
// current review page, pagination, analytics, loading flag and error.
//
// A load is split into three steps so it can run off the UI loop:
// Begin issues a sequenced Ticket, Fetch performs the network calls and
// Apply folds the Result back into the state. Results older than the
// newest applied one are dropped, so overlapping loads never let a slow
// response overwrite a fresher one.
//
// Controller is not safe for concurrent use. Begin and Apply are meant to be
// called from a single goroutine (the bubbletea update loop); Fetch touches
// no controller state and may run anywhere.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/metrics"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// Fetcher is the subset of the API client a load needs
type Fetcher interface {
	ListReviews(ctx context.Context, f model.Filters) (model.ReviewsPage, error)
	Analytics(ctx context.Context) (model.Analytics, error)
}

// Ticket identifies one issued load
type Ticket struct {
	Seq     uint64
	Filters model.Filters
}

// Result is the outcome of fetching one ticket
type Result struct {
	Ticket
	Page      model.ReviewsPage
	Analytics model.Analytics
	Err       error
}

// Controller holds the single source of truth for what is displayed
type Controller struct {
	Reviews    []model.Review
	Pagination *model.Pagination
	Analytics  *model.Analytics
	Loading    bool
	Err        string

	// Filters of the most recently issued load
	Filters model.Filters

	issued  uint64
	applied uint64
	loads   int
}

// New returns an empty controller
func New() *Controller {
	return &Controller{Reviews: []model.Review{}}
}

// Begin marks a load as in flight and returns its ticket
func (c *Controller) Begin(filters model.Filters) Ticket {
	c.issued++
	c.Loading = true
	c.Err = ""
	c.Filters = filters
	return Ticket{Seq: c.issued, Filters: filters}
}

// Fetch performs the two requests of a load concurrently. The review list
// uses the ticket's filters, analytics is always unfiltered. The first
// failure cancels the sibling request and becomes the result's error.
func Fetch(ctx context.Context, f Fetcher, t Ticket) Result {
	res := Result{Ticket: t}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := f.ListReviews(gctx, t.Filters)
		if err != nil {
			return err
		}
		res.Page = page
		return nil
	})
	g.Go(func() error {
		a, err := f.Analytics(gctx)
		if err != nil {
			return err
		}
		res.Analytics = a
		return nil
	})
	res.Err = g.Wait()
	return res
}

// Apply folds a result into the state. It returns false when the result was
// stale and therefore ignored.
func (c *Controller) Apply(r Result) bool {
	log := logging.For("dashboard")

	if r.Seq <= c.applied {
		log.Debug().Uint64("seq", r.Seq).Uint64("applied", c.applied).Msg("dropping stale load")
		metrics.ObserveLoad("stale")
		return false
	}
	c.applied = r.Seq
	if r.Seq >= c.issued {
		c.Loading = false
	}
	c.loads++

	if r.Err != nil {
		// Previously displayed data stays as it was
		c.Err = api.MessageOf(r.Err)
		log.Warn().Uint64("seq", r.Seq).Err(r.Err).Msg("load failed")
		metrics.ObserveLoad("error")
		return true
	}

	c.Err = ""
	c.Reviews = r.Page.Reviews
	if c.Reviews == nil {
		c.Reviews = []model.Review{}
	}
	c.Pagination = r.Page.Pagination
	a := r.Analytics
	a.Normalize()
	c.Analytics = &a
	metrics.ObserveLoad("ok")
	return true
}

// Load runs Begin, Fetch and Apply synchronously and returns the load error
func (c *Controller) Load(ctx context.Context, f Fetcher, filters model.Filters) error {
	r := Fetch(ctx, f, c.Begin(filters))
	c.Apply(r)
	return r.Err
}

// Reload repeats the most recent load with its filters
func (c *Controller) Reload(ctx context.Context, f Fetcher) error {
	return c.Load(ctx, f, c.Filters)
}

// HasError reports whether the page-level error view should be shown
func (c *Controller) HasError() bool {
	return c.Err != ""
}

// IsEmpty reports a completed load that returned no reviews
func (c *Controller) IsEmpty() bool {
	return !c.Loading && len(c.Reviews) == 0
}

// Loads returns how many results have been applied
func (c *Controller) Loads() int {
	return c.loads
}
