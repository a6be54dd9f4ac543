package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// ReviewQuery translates a filter set into /reviews query parameters.
// skip is present whenever a page is set; empty filters are left out.
func ReviewQuery(f model.Filters) url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("skip", strconv.Itoa(f.Offset()))
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.Sentiment != "" {
		q.Set("sentiment", f.Sentiment)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	return q
}

// ReviewsPath returns the /reviews path for a filter set
func ReviewsPath(f model.Filters) string {
	if q := ReviewQuery(f); len(q) > 0 {
		return "/reviews?" + q.Encode()
	}
	return "/reviews"
}

// ListReviews fetches one filtered page of reviews
func (c *Client) ListReviews(ctx context.Context, f model.Filters) (model.ReviewsPage, error) {
	var page model.ReviewsPage
	if err := c.call(ctx, ReviewsPath(f), RequestOptions{}, reviewsPageSchema, &page); err != nil {
		return model.ReviewsPage{}, err
	}
	if page.Reviews == nil {
		page.Reviews = []model.Review{}
	}
	return page, nil
}

// Analytics fetches the unfiltered analytics summary
func (c *Client) Analytics(ctx context.Context) (model.Analytics, error) {
	var a model.Analytics
	if err := c.call(ctx, "/analytics", RequestOptions{}, analyticsSchema, &a); err != nil {
		return model.Analytics{}, err
	}
	a.Normalize()
	return a, nil
}

// SuggestReply asks the service to draft a reply for one review
func (c *Client) SuggestReply(ctx context.Context, id int) (string, error) {
	var res model.SuggestedReply
	path := fmt.Sprintf("/reviews/%d/suggest-reply", id)
	if err := c.call(ctx, path, RequestOptions{Method: http.MethodPost}, suggestedReplySchema, &res); err != nil {
		return "", err
	}
	return res.Reply, nil
}

// SaveReply stores reply text on one review. The response body is ignored;
// callers reload to observe the change.
func (c *Client) SaveReply(ctx context.Context, id int, reply string) error {
	path := fmt.Sprintf("/reviews/%d", id)
	opts := RequestOptions{
		Method: http.MethodPatch,
		Body:   model.ReplyUpdate{Reply: reply},
	}
	return c.call(ctx, path, opts, nil, nil)
}
