package model

// PageSize is the fixed number of reviews per page
const PageSize = 20

// Filters is the filter set controlling which reviews are fetched.
// A zero Page means "not set" and behaves as page 1.
type Filters struct {
	Location  string `json:"location,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
	Query     string `json:"q,omitempty"`
	Page      int    `json:"page,omitempty"`
}

// PageNumber returns the effective 1-based page
func (f Filters) PageNumber() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

// Offset returns the zero-based skip offset for the effective page
func (f Filters) Offset() int {
	return (f.PageNumber() - 1) * PageSize
}

// WithLocation returns a copy with the location changed and the page reset
func (f Filters) WithLocation(loc string) Filters {
	f.Location = loc
	f.Page = 1
	return f
}

// WithSentiment returns a copy with the sentiment changed and the page reset
func (f Filters) WithSentiment(s string) Filters {
	f.Sentiment = s
	f.Page = 1
	return f
}

// WithQuery returns a copy with the free-text query changed and the page reset
func (f Filters) WithQuery(q string) Filters {
	f.Query = q
	f.Page = 1
	return f
}

// WithPage returns a copy pointing at page p; other filters are unchanged.
// Pages below 1 clamp to 1.
func (f Filters) WithPage(p int) Filters {
	if p < 1 {
		p = 1
	}
	f.Page = p
	return f
}

// IsZero returns true for the default (empty) filter set
func (f Filters) IsZero() bool {
	return f == Filters{}
}
