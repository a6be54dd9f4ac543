package model

// Review represents a single customer review as served by the reviews API
type Review struct {
	ID        int       `json:"id"`
	Location  string    `json:"location"`
	Date      string    `json:"date"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	Sentiment Sentiment `json:"sentiment"`
	Topic     string    `json:"topic"`
	Reply     string    `json:"reply,omitempty"`
}

// HasReply returns true if a reply has been saved for the review
func (r Review) HasReply() bool {
	return r.Reply != ""
}

// Stars clamps the rating into the 0..5 range used by the star scale
func (r Review) Stars() int {
	switch {
	case r.Rating < 0:
		return 0
	case r.Rating > MaxRating:
		return MaxRating
	}
	return r.Rating
}

// MaxRating is the top of the rating scale
const MaxRating = 5

// Sentiment is the tone classification assigned by the server
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Sentiments lists the sentiment values in display order
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// IsValid returns true if the sentiment is a recognized value
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Locations is the fixed location enumeration offered by the location filter
var Locations = []string{"NYC", "SF", "LA", "Chicago", "Boston"}

// IsKnownLocation checks if a location is part of the filter enumeration
func IsKnownLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// Pagination is the page metadata returned alongside a review page
type Pagination struct {
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// ReviewsPage is the body of GET /reviews
type ReviewsPage struct {
	Reviews    []Review    `json:"reviews"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// SuggestedReply is the body of POST /reviews/{id}/suggest-reply
type SuggestedReply struct {
	Reply string `json:"reply"`
}

// ReplyUpdate is the partial update sent by PATCH /reviews/{id}
type ReplyUpdate struct {
	Reply string `json:"reply"`
}
