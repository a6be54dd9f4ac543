// Package mockapi is an in-memory stand-in for the reviews service. It
// serves the same four endpoints the dashboard consumes and is used for
// offline demos (rc mock-server) and as the backend of integration tests.
package mockapi

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// Store holds the fixture reviews
type Store struct {
	mu      sync.RWMutex
	reviews []model.Review
}

// NewStore creates a store over a copy of reviews
func NewStore(reviews []model.Review) *Store {
	cp := make([]model.Review, len(reviews))
	copy(cp, reviews)
	return &Store{reviews: cp}
}

// Query selects and pages reviews
type Query struct {
	Skip      int
	Location  string
	Sentiment string
	Q         string
}

func (q Query) matches(r model.Review) bool {
	if q.Location != "" && r.Location != q.Location {
		return false
	}
	if q.Sentiment != "" && string(r.Sentiment) != q.Sentiment {
		return false
	}
	if q.Q != "" {
		needle := strings.ToLower(q.Q)
		if !strings.Contains(strings.ToLower(r.Text), needle) &&
			!strings.Contains(strings.ToLower(r.Topic), needle) {
			return false
		}
	}
	return true
}

// List returns one page of matching reviews and its pagination
func (s *Store) List(q Query) model.ReviewsPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if q.matches(r) {
			matched = append(matched, r)
		}
	}

	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	total := len(matched)
	start := min(skip, total)
	end := min(start+model.PageSize, total)

	page := skip/model.PageSize + 1
	totalPages := max((total+model.PageSize-1)/model.PageSize, 1)

	return model.ReviewsPage{
		Reviews: matched[start:end],
		Pagination: &model.Pagination{
			Page:       page,
			Total:      total,
			TotalPages: totalPages,
			HasPrev:    page > 1,
			HasNext:    end < total,
		},
	}
}

// Get returns one review by ID
func (s *Store) Get(id int) (model.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.ID == id {
			return r, true
		}
	}
	return model.Review{}, false
}

// SetReply stores reply text on a review and returns the updated review
func (s *Store) SetReply(id int, reply string) (model.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			s.reviews[i].Reply = reply
			return s.reviews[i], true
		}
	}
	return model.Review{}, false
}

// Analytics summarizes every review. Topics are ordered by count, then name.
func (s *Store) Analytics() model.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := model.Analytics{
		TotalReviews: len(s.reviews),
		Sentiment:    make(map[model.Sentiment]int, len(model.Sentiments)),
	}
	for _, sent := range model.Sentiments {
		a.Sentiment[sent] = 0
	}

	topicCounts := map[string]int{}
	sum := 0
	for _, r := range s.reviews {
		sum += r.Rating
		a.Sentiment[r.Sentiment]++
		if r.Topic != "" {
			topicCounts[r.Topic]++
		}
	}
	if len(s.reviews) > 0 {
		avg := float64(sum) / float64(len(s.reviews))
		a.AvgRating = float64(int(avg*10+0.5)) / 10
	}

	a.Topics = make(model.TopicCounts, 0, len(topicCounts))
	for name, c := range topicCounts {
		a.Topics = append(a.Topics, model.TopicCount{Name: name, Count: c})
	}
	sort.Slice(a.Topics, func(i, j int) bool {
		if a.Topics[i].Count != a.Topics[j].Count {
			return a.Topics[i].Count > a.Topics[j].Count
		}
		return a.Topics[i].Name < a.Topics[j].Name
	})
	return a
}

// SuggestReply drafts a canned reply matching the review's tone
func SuggestReply(r model.Review) string {
	topic := strings.ToLower(r.Topic)
	if topic == "" {
		topic = "your visit"
	}
	switch r.Sentiment {
	case model.SentimentPositive:
		return fmt.Sprintf("Thank you for the kind words about %s! We're thrilled you enjoyed your time at our %s location and hope to see you again soon.", topic, r.Location)
	case model.SentimentNegative:
		return fmt.Sprintf("We're sorry to hear about your experience with %s. This isn't the standard we aim for at our %s location. Please reach out so we can make it right.", topic, r.Location)
	default:
		return fmt.Sprintf("Thanks for your feedback on %s. We're always working to improve our %s location and appreciate you taking the time to share.", topic, r.Location)
	}
}

var (
	fixtureTopics = []string{"Food", "Service", "Price", "Ambience", "Wait Time", "Cleanliness"}

	fixtureTexts = map[model.Sentiment][]string{
		model.SentimentPositive: {
			"Absolutely loved the %s, will be back next week.",
			"The %s was excellent and the staff were friendly.",
			"Great experience overall, especially the %s.",
		},
		model.SentimentNeutral: {
			"The %s was fine, nothing special.",
			"Average visit. The %s could be better but it was okay.",
			"Decent place, the %s met expectations.",
		},
		model.SentimentNegative: {
			"Very disappointed with the %s this time.",
			"The %s was terrible and nobody seemed to care.",
			"Would not recommend, the %s ruined the evening.",
		},
	}
)

// SeedReviews generates n deterministic reviews for a given seed
func SeedReviews(n int, seed int64) []model.Review {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	reviews := make([]model.Review, 0, n)
	for i := 1; i <= n; i++ {
		rating := rng.Intn(model.MaxRating) + 1
		sentiment := model.SentimentNeutral
		switch {
		case rating >= 4:
			sentiment = model.SentimentPositive
		case rating <= 2:
			sentiment = model.SentimentNegative
		}
		topic := fixtureTopics[rng.Intn(len(fixtureTopics))]
		texts := fixtureTexts[sentiment]
		text := fmt.Sprintf(texts[rng.Intn(len(texts))], strings.ToLower(topic))

		reviews = append(reviews, model.Review{
			ID:        i,
			Location:  model.Locations[rng.Intn(len(model.Locations))],
			Date:      start.AddDate(0, 0, i).Format("2006-01-02"),
			Text:      text,
			Rating:    rating,
			Sentiment: sentiment,
			Topic:     topic,
		})
	}
	return reviews
}
