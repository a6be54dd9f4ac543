package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Analytics is the aggregate summary returned by GET /analytics
type Analytics struct {
	TotalReviews int               `json:"total_reviews"`
	AvgRating    float64           `json:"avg_rating"`
	Sentiment    map[Sentiment]int `json:"sentiment"`
	Topics       TopicCounts       `json:"topics"`
}

// SentimentCount returns the count for one sentiment, 0 when absent
func (a Analytics) SentimentCount(s Sentiment) int {
	if a.Sentiment == nil {
		return 0
	}
	return a.Sentiment[s]
}

// Normalize fills absent collections with empty defaults
func (a *Analytics) Normalize() {
	if a.Sentiment == nil {
		a.Sentiment = make(map[Sentiment]int, len(Sentiments))
	}
	if a.Topics == nil {
		a.Topics = TopicCounts{}
	}
}

// TopicCount is one entry of the topic breakdown
type TopicCount struct {
	Name  string
	Count int
}

// TopicCounts keeps topic counts in the order the server sent them.
// On the wire it is a JSON object keyed by topic name.
type TopicCounts []TopicCount

// Top returns the first n entries in server order
func (tc TopicCounts) Top(n int) TopicCounts {
	if n < 0 || n >= len(tc) {
		return tc
	}
	return tc[:n]
}

// Get looks up a topic by name
func (tc TopicCounts) Get(name string) (int, bool) {
	for _, t := range tc {
		if t.Name == name {
			return t.Count, true
		}
	}
	return 0, false
}

// UnmarshalJSON decodes a JSON object while preserving key order
func (tc *TopicCounts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*tc = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("topics: expected object, got %v", tok)
	}

	out := TopicCounts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("topics: unexpected key %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("topics: count for %q: %w", name, err)
		}
		out = append(out, TopicCount{Name: name, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*tc = out
	return nil
}

// MarshalJSON encodes the counts as a JSON object in slice order
func (tc TopicCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range tc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", t.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TopTopics is how many topics the breakdown shows
const TopTopics = 5

// Bar is one row of a proportional breakdown
type Bar struct {
	Label string
	Count int
	Fill  float64 // share of the largest count in the group, 0..1
	Pct   string  // share of all reviews, e.g. "42%"; empty when Count is 0
}

// BarFill returns count relative to the largest count of its group.
// The denominator is at least 1, so an all-zero group renders empty bars.
func BarFill(count, maxCount int) float64 {
	if maxCount < 1 {
		maxCount = 1
	}
	f := float64(count) / float64(maxCount)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// PercentLabel returns round(count/total*100) as "N%". Zero counts and an
// empty total produce no label.
func PercentLabel(count, total int) string {
	if count == 0 || total <= 0 {
		return ""
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(count)/float64(total)*100)))
}

func maxOf(counts []int) int {
	m := 0
	for _, c := range counts {
		if c > m {
			m = c
		}
	}
	return m
}

// buildBars scales every bar against maxCount, the largest count of the
// whole group, which may include entries not shown
func buildBars(labels []string, counts []int, maxCount, total int) []Bar {
	bars := make([]Bar, len(labels))
	for i, label := range labels {
		bars[i] = Bar{
			Label: label,
			Count: counts[i],
			Fill:  BarFill(counts[i], maxCount),
			Pct:   PercentLabel(counts[i], total),
		}
	}
	return bars
}

// SentimentBars breaks reviews down over the three fixed sentiments
func (a Analytics) SentimentBars() []Bar {
	labels := make([]string, len(Sentiments))
	counts := make([]int, len(Sentiments))
	for i, s := range Sentiments {
		labels[i] = string(s)
		counts[i] = a.SentimentCount(s)
	}
	return buildBars(labels, counts, maxOf(counts), a.TotalReviews)
}

// TopicBars breaks reviews down over the first n topics in server order.
// Fill is relative to the largest topic overall, shown or not.
func (a Analytics) TopicBars(n int) []Bar {
	maxCount := 0
	for _, t := range a.Topics {
		maxCount = max(maxCount, t.Count)
	}
	top := a.Topics.Top(n)
	labels := make([]string, len(top))
	counts := make([]int, len(top))
	for i, t := range top {
		labels[i] = t.Name
		counts[i] = t.Count
	}
	return buildBars(labels, counts, maxCount, a.TotalReviews)
}
