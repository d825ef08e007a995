package personality

import "fmt"

// Sentiment values produced by the Scorer
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Mood ladder, subdued pole to upbeat pole. Mood shifts at most one step per
// turn.
var moodLadder = []string{"subdued", "reserved", "neutral", "friendly", "upbeat"}

const neutralMoodIndex = 2

// Trait is one scalar disposition dimension. Traits are fixed at
// initialization; only their values shift at runtime.
type Trait struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// State is the adaptive personality record for one (tenant, property) pair
type State struct {
	Name            string  `json:"name"`
	Role            string  `json:"role"`
	CurrentMood     string  `json:"current_mood"`
	ConfidenceLevel float64 `json:"confidence_level"`
	CoreTraits      []Trait `json:"core_traits"`
}

// Update is the per-turn adaptation signal. It is derived from the message
// and the turn outcome, consumed once and never stored.
type Update struct {
	Success    bool    `json:"success"`
	Complexity float64 `json:"complexity"`
	Sentiment  string  `json:"sentiment"`
}

// Summary is a pure projection of the state for prompt building and
// reporting
type Summary struct {
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	CommunicationStyle string  `json:"communication_style"`
	Mood               string  `json:"mood"`
	Confidence         float64 `json:"confidence"`
}

// Trait returns the value of a named trait and whether it exists
func (s *State) Trait(name string) (float64, bool) {
	for _, t := range s.CoreTraits {
		if t.Name == name {
			return t.Value, true
		}
	}
	return 0, false
}

func moodIndex(mood string) int {
	for i, m := range moodLadder {
		if m == mood {
			return i
		}
	}
	return neutralMoodIndex
}

// Validate checks structural invariants of the state
func (s *State) Validate() error {
	if s.ConfidenceLevel < 0 || s.ConfidenceLevel > 1 {
		return fmt.Errorf("confidence level out of range: %f", s.ConfidenceLevel)
	}
	for _, t := range s.CoreTraits {
		if t.Value < 0 || t.Value > 1 {
			return fmt.Errorf("trait %s out of range: %f", t.Name, t.Value)
		}
	}
	return nil
}
