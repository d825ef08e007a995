package personality

import "testing"

func TestHeuristicScorer_Complexity_AllBonuses(t *testing.T) {
	s := NewHeuristicScorer()

	// 25 words, 4 sentences, contains "?" and "and": every bonus applies,
	// so the score caps at 1.0.
	message := "Can you book the spa for me tomorrow afternoon? I would also like dinner. " +
		"Please confirm the table and the time. My partner is joining too."
	words := 0
	for range splitWordsForTest(message) {
		words++
	}
	if words <= 20 {
		t.Fatalf("test message must exceed 20 words, got %d", words)
	}

	score := s.Complexity(message)
	if score != 1.0 {
		t.Errorf("Expected complexity 1.0, got %f", score)
	}
}

func TestHeuristicScorer_Complexity_Base(t *testing.T) {
	s := NewHeuristicScorer()

	score := s.Complexity("Hello there.")
	if score != complexityBase {
		t.Errorf("Expected base complexity %f, got %f", complexityBase, score)
	}
}

func TestHeuristicScorer_Complexity_QuestionOnly(t *testing.T) {
	s := NewHeuristicScorer()

	score := s.Complexity("Is the pool open?")
	want := complexityBase + complexityQuestionBonus
	if score != want {
		t.Errorf("Expected complexity %f, got %f", want, score)
	}
}

func TestHeuristicScorer_Sentiment_PositiveMajority(t *testing.T) {
	s := NewHeuristicScorer()

	// Two positive words, one negative: resolves positive.
	sentiment := s.Sentiment("The spa was wonderful and the dinner was amazing, though the wait was bad.")
	if sentiment != SentimentPositive {
		t.Errorf("Expected positive, got %s", sentiment)
	}
}

func TestHeuristicScorer_Sentiment_NegativeMajority(t *testing.T) {
	s := NewHeuristicScorer()

	sentiment := s.Sentiment("The room was dirty and the service was terrible.")
	if sentiment != SentimentNegative {
		t.Errorf("Expected negative, got %s", sentiment)
	}
}

func TestHeuristicScorer_Sentiment_TieIsNeutral(t *testing.T) {
	s := NewHeuristicScorer()

	sentiment := s.Sentiment("The view was wonderful but the room was dirty.")
	if sentiment != SentimentNeutral {
		t.Errorf("Expected neutral on tie, got %s", sentiment)
	}
}

func TestHeuristicScorer_Sentiment_NoMatchesIsNeutral(t *testing.T) {
	s := NewHeuristicScorer()

	sentiment := s.Sentiment("Please send a taxi at noon.")
	if sentiment != SentimentNeutral {
		t.Errorf("Expected neutral, got %s", sentiment)
	}
}

func TestCountSentences(t *testing.T) {
	cases := []struct {
		message string
		want    int
	}{
		{"One sentence.", 1},
		{"One. Two. Three.", 3},
		{"No terminator", 1},
		{"Question? Answer! Statement.", 3},
		{"", 0},
		{"...", 0},
	}
	for _, tc := range cases {
		if got := countSentences(tc.message); got != tc.want {
			t.Errorf("countSentences(%q) = %d, want %d", tc.message, got, tc.want)
		}
	}
}

func splitWordsForTest(message string) []string {
	return normalizedWords(message)
}
