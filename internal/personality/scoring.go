package personality

import "strings"

// Scorer derives the per-turn adaptation inputs from a raw message.
// It is an interface so the cheap lexicon scorer can be swapped for a
// model-backed one without touching the update-rule math.
type Scorer interface {
	// Complexity scores how demanding a message is, in [0, 1]
	Complexity(message string) float64
	// Sentiment classifies a message as positive, negative or neutral
	Sentiment(message string) string
}

// HeuristicScorer scores messages with fixed lexicons and structural
// heuristics. Deterministic and dependency-free so personality adaptation
// stays cheap per turn.
type HeuristicScorer struct{}

// NewHeuristicScorer creates the default scorer
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

const (
	complexityBase             = 0.3
	complexityLengthBonus      = 0.2
	complexitySentenceBonus    = 0.2
	complexityQuestionBonus    = 0.1
	complexityConjunctionBonus = 0.2

	longMessageWords   = 20
	multiSentenceCount = 2
)

// multiRequestConjunctions signal several asks packed into one message
var multiRequestConjunctions = []string{"and", "also", "additionally"}

var positiveLexicon = []string{
	"great", "thanks", "thank", "love", "wonderful", "amazing", "perfect",
	"excellent", "happy", "awesome", "good", "appreciate", "fantastic",
	"delighted", "enjoy", "lovely", "beautiful", "pleased",
}

var negativeLexicon = []string{
	"bad", "terrible", "awful", "hate", "angry", "disappointed", "horrible",
	"problem", "wrong", "complaint", "upset", "frustrated", "broken",
	"dirty", "cold", "noisy", "rude", "worst",
}

// Complexity returns a base score plus additive bonuses for length, sentence
// count, a question mark and multi-request conjunctions, capped at 1.0
func (s *HeuristicScorer) Complexity(message string) float64 {
	score := complexityBase

	if len(strings.Fields(message)) > longMessageWords {
		score += complexityLengthBonus
	}
	if countSentences(message) > multiSentenceCount {
		score += complexitySentenceBonus
	}
	if strings.Contains(message, "?") {
		score += complexityQuestionBonus
	}
	words := normalizedWords(message)
	for _, conj := range multiRequestConjunctions {
		if containsWord(words, conj) {
			score += complexityConjunctionBonus
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Sentiment counts lexicon matches and takes the majority; ties resolve to
// neutral
func (s *HeuristicScorer) Sentiment(message string) string {
	words := normalizedWords(message)

	positive := 0
	negative := 0
	for _, w := range words {
		if containsWord(positiveLexicon, w) {
			positive++
		}
		if containsWord(negativeLexicon, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func countSentences(message string) int {
	count := 0
	inSentence := false
	for _, r := range message {
		switch r {
		case '.', '!', '?':
			if inSentence {
				count++
				inSentence = false
			}
		default:
			if r != ' ' && r != '\n' && r != '\t' {
				inSentence = true
			}
		}
	}
	if inSentence {
		count++
	}
	return count
}

func normalizedWords(message string) []string {
	fields := strings.Fields(strings.ToLower(message))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
