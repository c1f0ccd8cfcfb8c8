package ai

import (
	"context"
	"regexp"
	"strings"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// KeywordClassifier is a deterministic, offline Classifier. It scores a
// review by counting lexicon hits and breaks ties with the star rating. It
// backs deployments without a model API key and keeps tests hermetic.
type KeywordClassifier struct{}

var _ Classifier = (*KeywordClassifier)(nil)

// NewKeywordClassifier returns the lexicon-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var keywordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

var positiveWords = map[string]struct{}{
	"amazing": {}, "awesome": {}, "best": {}, "delicious": {}, "excellent": {},
	"fantastic": {}, "friendly": {}, "fresh": {}, "great": {}, "happy": {},
	"helpful": {}, "love": {}, "loved": {}, "lovely": {}, "perfect": {},
	"pleasant": {}, "polite": {}, "professional": {}, "prompt": {},
	"recommend": {}, "recommended": {}, "superb": {}, "tasty": {},
	"wonderful": {},
}

var negativeWords = map[string]struct{}{
	"avoid": {}, "awful": {}, "bad": {}, "broken": {}, "cold": {},
	"complaint": {}, "dirty": {}, "disappointed": {}, "disappointing": {},
	"disgusting": {}, "horrible": {}, "late": {}, "mediocre": {},
	"overpriced": {}, "poor": {}, "refund": {}, "rude": {}, "scam": {},
	"slow": {}, "stale": {}, "terrible": {}, "unacceptable": {},
	"unhelpful": {}, "worst": {},
}

// Classify scores content against the lexicons. A positive margin wins
// positive, a negative margin wins negative, and a tie falls back to the
// star rating (4-5 positive, 1-2 negative, otherwise neutral). Confidence
// grows with the margin and is capped below certainty; rating-only decisions
// carry a flat low confidence.
func (c *KeywordClassifier) Classify(_ context.Context, content string, rating int) (Classification, error) {
	var pos, neg int
	for _, word := range keywordRE.FindAllString(strings.ToLower(content), -1) {
		if _, ok := positiveWords[word]; ok {
			pos++
		}
		if _, ok := negativeWords[word]; ok {
			neg++
		}
	}

	margin := pos - neg
	switch {
	case margin > 0:
		return Classification{Sentiment: domain.SentimentPositive, Confidence: marginConfidence(margin)}, nil
	case margin < 0:
		return Classification{Sentiment: domain.SentimentNegative, Confidence: marginConfidence(-margin)}, nil
	}

	switch {
	case rating >= 4:
		return Classification{Sentiment: domain.SentimentPositive, Confidence: 0.5}, nil
	case rating >= 1 && rating <= 2:
		return Classification{Sentiment: domain.SentimentNegative, Confidence: 0.5}, nil
	}
	return Classification{Sentiment: domain.SentimentNeutral, Confidence: 0.5}, nil
}

func marginConfidence(margin int) float64 {
	switch {
	case margin >= 3:
		return 0.9
	case margin == 2:
		return 0.8
	default:
		return 0.7
	}
}
