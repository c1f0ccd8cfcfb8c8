// Package ai defines the sentiment-classification and review-summarization
// boundary. The import pipeline classifies every new review exactly once;
// the dashboard asks for a cached natural-language summary of recent reviews.
// Both are interfaces here so the pipeline can run against the hosted model
// API in production and against the deterministic keyword classifier in tests
// or keyless deployments.
package ai

import (
	"context"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// Classification is the outcome of one sentiment pass over a review.
type Classification struct {
	Sentiment  domain.Sentiment
	Confidence float64
}

// Classifier assigns a sentiment to a single review.
type Classifier interface {
	// Classify analyzes the review text together with its star rating and
	// returns the assessed sentiment with a confidence in [0,1].
	Classify(ctx context.Context, content string, rating int) (Classification, error)
}

// Summary is one generated natural-language summary of recent reviews.
type Summary struct {
	Text       string
	Model      string
	TokenCount int
}

// ReviewInput is what the summarizer sees of a review.
type ReviewInput struct {
	Rating  int
	Content string
}

// Summarizer produces a short prose summary of a source's recent reviews.
type Summarizer interface {
	Summarize(ctx context.Context, platform domain.Platform, sourceName string, reviews []ReviewInput) (Summary, error)
}

// titleCaser renders platform enum values as display names for prompts.
var titleCaser = cases.Title(language.English)

// DisplayPlatform renders a platform enum value for human-facing text
// ("google" becomes "Google").
func DisplayPlatform(p domain.Platform) string {
	return titleCaser.String(string(p))
}
