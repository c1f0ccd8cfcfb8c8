// Package ai – hosted model client
//
// This file implements Classifier and Summarizer against an OpenAI-compatible
// chat-completions endpoint. Classification asks for strict JSON and
// tolerates the model wrapping it in a markdown fence; summarization returns
// the completion text as-is. Token usage is taken from the API's usage block
// so generation cost can be persisted alongside each summary.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// DefaultOpenAIBaseURL is the production chat-completions host.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to an OpenAI-compatible API. It implements both
// Classifier and Summarizer.
type OpenAIClient struct {
	BaseURL       string
	APIKey        string
	ClassifyModel string
	SummaryModel  string

	client *http.Client
}

// compile-time interface guards
var (
	_ Classifier = (*OpenAIClient)(nil)
	_ Summarizer = (*OpenAIClient)(nil)
)

// NewOpenAIClient builds a client for the given endpoint and models. An empty
// baseURL selects the production host.
func NewOpenAIClient(baseURL, apiKey, classifyModel, summaryModel string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		ClassifyModel: classifyModel,
		SummaryModel:  summaryModel,
		client:        &http.Client{Timeout: timeout},
	}
}

// chat request/response wire shapes (chat-completions subset we use).

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// complete performs one chat-completions call and returns the completion text
// together with the total token usage.
func (c *OpenAIClient) complete(ctx context.Context, model, system, user string, maxTokens int) (string, int, error) {
	if c.APIKey == "" {
		return "", 0, fmt.Errorf("model API key not configured")
	}

	payload := chatRequest{
		Model:       model,
		Temperature: 0.3,
		MaxTokens:   maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("model API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("model API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", 0, fmt.Errorf("no choices in model response")
	}
	return result.Choices[0].Message.Content, result.Usage.TotalTokens, nil
}

const classifySystemPrompt = `You classify customer reviews. Respond with strict JSON only: ` +
	`{"sentiment": "positive"|"negative"|"neutral", "confidence": <0..1>}. No prose, no markdown.`

// Classify asks the model for the review's sentiment. The rating is included
// as context; the model decides, the rating does not override it.
func (c *OpenAIClient) Classify(ctx context.Context, content string, rating int) (Classification, error) {
	user := fmt.Sprintf("Star rating: %d of 5\nReview:\n%s", rating, content)
	text, _, err := c.complete(ctx, c.ClassifyModel, classifySystemPrompt, user, 64)
	if err != nil {
		return Classification{}, err
	}

	var parsed struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		return Classification{}, fmt.Errorf("unparseable classification %q: %w", text, err)
	}

	sentiment := domain.Sentiment(strings.ToLower(strings.TrimSpace(parsed.Sentiment)))
	if !sentiment.Valid() {
		return Classification{}, fmt.Errorf("model returned unknown sentiment %q", parsed.Sentiment)
	}
	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Classification{Sentiment: sentiment, Confidence: confidence}, nil
}

// Summarize produces a short prose summary of the given reviews for one
// source.
func (c *OpenAIClient) Summarize(ctx context.Context, platform domain.Platform, sourceName string, reviews []ReviewInput) (Summary, error) {
	if len(reviews) == 0 {
		return Summary{}, fmt.Errorf("no reviews to summarize")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent %s reviews for %q:\n\n", DisplayPlatform(platform), sourceName)
	for i, r := range reviews {
		fmt.Fprintf(&b, "%d. [%d/5] %s\n", i+1, r.Rating, r.Content)
	}

	system := "You summarize customer reviews for a business owner. " +
		"Write 2-3 plain sentences covering the overall tone, what customers praise, and what they complain about. " +
		"Do not invent details that are not in the reviews."
	text, tokens, err := c.complete(ctx, c.SummaryModel, system, b.String(), 300)
	if err != nil {
		return Summary{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Summary{}, fmt.Errorf("model returned an empty summary")
	}
	return Summary{Text: text, Model: c.SummaryModel, TokenCount: tokens}, nil
}

// stripFences unwraps a markdown code fence if the model ignored the
// strict-JSON instruction.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
