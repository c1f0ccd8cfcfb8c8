// Package provider – Trustpilot client
//
// Fetches business-unit reviews from the Trustpilot public API. Trustpilot
// authenticates with an apikey header and pages by number, so the cursor is
// the next page index rendered as a string.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// DefaultTrustpilotBaseURL is the production Trustpilot API endpoint.
const DefaultTrustpilotBaseURL = "https://api.trustpilot.com/v1"

// TrustpilotClient fetches reviews for Trustpilot business units.
type TrustpilotClient struct {
	base string
	api  *apiClient
}

// compile-time interface guard
var _ Client = (*TrustpilotClient)(nil)

// NewTrustpilotClient builds a client against baseURL
// (DefaultTrustpilotBaseURL when empty) with the given throttle and retry
// settings.
func NewTrustpilotClient(baseURL string, timeout time.Duration, rps float64, burst, retries int) *TrustpilotClient {
	if baseURL == "" {
		baseURL = DefaultTrustpilotBaseURL
	}
	return &TrustpilotClient{
		base: baseURL,
		api:  newAPIClient(timeout, rps, burst, retries),
	}
}

// Platform identifies which platform this client serves.
func (c *TrustpilotClient) Platform() domain.Platform { return domain.PlatformTrustpilot }

type trustpilotReviewsResponse struct {
	Reviews []trustpilotReview `json:"reviews"`
}

type trustpilotReview struct {
	ID        string             `json:"id"`
	Stars     int                `json:"stars"`
	Title     string             `json:"title"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
	Consumer  trustpilotConsumer `json:"consumer"`
}

type trustpilotConsumer struct {
	DisplayName string `json:"displayName"`
}

// FetchPage returns one page of the business unit's reviews published at or
// after since, newest first.
func (c *TrustpilotClient) FetchPage(ctx context.Context, src *domain.ReviewSource, since time.Time, cursor string, pageSize int) (*Page, error) {
	if src.Credentials.Trustpilot == nil {
		return nil, fmt.Errorf("source %s has no trustpilot credentials", src.ID)
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	pageNum := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid trustpilot cursor %q", cursor)
		}
		pageNum = n
	}

	u, err := url.Parse(fmt.Sprintf("%s/business-units/%s/reviews", c.base, url.PathEscape(src.ExternalProfileID)))
	if err != nil {
		return nil, fmt.Errorf("build trustpilot url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(pageNum))
	q.Set("perPage", strconv.Itoa(pageSize))
	q.Set("orderBy", "createdat.desc")
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("apikey", src.Credentials.Trustpilot.APIKey)

	var resp trustpilotReviewsResponse
	if err := c.api.getJSON(ctx, u.String(), header, &resp); err != nil {
		return nil, fmt.Errorf("trustpilot reviews for %s: %w", src.ExternalProfileID, err)
	}

	page := &Page{}
	if len(resp.Reviews) == pageSize {
		page.NextCursor = strconv.Itoa(pageNum + 1)
	}
	pastWindow := false
	for _, r := range resp.Reviews {
		if r.ID == "" || r.Stars < 1 || r.Stars > 5 {
			continue
		}
		if r.CreatedAt.Before(since) {
			pastWindow = true
			continue
		}
		content := r.Text
		if title := strings.TrimSpace(r.Title); title != "" {
			content = title + "\n" + r.Text
		}
		page.Reviews = append(page.Reviews, Review{
			ExternalID:  r.ID,
			Author:      r.Consumer.DisplayName,
			Content:     strings.TrimSpace(content),
			Rating:      r.Stars,
			PublishedAt: r.CreatedAt,
		})
	}
	if pastWindow {
		page.NextCursor = ""
	}
	return page, nil
}
