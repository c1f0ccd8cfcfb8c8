// Package provider – Google client
//
// Fetches reviews from the Google Business Profile reviews endpoint. Google
// reports star ratings as enum strings (ONE..FIVE) and pages with an opaque
// nextPageToken; both are normalized here.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// DefaultGoogleBaseURL is the production reviews API endpoint.
const DefaultGoogleBaseURL = "https://mybusiness.googleapis.com/v4"

// GoogleClient fetches reviews for Google Business Profile locations.
type GoogleClient struct {
	base string
	api  *apiClient
}

// compile-time interface guard
var _ Client = (*GoogleClient)(nil)

// NewGoogleClient builds a client against baseURL (DefaultGoogleBaseURL when
// empty) with the given throttle and retry settings.
func NewGoogleClient(baseURL string, timeout time.Duration, rps float64, burst, retries int) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	return &GoogleClient{
		base: baseURL,
		api:  newAPIClient(timeout, rps, burst, retries),
	}
}

// Platform identifies which platform this client serves.
func (c *GoogleClient) Platform() domain.Platform { return domain.PlatformGoogle }

type googleReviewsResponse struct {
	Reviews       []googleReview `json:"reviews"`
	NextPageToken string         `json:"nextPageToken"`
}

type googleReview struct {
	ReviewID   string         `json:"reviewId"`
	Reviewer   googleReviewer `json:"reviewer"`
	StarRating string         `json:"starRating"`
	Comment    string         `json:"comment"`
	CreateTime time.Time      `json:"createTime"`
	UpdateTime time.Time      `json:"updateTime"`
}

type googleReviewer struct {
	DisplayName string `json:"displayName"`
}

// googleStars maps the API's rating enum onto integer stars.
var googleStars = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

// FetchPage returns one page of the location's reviews published at or after
// since, newest first.
func (c *GoogleClient) FetchPage(ctx context.Context, src *domain.ReviewSource, since time.Time, cursor string, pageSize int) (*Page, error) {
	if src.Credentials.Google == nil {
		return nil, fmt.Errorf("source %s has no google credentials", src.ID)
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	u, err := url.Parse(fmt.Sprintf("%s/locations/%s/reviews", c.base, url.PathEscape(src.ExternalProfileID)))
	if err != nil {
		return nil, fmt.Errorf("build google url: %w", err)
	}
	q := u.Query()
	q.Set("pageSize", strconv.Itoa(pageSize))
	if cursor != "" {
		q.Set("pageToken", cursor)
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+src.Credentials.Google.APIKey)

	var resp googleReviewsResponse
	if err := c.api.getJSON(ctx, u.String(), header, &resp); err != nil {
		return nil, fmt.Errorf("google reviews for %s: %w", src.ExternalProfileID, err)
	}

	page := &Page{NextCursor: resp.NextPageToken}
	pastWindow := false
	for _, r := range resp.Reviews {
		rating, known := googleStars[r.StarRating]
		if !known || r.ReviewID == "" {
			continue
		}
		if r.CreateTime.Before(since) {
			pastWindow = true
			continue
		}
		page.Reviews = append(page.Reviews, Review{
			ExternalID:  r.ReviewID,
			Author:      r.Reviewer.DisplayName,
			Content:     r.Comment,
			Rating:      rating,
			PublishedAt: r.CreateTime,
		})
	}
	// Listings are newest-first: once a page reaches reviews older than the
	// window there is nothing further back worth fetching.
	if pastWindow {
		page.NextCursor = ""
	}
	return page, nil
}
