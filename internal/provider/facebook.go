// Package provider – Facebook client
//
// Fetches page ratings through the Graph API. Graph timestamps use an ISO
// variant without a colon in the zone offset, pagination is cursor-based
// (paging.cursors.after), and star ratings are only present on legacy-style
// ratings; recommendation-only entries carry no stars and are skipped.
package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// DefaultFacebookBaseURL is the production Graph API endpoint.
const DefaultFacebookBaseURL = "https://graph.facebook.com/v19.0"

// facebookRatingFields selects the rating attributes the import needs.
const facebookRatingFields = "open_graph_story{id},review_text,rating,created_time,reviewer{id,name}"

// FacebookClient fetches ratings for Facebook pages.
type FacebookClient struct {
	base string
	api  *apiClient
}

// compile-time interface guard
var _ Client = (*FacebookClient)(nil)

// NewFacebookClient builds a client against baseURL (DefaultFacebookBaseURL
// when empty) with the given throttle and retry settings.
func NewFacebookClient(baseURL string, timeout time.Duration, rps float64, burst, retries int) *FacebookClient {
	if baseURL == "" {
		baseURL = DefaultFacebookBaseURL
	}
	return &FacebookClient{
		base: baseURL,
		api:  newAPIClient(timeout, rps, burst, retries),
	}
}

// Platform identifies which platform this client serves.
func (c *FacebookClient) Platform() domain.Platform { return domain.PlatformFacebook }

type facebookRatingsResponse struct {
	Data   []facebookRating `json:"data"`
	Paging facebookPaging   `json:"paging"`
}

type facebookRating struct {
	OpenGraphStory facebookStory    `json:"open_graph_story"`
	ReviewText     string           `json:"review_text"`
	Rating         int              `json:"rating"`
	CreatedTime    facebookTime     `json:"created_time"`
	Reviewer       facebookReviewer `json:"reviewer"`
}

type facebookStory struct {
	ID string `json:"id"`
}

type facebookReviewer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type facebookPaging struct {
	Cursors facebookCursors `json:"cursors"`
	Next    string          `json:"next"`
}

type facebookCursors struct {
	After string `json:"after"`
}

// facebookTime parses Graph API timestamps, which come either as RFC 3339 or
// as the legacy "-0700" offset form.
type facebookTime struct {
	time.Time
}

func (t *facebookTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported facebook timestamp %q", s)
}

// FetchPage returns one page of the page's ratings published at or after
// since, newest first.
func (c *FacebookClient) FetchPage(ctx context.Context, src *domain.ReviewSource, since time.Time, cursor string, pageSize int) (*Page, error) {
	if src.Credentials.Facebook == nil {
		return nil, fmt.Errorf("source %s has no facebook credentials", src.ID)
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	u, err := url.Parse(fmt.Sprintf("%s/%s/ratings", c.base, url.PathEscape(src.ExternalProfileID)))
	if err != nil {
		return nil, fmt.Errorf("build facebook url: %w", err)
	}
	q := u.Query()
	q.Set("fields", facebookRatingFields)
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("access_token", src.Credentials.Facebook.AccessToken)
	if cursor != "" {
		q.Set("after", cursor)
	}
	u.RawQuery = q.Encode()

	var resp facebookRatingsResponse
	if err := c.api.getJSON(ctx, u.String(), nil, &resp); err != nil {
		return nil, fmt.Errorf("facebook ratings for %s: %w", src.ExternalProfileID, err)
	}

	page := &Page{}
	if resp.Paging.Next != "" {
		page.NextCursor = resp.Paging.Cursors.After
	}
	pastWindow := false
	for _, r := range resp.Data {
		// Recommendation-only entries have no star value and cannot feed the
		// rating aggregates.
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		if r.CreatedTime.Before(since) {
			pastWindow = true
			continue
		}
		externalID := r.OpenGraphStory.ID
		if externalID == "" {
			externalID = fmt.Sprintf("%s:%d", r.Reviewer.ID, r.CreatedTime.Unix())
		}
		page.Reviews = append(page.Reviews, Review{
			ExternalID:  externalID,
			Author:      r.Reviewer.Name,
			Content:     r.ReviewText,
			Rating:      r.Rating,
			PublishedAt: r.CreatedTime.Time,
		})
	}
	if pastWindow {
		page.NextCursor = ""
	}
	return page, nil
}
