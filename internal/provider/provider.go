// Package provider defines the boundary between the sync pipeline and the
// external review platforms (Google, Facebook, Trustpilot). Each platform has
// a Client that normalizes its wire format into the shared Review shape; the
// Registry hands the sync executor the right client for a source's platform.
//
// Clients page newest-first and treat the caller-supplied `since` bound as a
// stop condition: reviews published before it are dropped and pagination ends
// once a page falls entirely behind it, so a 90-day backfill never walks the
// platform's full history.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tbourn/go-review-backend/internal/domain"
)

// Review is one normalized review as fetched from a platform, before import.
type Review struct {
	ExternalID  string
	Author      string
	Content     string
	Rating      int
	PublishedAt time.Time
}

// Page is one window of fetched reviews plus the cursor that resumes the
// listing. An empty NextCursor means the listing is exhausted.
type Page struct {
	Reviews    []Review
	NextCursor string
}

// Client fetches reviews for sources of a single platform.
type Client interface {
	// Platform identifies which platform this client serves.
	Platform() domain.Platform

	// FetchPage returns one page of the source's reviews published at or
	// after since. An empty cursor starts from the newest review; the
	// returned cursor resumes where the page ended.
	FetchPage(ctx context.Context, src *domain.ReviewSource, since time.Time, cursor string, pageSize int) (*Page, error)
}

// ErrUnknownPlatform is returned when no client is registered for a source's
// platform.
var ErrUnknownPlatform = errors.New("no provider client for platform")

// Registry maps platforms to their fetch clients.
type Registry struct {
	clients map[domain.Platform]Client
}

// NewRegistry builds a registry over the given clients. Registering two
// clients for the same platform keeps the last one.
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[domain.Platform]Client, len(clients))}
	for _, c := range clients {
		r.Register(c)
	}
	return r
}

// Register adds or replaces the client for its platform.
func (r *Registry) Register(c Client) {
	if c == nil {
		return
	}
	r.clients[c.Platform()] = c
}

// Client returns the fetch client for platform or ErrUnknownPlatform.
func (r *Registry) Client(platform domain.Platform) (Client, error) {
	c, ok := r.clients[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
	return c, nil
}
