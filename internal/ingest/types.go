package ingest

import (
	"context"
	"io"
	"time"
)

// FetchedDocument represents the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL. Implementations report every
// failure as an error return; callers treat an error as "no content" and
// carry on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}
