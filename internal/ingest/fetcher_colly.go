package ingest

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/david/subsidy-finder/internal/config"
)

// CollyFetcher is an alternative Fetcher built on Colly. It gets the same
// courtesy delay through Colly's per-domain limit rule and the same one-shot
// certificate-verification fallback as the plain HTTP client.
type CollyFetcher struct {
	UserAgent      string
	RequestTimeout time.Duration
	DomainDelay    time.Duration
	MaxBodySize    int
}

// NewCollyFetcher creates a CollyFetcher from the shared fetch settings.
func NewCollyFetcher(cfg config.FetchSettings) *CollyFetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	delay := time.Duration(cfg.DelaySeconds * float64(time.Second))
	if delay <= 0 {
		delay = 2 * time.Second
	}

	return &CollyFetcher{
		UserAgent:      cfg.UserAgent,
		RequestTimeout: timeout,
		DomainDelay:    delay,
		MaxBodySize:    10 * 1024 * 1024,
	}
}

func (f *CollyFetcher) buildCollector(host string, insecure bool) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	}
	if f.UserAgent != "" {
		opts = append(opts, colly.UserAgent(f.UserAgent))
	}
	if host != "" {
		opts = append(opts, colly.AllowedDomains(host))
	}

	c := colly.NewCollector(opts...)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       f.DomainDelay,
	})
	c.SetRequestTimeout(f.RequestTimeout)

	if insecure {
		c.WithTransport(&http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	return c
}

// Fetch implements the Fetcher interface.
func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	doc, err := f.visit(ctx, parsed.Host, targetURL, false)
	if err != nil && isCertificateError(err) {
		return f.visit(ctx, parsed.Host, targetURL, true)
	}
	return doc, err
}

func (f *CollyFetcher) visit(ctx context.Context, host, targetURL string, insecure bool) (*FetchedDocument, error) {
	c := f.buildCollector(host, insecure)

	var result *FetchedDocument
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode != http.StatusOK {
			fetchErr = fmt.Errorf("unexpected status code: %d", r.StatusCode)
			return
		}
		result = &FetchedDocument{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        io.NopCloser(bytes.NewReader(r.Body)),
			FetchedAt:   time.Now(),
			Headers:     map[string][]string(r.Headers.Clone()),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Visit(targetURL); err != nil {
		return nil, fmt.Errorf("visit failed: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if result == nil {
		return nil, fmt.Errorf("no response received for %s", targetURL)
	}
	return result, nil
}
