package ingest

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/david/subsidy-finder/internal/models"
)

// Orchestrator runs every adapter concurrently and merges their output. One
// source failing, even after its retries, never affects the others.
type Orchestrator struct {
	Adapters   []*Adapter
	Fetcher    Fetcher
	MaxRetries int
	RetryDelay time.Duration

	now func() time.Time // test seam
}

// NewOrchestrator wires adapters to a shared fetcher.
func NewOrchestrator(adapters []*Adapter, fetcher Fetcher, maxRetries int, retryDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		Adapters:   adapters,
		Fetcher:    fetcher,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		now:        time.Now,
	}
}

// RunAll collects from every adapter in parallel and returns the merged raw
// records, stamped with provenance. The slice preserves adapter order so runs
// over identical content are reproducible.
func (o *Orchestrator) RunAll(ctx context.Context) []models.Record {
	results := make([][]models.Record, len(o.Adapters))

	var wg sync.WaitGroup
	for i, adapter := range o.Adapters {
		wg.Add(1)
		go func(i int, a *Adapter) {
			defer wg.Done()
			results[i] = o.collectWithRetry(ctx, a)
		}(i, adapter)
	}
	wg.Wait()

	var merged []models.Record
	for i, recs := range results {
		scraped := o.now().UTC()
		for j := range recs {
			recs[j].SourceID = o.Adapters[i].ID()
			if recs[j].DateScraped.IsZero() {
				recs[j].DateScraped = scraped
			}
		}
		merged = append(merged, recs...)
	}
	log.Printf("collected %d raw records from %d sources", len(merged), len(o.Adapters))
	return merged
}

// collectWithRetry retries a fully-failed source with linearly growing
// backoff. A partial result (some listing pages down) is accepted as-is;
// retries are reserved for total failure of the live fetches.
func (o *Orchestrator) collectWithRetry(ctx context.Context, a *Adapter) []models.Record {
	var records []models.Record
	var err error

	for attempt := 1; attempt <= o.MaxRetries; attempt++ {
		records, err = a.Collect(ctx, o.Fetcher)
		if err == nil {
			return records
		}
		log.Printf("[%s] attempt %d/%d failed: %v", a.ID(), attempt, o.MaxRetries, err)

		if attempt < o.MaxRetries {
			select {
			case <-ctx.Done():
				return records
			case <-time.After(o.RetryDelay * time.Duration(attempt)):
			}
		}
	}

	log.Printf("[%s] giving up after %d attempts, keeping %d fallback records", a.ID(), o.MaxRetries, len(records))
	return records
}
