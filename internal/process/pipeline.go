package process

import (
	"log"
	"sort"
	"time"

	"github.com/david/subsidy-finder/internal/config"
	"github.com/david/subsidy-finder/internal/ingest"
	"github.com/david/subsidy-finder/internal/models"
)

// Pipeline turns raw records into the final ranked result set. Stages run in
// a fixed order: clean, score, threshold filter, sort, dedup. Scoring happens
// before dedup so the highest-scoring variant of a duplicate survives.
type Pipeline struct {
	cleaner *Cleaner
	scorer  *Scorer
	cfg     config.Scoring
}

// NewPipeline assembles the processing stages from configuration.
func NewPipeline(cfg config.Scoring, vocab config.Vocabulary) *Pipeline {
	return &Pipeline{
		cleaner: NewCleaner(vocab),
		scorer:  NewScorer(cfg, vocab),
		cfg:     cfg,
	}
}

// Process runs all stages over the raw records and returns them ranked by
// descending relevance. The threshold is inclusive: a record scoring exactly
// the minimum is retained. Ties keep their input order.
func (p *Pipeline) Process(raw []models.Record, now time.Time) []models.Record {
	kept := make([]models.Record, 0, len(raw))
	for _, rec := range raw {
		rec = p.cleaner.Clean(rec)
		score, keywords := p.scorer.Score(rec, now)
		if score < p.cfg.MinScore {
			continue
		}
		rec.RelevanceScore = score
		rec.KeywordsMatched = keywords
		kept = append(kept, rec)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})

	deduped := dedupByURL(kept)
	log.Printf("processed %d raw records: %d relevant, %d after dedup",
		len(raw), len(kept), len(deduped))
	return deduped
}

// dedupByURL removes records sharing a canonical URL. Input is already sorted
// by score, so keeping the first occurrence keeps the best one. Records
// without a URL are never merged.
func dedupByURL(records []models.Record) []models.Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		if rec.URL == "" {
			out = append(out, rec)
			continue
		}
		key := ingest.CanonicalizeURL(rec.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
