package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/david/subsidy-finder/internal/config"
	"github.com/david/subsidy-finder/internal/models"
)

// Adapter turns one configured source's listing pages into records. The
// structural selectors come from configuration; the field heuristics are
// shared across all sources via the Extractor.
type Adapter struct {
	Source    config.Source
	Known     []config.KnownOpportunity
	Extractor *Extractor
}

// NewAdapter builds an adapter for one source with its curated fallback
// entries.
func NewAdapter(src config.Source, known []config.KnownOpportunity, ex *Extractor) *Adapter {
	return &Adapter{Source: src, Known: known, Extractor: ex}
}

// ID returns the source identifier.
func (a *Adapter) ID() string { return a.Source.ID }

// Collect fetches every listing URL of the source and extracts records from
// each. Per-page failures are logged and skipped; the returned error is
// non-nil only when every live listing fetch failed, so callers can decide to
// retry. Curated known opportunities are always appended, error or not.
func (a *Adapter) Collect(ctx context.Context, fetcher Fetcher) ([]models.Record, error) {
	var records []models.Record
	fetched := 0

	for _, listURL := range a.Source.ListingURLs {
		doc, err := fetcher.Fetch(ctx, listURL)
		if err != nil {
			log.Printf("[%s] listing fetch failed for %s: %v", a.Source.ID, listURL, err)
			continue
		}
		fetched++

		page, err := goquery.NewDocumentFromReader(doc.Body)
		doc.Body.Close()
		if err != nil {
			log.Printf("[%s] parse failed for %s: %v", a.Source.ID, listURL, err)
			continue
		}

		found := a.extractListing(ctx, fetcher, page, listURL)
		log.Printf("[%s] %d entries from %s", a.Source.ID, len(found), listURL)
		records = append(records, found...)
	}

	records = append(records, a.knownRecords()...)

	if fetched == 0 && len(a.Source.ListingURLs) > 0 {
		return records, fmt.Errorf("all listing fetches failed for source %s", a.Source.ID)
	}
	return records, nil
}

// extractListing locates entry elements on a listing page. Selectors are
// tried in configured order and the first selector that matches anything
// wins; when none match, the anchor-scan fallback kicks in.
func (a *Adapter) extractListing(ctx context.Context, fetcher Fetcher, page *goquery.Document, pageURL string) []models.Record {
	var sel *goquery.Selection
	for _, s := range a.Source.Selectors {
		if m := page.Find(s); m.Length() > 0 {
			sel = m
			break
		}
	}
	if sel == nil {
		return a.scanAnchors(ctx, fetcher, page, pageURL)
	}

	var records []models.Record
	sel.EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		if rec, ok := a.entryRecord(ctx, fetcher, entry, pageURL); ok {
			records = append(records, rec)
		}
		return len(records) < a.Source.MaxEntries
	})
	return records
}

// scanAnchors is the structure-free fallback: walk every anchor on the page
// and keep those whose text or href contains a configured link keyword.
func (a *Adapter) scanAnchors(ctx context.Context, fetcher Fetcher, page *goquery.Document, pageURL string) []models.Record {
	if len(a.Source.LinkKeywords) == 0 {
		return nil
	}
	var records []models.Record
	page.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		text := normalizeSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		hay := strings.ToLower(text + " " + href)
		if !containsAny(hay, a.Source.LinkKeywords) {
			return true
		}
		if rec, ok := a.entryRecord(ctx, fetcher, anchor, pageURL); ok {
			records = append(records, rec)
		}
		return len(records) < a.Source.MaxEntries
	})
	return records
}

// entryRecord builds one record from a listing entry element. Entries without
// a usable name are dropped.
func (a *Adapter) entryRecord(ctx context.Context, fetcher Fetcher, entry *goquery.Selection, pageURL string) (models.Record, bool) {
	name := entryTitle(entry)
	if name == "" {
		return models.Record{}, false
	}

	link := entryLink(entry)
	if link != "" {
		link = resolveURL(pageURL, link)
	} else {
		link = pageURL
	}

	raw := normalizeSpace(entry.Text())
	deadline := a.Extractor.Deadline(raw)

	rec := models.Record{
		ID:                  uuid.New(),
		Name:                name,
		FundingOrganization: a.Source.Organization,
		Amount:              a.Extractor.Amount(raw),
		Deadline:            deadline,
		Status:              a.Extractor.Status(deadline, raw),
		Eligibility:         a.Extractor.Eligibility(raw),
		ResearchAreas:       a.Extractor.ResearchAreas(raw),
		Description:         raw,
		ApplicationProcess:  a.Extractor.ApplicationProcess(raw),
		URL:                 link,
		RawText:             raw,
	}

	if a.Source.Detail.Enabled && link != pageURL {
		a.enrichFromDetail(ctx, fetcher, &rec, link)
	}
	return rec, true
}

// enrichFromDetail performs the single bounded extra fetch for an entry and
// backfills description, deadline and amount from the detail page. Failures
// leave the listing-derived record untouched.
func (a *Adapter) enrichFromDetail(ctx context.Context, fetcher Fetcher, rec *models.Record, link string) {
	doc, err := fetcher.Fetch(ctx, link)
	if err != nil {
		log.Printf("[%s] detail fetch failed for %s: %v", a.Source.ID, link, err)
		return
	}
	page, err := goquery.NewDocumentFromReader(doc.Body)
	doc.Body.Close()
	if err != nil {
		return
	}

	body := ""
	for _, s := range a.Source.Detail.Description {
		if m := page.Find(s); m.Length() > 0 {
			body = normalizeSpace(m.First().Text())
			break
		}
	}
	if body == "" {
		body = normalizeSpace(page.Find("body").Text())
	}
	if body == "" {
		return
	}

	rec.Description = body
	rec.RawText = rec.RawText + " " + body
	if rec.Deadline == "" {
		rec.Deadline = a.Extractor.Deadline(body)
		rec.Status = a.Extractor.Status(rec.Deadline, rec.RawText)
	}
	if rec.Amount == "" {
		rec.Amount = a.Extractor.Amount(body)
	}
	if rec.Eligibility == "" {
		rec.Eligibility = a.Extractor.Eligibility(body)
	}
	if rec.ApplicationProcess == "" {
		rec.ApplicationProcess = a.Extractor.ApplicationProcess(body)
	}
	if rec.ResearchAreas == "" {
		rec.ResearchAreas = a.Extractor.ResearchAreas(body)
	}
}

// knownRecords converts the source's curated fallback entries into records.
func (a *Adapter) knownRecords() []models.Record {
	records := make([]models.Record, 0, len(a.Known))
	for _, k := range a.Known {
		raw := k.RawText
		if raw == "" {
			raw = normalizeSpace(k.Name + " " + k.Description + " " + k.Eligibility + " " + k.ResearchAreas)
		}
		records = append(records, models.Record{
			ID:                  uuid.New(),
			Name:                k.Name,
			FundingOrganization: a.Source.Organization,
			Amount:              k.Amount,
			Deadline:            k.Deadline,
			Status:              models.Status(k.Status),
			Eligibility:         k.Eligibility,
			ResearchAreas:       k.ResearchAreas,
			Description:         k.Description,
			ApplicationProcess:  k.ApplicationProcess,
			ContactInfo:         k.ContactInfo,
			URL:                 k.URL,
			RawText:             raw,
		})
	}
	return records
}

// entryTitle pulls the entry name: the first heading inside the element, then
// the first anchor, then the element's own text.
func entryTitle(entry *goquery.Selection) string {
	for _, s := range []string{"h1", "h2", "h3", "h4"} {
		if h := entry.Find(s); h.Length() > 0 {
			if t := normalizeSpace(h.First().Text()); t != "" {
				return t
			}
		}
	}
	if an := entry.Find("a"); an.Length() > 0 {
		if t := normalizeSpace(an.First().Text()); t != "" {
			return t
		}
	}
	t := normalizeSpace(entry.Text())
	if len(t) > 150 {
		return ""
	}
	return t
}

// entryLink finds the entry's own href or the first anchor href inside it.
func entryLink(entry *goquery.Selection) string {
	if href, ok := entry.Attr("href"); ok {
		return href
	}
	if href, ok := entry.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	return ""
}
