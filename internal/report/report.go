package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/subsidy-finder/internal/models"
)

// Summary aggregates one run's outcome for the closing log lines.
type Summary struct {
	Raw       int
	Relevant  int
	Sources   map[string]int
	TopScore  float64
	StartedAt time.Time
	Duration  time.Duration
}

// Summarize computes run statistics from the raw and processed record sets.
func Summarize(raw, processed []models.Record, startedAt time.Time) Summary {
	s := Summary{
		Raw:       len(raw),
		Relevant:  len(processed),
		Sources:   make(map[string]int),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	for _, rec := range processed {
		s.Sources[rec.SourceID]++
		if rec.RelevanceScore > s.TopScore {
			s.TopScore = rec.RelevanceScore
		}
	}
	return s
}

// WriteTable renders the ranked records as a console table.
func WriteTable(w io.Writer, records []models.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Name", "Organization", "Amount", "Deadline", "Status", "Score", "Keywords"})
	for i, rec := range records {
		t.AppendRow(table.Row{
			i + 1,
			clip(rec.Name, 50),
			rec.FundingOrganization,
			rec.Amount,
			rec.Deadline,
			rec.Status,
			fmt.Sprintf("%.2f", rec.RelevanceScore),
			clip(strings.Join(rec.KeywordsMatched, ", "), 40),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// WriteCSV writes the ranked records in CSV form, one row per record with
// every structured field included.
func WriteCSV(w io.Writer, records []models.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{
		"name", "funding_organization", "amount", "deadline", "status",
		"eligibility", "research_areas", "description", "application_process",
		"contact_info", "url", "source_id", "date_scraped",
		"relevance_score", "keywords_matched",
	})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.Name, rec.FundingOrganization, rec.Amount, rec.Deadline,
			string(rec.Status), rec.Eligibility, rec.ResearchAreas,
			rec.Description, rec.ApplicationProcess, rec.ContactInfo,
			rec.URL, rec.SourceID, rec.DateScraped.Format(time.RFC3339),
			fmt.Sprintf("%.2f", rec.RelevanceScore),
			strings.Join(rec.KeywordsMatched, "; "),
		})
	}
	t.RenderCSV()
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// WriteSummary prints the closing run statistics.
func WriteSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nRun finished in %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  raw records:      %d\n", s.Raw)
	fmt.Fprintf(w, "  relevant records: %d\n", s.Relevant)
	if s.Relevant > 0 {
		fmt.Fprintf(w, "  top score:        %.2f\n", s.TopScore)
	}
	for id, n := range s.Sources {
		fmt.Fprintf(w, "  %-18s %d\n", id+":", n)
	}
}
