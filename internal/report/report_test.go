package report

import (
	"strings"
	"testing"
	"time"

	"github.com/david/subsidy-finder/internal/models"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{
			Name:                "Vernieuwingsimpuls Veni",
			FundingOrganization: "NWO",
			Amount:              "€320.000",
			Deadline:            "15 march 2025",
			Status:              models.StatusOpen,
			URL:                 "https://www.nwo.nl/veni",
			SourceID:            "nwo",
			DateScraped:         time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
			RelevanceScore:      6.5,
			KeywordsMatched:     []string{"onderzoek", "innovatie"},
		},
		{
			Name:                "Open Competitie",
			FundingOrganization: "NWO",
			Status:              models.StatusUnknown,
			SourceID:            "nwo",
			RelevanceScore:      3.0,
		},
	}
}

func TestWriteTable(t *testing.T) {
	var sb strings.Builder
	WriteTable(&sb, sampleRecords())

	out := sb.String()
	for _, want := range []string{"Vernieuwingsimpuls Veni", "€320.000", "6.50", "Open Competitie"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	WriteCSV(&sb, sampleRecords())

	out := sb.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want header + 2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "relevance_score") {
		t.Errorf("header missing score column: %q", lines[0])
	}
	if !strings.Contains(out, "onderzoek; innovatie") {
		t.Errorf("keywords not joined in CSV:\n%s", out)
	}
}

func TestSummarize(t *testing.T) {
	started := time.Now().Add(-time.Second)
	raw := make([]models.Record, 5)
	s := Summarize(raw, sampleRecords(), started)

	if s.Raw != 5 || s.Relevant != 2 {
		t.Errorf("counts = %d/%d, want 5 raw and 2 relevant", s.Raw, s.Relevant)
	}
	if s.TopScore != 6.5 {
		t.Errorf("TopScore = %v, want 6.5", s.TopScore)
	}
	if s.Sources["nwo"] != 2 {
		t.Errorf("Sources[nwo] = %d, want 2", s.Sources["nwo"])
	}
	if s.Duration <= 0 {
		t.Error("expected positive duration")
	}
}
