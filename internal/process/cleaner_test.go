package process

import (
	"strings"
	"testing"

	"github.com/david/subsidy-finder/internal/models"
)

func TestCleanStripsHTML(t *testing.T) {
	c := NewCleaner(testVocab())

	rec := c.Clean(models.Record{
		Name:        "<b>Vernieuwings&shy;impuls</b> &amp; meer",
		Description: "<p>Onderzoek naar   patiëntenzorg.</p><script>alert(1)</script>",
	})

	if strings.ContainsAny(rec.Name, "<>") {
		t.Errorf("markup left in name: %q", rec.Name)
	}
	if strings.Contains(rec.Description, "alert") {
		t.Errorf("script content left in description: %q", rec.Description)
	}
	if !strings.Contains(rec.Description, "patiëntenzorg") {
		t.Errorf("accented characters must survive cleaning: %q", rec.Description)
	}
	if strings.Contains(rec.Description, "  ") {
		t.Errorf("whitespace not collapsed: %q", rec.Description)
	}
}

func TestCleanNormalizesDeadline(t *testing.T) {
	c := NewCleaner(testVocab())

	tests := []struct {
		in   string
		want string
	}{
		{"15 maart 2025", "15 march 2025"},
		{"1 Mei 2025", "1 may 2025"},
		{"30 oktober 2024", "30 october 2024"},
		{"12 april 2025", "12 april 2025"},
		{"2025-03-15", "2025-03-15"},
		{"", ""},
	}
	for _, tt := range tests {
		rec := c.Clean(models.Record{Deadline: tt.in})
		if rec.Deadline != tt.want {
			t.Errorf("Clean deadline %q = %q, want %q", tt.in, rec.Deadline, tt.want)
		}
	}
}

func TestCleanNormalizesAmount(t *testing.T) {
	c := NewCleaner(testVocab())

	tests := []struct {
		in   string
		want string
	}{
		{"2,5 miljoen euro", "2,5 million €"},
		{"tot 50.000 euro", "tot 50.000 €"},
		{"500.000 EUR", "500.000 €"},
		{"2 million euros", "2 million €"},
		{"€500.000", "€500.000"},
	}
	for _, tt := range tests {
		rec := c.Clean(models.Record{Amount: tt.in})
		if rec.Amount != tt.want {
			t.Errorf("Clean amount %q = %q, want %q", tt.in, rec.Amount, tt.want)
		}
	}
}

func TestCleanNormalizesStatus(t *testing.T) {
	c := NewCleaner(testVocab())

	tests := []struct {
		in   models.Status
		want models.Status
	}{
		{"Open", models.StatusOpen},
		{"open", models.StatusOpen},
		{"CLOSED", models.StatusClosed},
		{"gesloten", models.StatusClosed},
		{"Open until March", models.StatusOpen},
		{"Ronde verlopen", models.StatusClosed},
		{"Gesloten, volgende ronde open in 2026", models.StatusClosed},
		{"weird", models.StatusUnknown},
		{"", models.StatusUnknown},
	}
	for _, tt := range tests {
		rec := c.Clean(models.Record{Status: tt.in})
		if rec.Status != tt.want {
			t.Errorf("Clean status %q = %q, want %q", tt.in, rec.Status, tt.want)
		}
	}
}

func TestCleanTruncatesDescription(t *testing.T) {
	c := NewCleaner(testVocab())

	long := strings.Repeat("a", 1500)
	rec := c.Clean(models.Record{Description: long})

	if len(rec.Description) != maxFieldLength {
		t.Errorf("len = %d, want %d", len(rec.Description), maxFieldLength)
	}
	if !strings.HasSuffix(rec.Description, "...") {
		t.Errorf("truncated description should end with ellipsis: %q", rec.Description[990:])
	}

	short := c.Clean(models.Record{Description: "kort"})
	if short.Description != "kort" {
		t.Errorf("short description altered: %q", short.Description)
	}
}
