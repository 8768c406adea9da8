package process

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/david/subsidy-finder/internal/config"
	"github.com/david/subsidy-finder/internal/models"
)

const maxFieldLength = 1000

// disallowedChars keeps letters (any script, so Dutch accents survive),
// digits and the punctuation that money and date expressions use.
var disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.,;:()\[\]€$%&/]`)

var dutchMonths = map[string]string{
	"januari": "january", "februari": "february", "maart": "march",
	"april": "april", "mei": "may", "juni": "june", "juli": "july",
	"augustus": "august", "september": "september", "oktober": "october",
	"november": "november", "december": "december",
}

var (
	monthPattern   = regexp.MustCompile(`(?i)januari|februari|maart|mei|juni|juli|augustus|oktober`)
	euroWord       = regexp.MustCompile(`(?i)\beuros?\b|\bEUR\b`)
	millionWord    = regexp.MustCompile(`(?i)\bmiljoen\b`)
	collapseSpaces = regexp.MustCompile(`\s+`)
)

// Cleaner normalizes raw record text into the canonical form the scorer and
// reports consume. It never drops a record; empty fields stay empty.
type Cleaner struct {
	strip       *bluemonday.Policy
	openTerms   []string
	closedTerms []string
}

// NewCleaner builds a cleaner with a strict strip-everything HTML policy. The
// vocabulary supplies the open/closed term sets used to canonicalize
// free-text statuses.
func NewCleaner(vocab config.Vocabulary) *Cleaner {
	return &Cleaner{
		strip:       bluemonday.StrictPolicy(),
		openTerms:   vocab.OpenTerms,
		closedTerms: vocab.ClosedTerms,
	}
}

// Clean returns a copy of rec with every text field normalized: HTML
// stripped, entities decoded, whitespace collapsed, stray characters removed,
// date and money expressions put into canonical English form, and the status
// reduced to one of the three canonical values.
func (c *Cleaner) Clean(rec models.Record) models.Record {
	rec.Name = c.text(rec.Name)
	rec.Description = truncate(c.text(rec.Description), maxFieldLength)
	rec.Eligibility = c.text(rec.Eligibility)
	rec.ApplicationProcess = c.text(rec.ApplicationProcess)
	rec.ResearchAreas = c.text(rec.ResearchAreas)
	rec.ContactInfo = c.text(rec.ContactInfo)
	rec.RawText = c.text(rec.RawText)

	rec.Deadline = normalizeDate(c.text(rec.Deadline))
	rec.Amount = normalizeAmount(c.text(rec.Amount))
	rec.Status = c.normalizeStatus(rec.Status)
	return rec
}

func (c *Cleaner) text(s string) string {
	if s == "" {
		return ""
	}
	s = c.strip.Sanitize(s)
	s = html.UnescapeString(s)
	s = disallowedChars.ReplaceAllString(s, " ")
	s = collapseSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// normalizeDate translates Dutch month names so downstream parsing only has
// to know English.
func normalizeDate(s string) string {
	return monthPattern.ReplaceAllStringFunc(s, func(m string) string {
		if en, ok := dutchMonths[strings.ToLower(m)]; ok {
			return en
		}
		return m
	})
}

// normalizeAmount standardizes the money vocabulary: "euro" becomes the €
// symbol and "miljoen" its English form.
func normalizeAmount(s string) string {
	s = millionWord.ReplaceAllString(s, "million")
	s = euroWord.ReplaceAllString(s, "€")
	return strings.TrimSpace(s)
}

// normalizeStatus reduces a free-text status to one of the three canonical
// values using the same open/closed term sets as extraction, closed winning
// when both match.
func (c *Cleaner) normalizeStatus(s models.Status) models.Status {
	text := strings.ToLower(string(s))
	switch {
	case containsAny(text, c.closedTerms):
		return models.StatusClosed
	case containsAny(text, c.openTerms):
		return models.StatusOpen
	default:
		return models.StatusUnknown
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
