package ingest

import (
	"regexp"
	"strings"

	"github.com/david/subsidy-finder/internal/config"
	"github.com/david/subsidy-finder/internal/models"
)

// amountPatterns are tried in priority order; the first match wins. Symbol
// prefixed amounts beat "tot/maximaal" phrasing so the concrete figure is
// preferred over the surrounding qualifier.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)€\s*[\d,.]*\d (?:miljoen|million)`),
	regexp.MustCompile(`(?i)€\s*[\d,.]*\d`),
	regexp.MustCompile(`(?i)[\d,.]*\d (?:miljoen|million) euro`),
	regexp.MustCompile(`(?i)tot (?:€\s*)?[\d,.]*\d(?: (?:miljoen|million))?`),
	regexp.MustCompile(`(?i)maximaal (?:€\s*)?[\d,.]*\d(?: (?:miljoen|million))?`),
}

// datePatterns cover ISO, Dutch numeric and long-form month names in both
// locales. Month names stay in their source locale here; the cleaner
// canonicalizes them.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}`),
	regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2} (?:januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december) \d{4}`),
	regexp.MustCompile(`(?i)(?:january|february|march|april|may|june|july|august|september|october|november|december) \d{1,2},? \d{4}`),
	regexp.MustCompile(`(?i)\d{1,2} (?:january|february|march|april|may|june|july|august|september|october|november|december) \d{4}`),
}

// Extractor holds the vocabulary used by the pattern heuristics. All methods
// are pure and total: any input, including empty or garbage text, yields a
// defined (possibly empty) result.
type Extractor struct {
	vocab config.Vocabulary
}

// NewExtractor creates an Extractor over the given vocabulary.
func NewExtractor(vocab config.Vocabulary) *Extractor {
	return &Extractor{vocab: vocab}
}

// Amount returns the first funding-amount expression found in text, or "".
func (e *Extractor) Amount(text string) string {
	for _, p := range amountPatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// Deadline returns the first date expression found in text, or "".
func (e *Extractor) Deadline(text string) string {
	for _, p := range datePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// Eligibility returns up to three sentences mentioning an eligibility term.
func (e *Extractor) Eligibility(text string) string {
	return sentencesMatching(text, e.vocab.EligibilityTerms, 3)
}

// ApplicationProcess returns up to two sentences mentioning a process term.
func (e *Extractor) ApplicationProcess(text string) string {
	return sentencesMatching(text, e.vocab.ProcessTerms, 2)
}

// ResearchAreas scans the topical vocabulary and returns the deduplicated,
// order-preserving matches, title-cased and capped at six.
func (e *Extractor) ResearchAreas(text string) string {
	textLower := strings.ToLower(text)
	seen := make(map[string]struct{})
	var areas []string
	for _, term := range e.vocab.AreaTerms {
		termLower := strings.ToLower(term)
		if !strings.Contains(textLower, termLower) {
			continue
		}
		if _, ok := seen[termLower]; ok {
			continue
		}
		seen[termLower] = struct{}{}
		areas = append(areas, titleCase(term))
		if len(areas) >= 6 {
			break
		}
	}
	return strings.Join(areas, ", ")
}

// Status classifies a call as Closed, Open or Unknown. The closed vocabulary
// is checked first and wins when both match; an extracted deadline counts as
// evidence the call is open.
func (e *Extractor) Status(deadline, text string) models.Status {
	textLower := strings.ToLower(text)
	if containsAny(textLower, e.vocab.ClosedTerms) {
		return models.StatusClosed
	}
	if containsAny(textLower, e.vocab.OpenTerms) || deadline != "" {
		return models.StatusOpen
	}
	return models.StatusUnknown
}

// sentencesMatching splits text on '.' and joins the first max sentences
// containing any of the given terms.
func sentencesMatching(text string, terms []string, max int) string {
	var matched []string
	for _, sentence := range strings.Split(text, ".") {
		sentenceLower := strings.ToLower(sentence)
		if containsAny(sentenceLower, terms) {
			matched = append(matched, strings.TrimSpace(sentence))
			if len(matched) >= max {
				break
			}
		}
	}
	return strings.Join(matched, " ")
}

func containsAny(textLower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(textLower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
