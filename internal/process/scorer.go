package process

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/david/subsidy-finder/internal/config"
	"github.com/david/subsidy-finder/internal/models"
)

var monthNumbers = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var (
	longDatePattern = regexp.MustCompile(`(?i)(\d{1,2})\s+(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})`)
	usDatePattern   = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2}),?\s+(\d{4})`)
	isoDatePattern  = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	dmyDatePattern  = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`)
)

// Scorer computes keyword-weighted relevance for cleaned records. Scoring is
// deterministic: the reference time is an explicit argument, so the same
// record and instant always produce the same score.
type Scorer struct {
	cfg   config.Scoring
	vocab config.Vocabulary
}

// NewScorer builds a scorer over the given weights and vocabulary.
func NewScorer(cfg config.Scoring, vocab config.Vocabulary) *Scorer {
	return &Scorer{cfg: cfg, vocab: vocab}
}

// Score returns the relevance of rec at the reference instant now, plus the
// distinct keywords that matched (capped at the configured maximum). Each
// section contributes its weight once per distinct vocabulary term present.
func (s *Scorer) Score(rec models.Record, now time.Time) (float64, []string) {
	sections := []struct {
		text   string
		weight float64
	}{
		{rec.Name, s.cfg.Weights.Title},
		{rec.Description, s.cfg.Weights.Description},
		{rec.ResearchAreas, s.cfg.Weights.ResearchAreas},
		{rec.Eligibility, s.cfg.Weights.Eligibility},
	}

	score := 0.0
	for _, sec := range sections {
		if sec.text == "" {
			continue
		}
		textLower := strings.ToLower(sec.text)
		for _, kw := range s.vocab.ResearchKeywords {
			if strings.Contains(textLower, strings.ToLower(kw)) {
				score += sec.weight
			}
		}
	}

	// The matched list is independent of section weighting: it scans the
	// combined text including RawText, in vocabulary order, so a term that
	// appears only outside the weighted sections is still reported.
	combined := strings.ToLower(strings.Join([]string{
		rec.RawText, rec.Name, rec.Description, rec.ResearchAreas, rec.Eligibility,
	}, " "))
	var matched []string
	for _, kw := range s.vocab.ResearchKeywords {
		if !strings.Contains(combined, strings.ToLower(kw)) {
			continue
		}
		matched = append(matched, kw)
		if len(matched) >= s.cfg.MaxKeywords {
			break
		}
	}

	if deadline, ok := parseDeadline(rec.Deadline); ok {
		// Day granularity: a deadline later today still counts.
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		window := today.AddDate(0, 0, s.cfg.DeadlineWindowDays)
		if !deadline.Before(today) && !deadline.After(window) {
			score += s.cfg.Weights.DeadlineBonus
		}
	}

	if containsAny(combined, s.vocab.HealthTerms) {
		score += s.cfg.Weights.HealthBonus
	}
	if containsAny(combined, s.vocab.AITerms) {
		score += s.cfg.Weights.AIBonus
	}

	return math.Round(score*100) / 100, matched
}

// parseDeadline extracts the first recognizable date from a free-text
// deadline. Month names are matched case-insensitively, which the standard
// time layouts will not do.
func parseDeadline(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if m := longDatePattern.FindStringSubmatch(s); m != nil {
		return makeDate(m[3], strings.ToLower(m[2]), m[1])
	}
	if m := usDatePattern.FindStringSubmatch(s); m != nil {
		return makeDate(m[3], strings.ToLower(m[1]), m[2])
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return makeNumericDate(m[1], m[2], m[3])
	}
	if m := dmyDatePattern.FindStringSubmatch(s); m != nil {
		return makeNumericDate(m[3], m[2], m[1])
	}
	return time.Time{}, false
}

func makeDate(year, monthName, day string) (time.Time, bool) {
	month, ok := monthNumbers[monthName]
	if !ok {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(year)
	d, _ := strconv.Atoi(day)
	if d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, month, d, 0, 0, 0, 0, time.UTC), true
}

func makeNumericDate(year, month, day string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
}

func containsAny(textLower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(textLower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
