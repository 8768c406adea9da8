package config

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml known.yaml keywords.yaml
var configFS embed.FS

// FetchSettings defines HTTP fetching configuration shared by all sources.
type FetchSettings struct {
	DelaySeconds   float64 `yaml:"delay_seconds,omitempty"`   // inter-request courtesy delay, default: 2
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // default: 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // per-source adapter retries, default: 3
	UserAgent      string  `yaml:"user_agent,omitempty"`
}

// DetailConfig controls the optional single extra fetch per listing entry.
type DetailConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Description []string `yaml:"description,omitempty"` // ordered selectors for the detail body
}

// Source defines a single funding body: its listing pages and the ordered
// structural selectors used to locate entries on them.
type Source struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Organization string       `yaml:"organization"`
	BaseURL      string       `yaml:"base_url"`
	ListingURLs  []string     `yaml:"listing_urls"`
	Selectors    []string     `yaml:"selectors"`               // tried in priority order, first match wins
	LinkKeywords []string     `yaml:"link_keywords,omitempty"` // anchor-scan fallback when no selector matches
	MaxEntries   int          `yaml:"max_entries,omitempty"`
	Detail       DetailConfig `yaml:"detail,omitempty"`
	Active       bool         `yaml:"active"`
}

// Registry holds the configuration for all data sources.
type Registry struct {
	Fetch   FetchSettings `yaml:"fetch"`
	Sources []Source      `yaml:"sources"`
}

// KnownOpportunity is one hand-curated fallback entry for a source. These are
// merged into the adapter output identically shaped to live-scraped records.
type KnownOpportunity struct {
	Name               string `yaml:"name"`
	Amount             string `yaml:"amount"`
	Deadline           string `yaml:"deadline"`
	Status             string `yaml:"status"`
	Eligibility        string `yaml:"eligibility"`
	ResearchAreas      string `yaml:"research_areas"`
	Description        string `yaml:"description"`
	ApplicationProcess string `yaml:"application_process"`
	ContactInfo        string `yaml:"contact_info"`
	URL                string `yaml:"url"`
	RawText            string `yaml:"raw_text"`
}

// Vocabulary is the swappable bilingual keyword data used by the field
// extractor, cleaner and scorer. It is injected at construction, never
// referenced as ambient global state.
type Vocabulary struct {
	ResearchKeywords []string `yaml:"research_keywords"`
	HealthTerms      []string `yaml:"health_terms"`
	AITerms          []string `yaml:"ai_terms"`
	OpenTerms        []string `yaml:"open_terms"`
	ClosedTerms      []string `yaml:"closed_terms"`
	EligibilityTerms []string `yaml:"eligibility_terms"`
	ProcessTerms     []string `yaml:"process_terms"`
	AreaTerms        []string `yaml:"area_terms"`
}

// Weights are the per-section relevance weights.
type Weights struct {
	Title         float64 `yaml:"title"`
	Description   float64 `yaml:"description"`
	ResearchAreas float64 `yaml:"research_areas"`
	Eligibility   float64 `yaml:"eligibility"`
	DeadlineBonus float64 `yaml:"deadline_bonus"`
	HealthBonus   float64 `yaml:"health_bonus"`
	AIBonus       float64 `yaml:"ai_bonus"`
}

// Scoring bundles the weights with the filter threshold and limits.
type Scoring struct {
	Weights            Weights `yaml:"weights"`
	MinScore           float64 `yaml:"min_score"`
	DeadlineWindowDays int     `yaml:"deadline_window_days"`
	MaxKeywords        int     `yaml:"max_keywords"`
}

type keywordsFile struct {
	Vocabulary Vocabulary `yaml:"vocabulary"`
	Scoring    Scoring    `yaml:"scoring"`
}

type knownFile struct {
	Known map[string][]KnownOpportunity `yaml:"known"`
}

// Config is the full static configuration of a run.
type Config struct {
	Fetch      FetchSettings
	Sources    []Source
	Known      map[string][]KnownOpportunity
	Vocabulary Vocabulary
	Scoring    Scoring
}

// Load reads the embedded configuration files. Environment variables inside
// the YAML (e.g. ${PROXY_URL}) are expanded before parsing.
func Load() (*Config, error) {
	var reg Registry
	if err := readYAML("sources.yaml", &reg); err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	var known knownFile
	if err := readYAML("known.yaml", &known); err != nil {
		return nil, fmt.Errorf("failed to load known opportunities: %w", err)
	}

	var kw keywordsFile
	if err := readYAML("keywords.yaml", &kw); err != nil {
		return nil, fmt.Errorf("failed to load keywords: %w", err)
	}

	cfg := &Config{
		Fetch:      reg.Fetch,
		Sources:    reg.Sources,
		Known:      known.Known,
		Vocabulary: kw.Vocabulary,
		Scoring:    kw.Scoring,
	}
	applyDefaults(cfg)

	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return cfg, nil
}

func readYAML(name string, out interface{}) error {
	data, err := configFS.ReadFile(name)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	return yaml.Unmarshal([]byte(expanded), out)
}

func applyDefaults(cfg *Config) {
	if cfg.Fetch.DelaySeconds == 0 {
		cfg.Fetch.DelaySeconds = 2
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Fetch.MaxRetries == 0 {
		cfg.Fetch.MaxRetries = 3
	}
	if cfg.Scoring.MinScore == 0 {
		cfg.Scoring.MinScore = 3.0
	}
	if cfg.Scoring.DeadlineWindowDays == 0 {
		cfg.Scoring.DeadlineWindowDays = 90
	}
	if cfg.Scoring.MaxKeywords == 0 {
		cfg.Scoring.MaxKeywords = 10
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].MaxEntries == 0 {
			cfg.Sources[i].MaxEntries = 20
		}
	}
}

// ActiveSources returns the sources enabled for this run, in registry order.
func (c *Config) ActiveSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}
