package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/david/subsidy-finder/internal/config"
	"github.com/david/subsidy-finder/internal/ingest"
	"github.com/david/subsidy-finder/internal/process"
	"github.com/david/subsidy-finder/internal/report"
)

func main() {
	var (
		timeout     = flag.Duration("timeout", 10*time.Minute, "overall run deadline")
		minScore    = flag.Float64("min-score", 0, "override the relevance threshold (0 keeps the configured value)")
		output      = flag.String("output", "", "write results as CSV to this file")
		fetcherKind = flag.String("fetcher", "http", "fetch engine: http or colly")
		logFile     = flag.String("log", "", "also write logs to this file")
	)
	flag.Parse()

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	if err := run(*timeout, *minScore, *output, *fetcherKind); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func run(timeout time.Duration, minScore float64, output, fetcherKind string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if minScore > 0 {
		cfg.Scoring.MinScore = minScore
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fetcher ingest.Fetcher
	switch fetcherKind {
	case "http":
		client := ingest.NewClient(cfg.Fetch)
		defer client.Close()
		fetcher = client
	case "colly":
		fetcher = ingest.NewCollyFetcher(cfg.Fetch)
	default:
		return fmt.Errorf("unknown fetcher %q", fetcherKind)
	}

	extractor := ingest.NewExtractor(cfg.Vocabulary)
	var adapters []*ingest.Adapter
	for _, src := range cfg.ActiveSources() {
		adapters = append(adapters, ingest.NewAdapter(src, cfg.Known[src.ID], extractor))
	}
	if len(adapters) == 0 {
		return fmt.Errorf("no active sources")
	}
	log.Printf("starting run over %d sources", len(adapters))

	started := time.Now()
	orch := ingest.NewOrchestrator(adapters, fetcher, cfg.Fetch.MaxRetries,
		time.Duration(cfg.Fetch.DelaySeconds*float64(time.Second)))
	raw := orch.RunAll(ctx)

	pipeline := process.NewPipeline(cfg.Scoring, cfg.Vocabulary)
	results := pipeline.Process(raw, time.Now().UTC())

	report.WriteTable(os.Stdout, results)
	report.WriteSummary(os.Stdout, report.Summarize(raw, results, started))

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		report.WriteCSV(f, results)
		log.Printf("wrote %d records to %s", len(results), output)
	}
	return nil
}
