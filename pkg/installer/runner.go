// Package installer wires resolution, download, and extraction into one run.
//
// Only resolution can fail a run: without a catalog and a decision there is
// nothing to install. Everything after that is best effort. A package no
// mirror delivers, or an archive that does not unpack, becomes a warning in
// the [Result] and the run still completes.
package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smfinstall/pkg/archive"
	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/mirror"
	"github.com/matzehuels/smfinstall/pkg/resolver"
)

// Resolver produces the install plan.
type Resolver interface {
	Resolve(ctx context.Context) (*resolver.Plan, error)
}

// Fetcher downloads package archives.
type Fetcher interface {
	FetchAll(ctx context.Context, files []string, mirrors []catalog.Mirror) mirror.Report
}

// Extractor unpacks package archives.
type Extractor interface {
	ExtractAll(ctx context.Context, files []string) archive.Report
}

// Runner executes resolve → fetch → extract.
type Runner struct {
	Resolver  Resolver
	Fetcher   Fetcher
	Extractor Extractor
	Logger    *log.Logger
}

// NewRunner creates a Runner. If logger is nil, log.Default() is used.
func NewRunner(r Resolver, f Fetcher, e Extractor, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Resolver: r, Fetcher: f, Extractor: e, Logger: logger}
}

// Stats records how long each stage took.
type Stats struct {
	ResolveTime time.Duration
	FetchTime   time.Duration
	ExtractTime time.Duration
}

// Result is the outcome of a completed run.
type Result struct {
	Decision   resolver.Decision
	Packages   []string
	Downloads  mirror.Report
	Extraction archive.Report
	Stats      Stats
	Duration   time.Duration
}

// Warnings lists per-file problems in package order: downloads first, then
// archives that could not be unpacked. Archives missing only because their
// download already failed are not repeated.
func (r *Result) Warnings() []string {
	var warnings []string
	failed := make(map[string]bool)
	for _, res := range r.Downloads.Failed() {
		failed[res.File] = true
		warnings = append(warnings, fmt.Sprintf("%s: %v", res.File, res.Err))
	}
	for _, res := range r.Extraction.Problems() {
		if res.Status == archive.StatusMissing && failed[res.File] {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("%s: %s: %v", res.File, res.Status, res.Err))
	}
	return warnings
}

// Run resolves the decision, then downloads and extracts the packages.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	// Stage 1: Resolve
	resolveStart := time.Now()
	plan, err := r.Resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	result.Decision = plan.Decision
	result.Packages = plan.Decision.Packages()
	result.Stats.ResolveTime = time.Since(resolveStart)

	r.Logger.Info("resolved packages",
		"version", plan.Decision.Version.Label,
		"upgrade", plan.Decision.Upgrade,
		"packages", len(result.Packages))

	// Stage 2: Fetch
	fetchStart := time.Now()
	result.Downloads = r.Fetcher.FetchAll(ctx, result.Packages, plan.Catalog.Mirrors)
	result.Stats.FetchTime = time.Since(fetchStart)

	r.Logger.Info("fetched packages",
		"downloaded", len(result.Downloads.OK()),
		"present", len(result.Downloads.Skipped()),
		"failed", len(result.Downloads.Failed()),
		"duration", result.Stats.FetchTime)

	// Stage 3: Extract
	extractStart := time.Now()
	result.Extraction = r.Extractor.ExtractAll(ctx, result.Packages)
	result.Stats.ExtractTime = time.Since(extractStart)

	r.Logger.Info("extracted packages",
		"extracted", len(result.Extraction.OK()),
		"duration", result.Stats.ExtractTime)

	result.Duration = time.Since(start)
	return result, nil
}
