package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smfinstall/internal/config"
	"github.com/matzehuels/smfinstall/pkg/archive"
	"github.com/matzehuels/smfinstall/pkg/cache"
	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/errors"
	"github.com/matzehuels/smfinstall/pkg/httputil"
	"github.com/matzehuels/smfinstall/pkg/installer"
	"github.com/matzehuels/smfinstall/pkg/mirror"
	"github.com/matzehuels/smfinstall/pkg/observability"
	"github.com/matzehuels/smfinstall/pkg/prompt"
	"github.com/matzehuels/smfinstall/pkg/resolver"
)

// writeProbe is created and removed in the target directory at startup.
const writeProbe = "testwrite.txt"

// installOptions holds flags for the install run.
type installOptions struct {
	restart     bool
	noCache     bool
	parallel    int
	parallelSet bool
}

// runInstall performs one installation run in the target directory.
func (c *CLI) runInstall(ctx context.Context, g globalOptions, opts installOptions) error {
	logger := loggerFromContext(ctx)

	dir, err := targetDir(g.dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	cfg, err := loadConfig(g.configPath, dir)
	if err != nil {
		return err
	}
	if opts.parallelSet {
		cfg.Parallel = opts.parallel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := checkWritable(dir); err != nil {
		return err
	}

	printBanner()

	if opts.restart {
		n, err := clearAnswers(ctx, dir)
		if err != nil {
			return errors.Wrap(errors.ErrCodeCache, err, "could not clear remembered answers")
		}
		logger.Info("cleared remembered answers", "entries", n)
	}
	decisions, err := newCache(dir, cfg, opts.noCache)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "could not open the answer cache")
	}

	reader, closeReader := prompt.NewStdio()
	defer closeReader()

	runner := c.newRunner(logger, dir, cfg, decisions, prompt.New(reader, c.Out))

	prog := newProgress(logger)
	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	var events observability.TallySnapshot
	if c.tally != nil {
		events = c.tally.Snapshot()
	}
	printResult(result, events)
	prog.done("Installation finished")
	return nil
}

// newRunner assembles the installer from configuration.
func (c *CLI) newRunner(logger *log.Logger, dir string, cfg *config.Config, decisions cache.Cache, p *prompt.Prompter) *installer.Runner {
	client := httputil.NewClient(cfg.HTTPTimeout)

	src := catalog.NewSource(cfg.MetadataURL, client, logger)
	src.UserAgent = cfg.UserAgent

	res := resolver.New(dir, decisions, &spinnerSource{inner: src}, p, logger)

	getter := mirror.NewHTTPGetter(
		mirror.WithHTTPClient(client),
		mirror.WithUserAgent(cfg.UserAgent),
		mirror.WithRetries(cfg.Mirror.Retries),
		mirror.WithBreakerThreshold(cfg.Mirror.BreakerThreshold),
	)
	fetcher := mirror.NewFetcher(dir, getter, c.Out, logger)
	fetcher.Parallel = cfg.Parallel

	return installer.NewRunner(res, fetcher, archive.NewExtractor(dir, c.Out, logger), logger)
}

// checkWritable creates and removes a probe file in dir.
func checkWritable(dir string) error {
	probe := filepath.Join(dir, writeProbe)
	if err := os.WriteFile(probe, []byte("Just testing to make sure we can write files to the current location"), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodePermission, err, "could not write to %s", dir)
	}
	if err := os.Remove(probe); err != nil {
		return errors.Wrap(errors.ErrCodePermission, err, "could not remove the write test file")
	}
	return nil
}

// spinnerSource shows a spinner while the mirror information downloads.
type spinnerSource struct {
	inner resolver.CatalogLoader
}

func (s *spinnerSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	sp := newSpinnerWithContext(ctx, "Loading mirror information...")
	sp.Start()

	cat, err := s.inner.Load(ctx)
	if err != nil {
		sp.StopWithError("Could not load the mirror information")
		return nil, err
	}
	sp.StopWithSuccess(fmt.Sprintf("Found %d versions on %d mirrors", len(cat.Versions), len(cat.Mirrors)))
	return cat, nil
}
