// Package mirror downloads package archives from a list of interchangeable
// mirrors.
//
// For each file the mirrors are tried one after another until one delivers
// the complete archive. The mirror order is shuffled once per batch so load
// spreads across mirrors between runs while every file in a run sees the same
// order. A file that already exists in the target directory is never fetched
// again, which makes an interrupted run cheap to resume.
package mirror

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/errors"
	"github.com/matzehuels/smfinstall/pkg/observability"
)

// partSuffix marks a download in progress.
const partSuffix = ".part"

// ErrAllMirrorsFailed is wrapped into the error of a file no mirror could
// deliver.
var ErrAllMirrorsFailed = errors.New(errors.ErrCodeMirrorsExhausted, "all mirrors failed")

// Status is the outcome for one file.
type Status int

const (
	StatusOK Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result describes what happened to one file.
type Result struct {
	File     string
	Status   Status
	Mirror   string // Name of the mirror that delivered the file
	Attempts int    // Mirrors tried
	Bytes    int64
	Err      error
}

// Report holds one Result per requested file, in request order.
type Report struct {
	Results []Result
}

// Failed returns the files no mirror could deliver.
func (r Report) Failed() []Result {
	return r.filter(StatusFailed)
}

// OK returns the files downloaded in this run.
func (r Report) OK() []Result {
	return r.filter(StatusOK)
}

// Skipped returns the files that were already present.
func (r Report) Skipped() []Result {
	return r.filter(StatusSkipped)
}

func (r Report) filter(s Status) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == s {
			out = append(out, res)
		}
	}
	return out
}

// Fetcher downloads files into Dir.
type Fetcher struct {
	Dir      string
	Getter   Getter
	Logger   *log.Logger
	Out      io.Writer  // Progress lines; nil discards them
	Rand     *rand.Rand // Mirror shuffle; nil uses the global source
	Parallel int        // Files downloaded at once; values below 1 mean 1

	outMu sync.Mutex
}

// NewFetcher creates a Fetcher writing into dir.
func NewFetcher(dir string, getter Getter, out io.Writer, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{Dir: dir, Getter: getter, Logger: logger, Out: out, Parallel: 1}
}

// FetchAll downloads every file that is not already present. Failures are
// reported per file and never stop the batch.
func (f *Fetcher) FetchAll(ctx context.Context, files []string, mirrors []catalog.Mirror) Report {
	order := slices.Clone(mirrors)
	if len(order) > 1 {
		f.shuffle(order)
	}

	results := make([]Result, len(files))
	var g errgroup.Group
	g.SetLimit(max(f.Parallel, 1))
	for i, file := range files {
		g.Go(func() error {
			results[i] = f.fetch(ctx, file, order)
			return nil
		})
	}
	_ = g.Wait()

	return Report{Results: results}
}

func (f *Fetcher) shuffle(m []catalog.Mirror) {
	swap := func(i, j int) { m[i], m[j] = m[j], m[i] }
	if f.Rand != nil {
		f.Rand.Shuffle(len(m), swap)
		return
	}
	rand.Shuffle(len(m), swap)
}

func (f *Fetcher) fetch(ctx context.Context, file string, mirrors []catalog.Mirror) Result {
	res := Result{File: file}

	if err := errors.ValidatePackageFile(file); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	dest := filepath.Join(f.Dir, file)
	if _, err := os.Stat(dest); err == nil {
		f.Logger.Debug("already downloaded", "file", file)
		res.Status = StatusSkipped
		return res
	}

	f.printf("Attempting to download %s\n", file)

	lastErr := fmt.Errorf("no mirrors available")
	for _, m := range mirrors {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		res.Attempts++
		start := time.Now()
		n, err := f.download(ctx, m.URL+file, dest)
		observability.Install().OnMirrorAttempt(ctx, file, m.Name, time.Since(start), err)

		if err == nil {
			f.printf("%s: Success\n", f.tryingLabel(m.Name, file))
			f.Logger.Info("downloaded", "file", file, "mirror", m.Name, "size", humanize.Bytes(uint64(n)))
			res.Status = StatusOK
			res.Mirror = m.Name
			res.Bytes = n
			return res
		}

		f.printf("%s: Failed\n", f.tryingLabel(m.Name, file))
		f.Logger.Debug("mirror failed", "file", file, "mirror", m.Name, "err", err)
		lastErr = err
	}

	f.printf("Unable to download the package %s\n", file)
	res.Status = StatusFailed
	res.Err = fmt.Errorf("%w for %s: %w", ErrAllMirrorsFailed, file, lastErr)
	return res
}

// download streams url into dest via a temporary part file so that dest
// only ever appears complete.
func (f *Fetcher) download(ctx context.Context, url, dest string) (int64, error) {
	a, err := f.Getter.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer a.Body.Close()

	part := dest + partSuffix
	out, err := os.Create(part)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, a.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && a.Size >= 0 && n != a.Size {
		err = fmt.Errorf("short body: got %d of %d bytes", n, a.Size)
	}
	if err == nil {
		err = os.Rename(part, dest)
	}
	if err != nil {
		os.Remove(part)
		return 0, err
	}
	return n, nil
}

// tryingLabel names the mirror, plus the file when several downloads may
// interleave on Out.
func (f *Fetcher) tryingLabel(mirror, file string) string {
	if f.Parallel > 1 {
		return fmt.Sprintf("Trying mirror %s for %s", mirror, file)
	}
	return "Trying mirror " + mirror
}

func (f *Fetcher) printf(format string, args ...any) {
	if f.Out == nil {
		return
	}
	f.outMu.Lock()
	defer f.outMu.Unlock()
	fmt.Fprintf(f.Out, format, args...)
}
