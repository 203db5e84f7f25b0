// Package archive unpacks downloaded package archives into the target
// directory.
//
// Each archive is verified in full before anything is written: every entry
// must decompress with a matching checksum and stay inside the target
// directory. An archive that fails verification is reported corrupt and
// leaves the directory untouched. Archives are independent; one failing
// never stops the others.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smfinstall/pkg/errors"
	"github.com/matzehuels/smfinstall/pkg/observability"
)

// ErrCorrupt is wrapped into the error of an archive that failed
// verification.
var ErrCorrupt = errors.New(errors.ErrCodeCorruptArchive, "archive is corrupt")

// Status is the outcome for one archive.
type Status int

const (
	StatusOK       Status = iota
	StatusMissing         // not present, typically because its download failed
	StatusCorrupt         // could not be opened or failed verification
	StatusFailed          // verified, but writing the contents failed
	StatusCanceled        // not attempted because the run was canceled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusCorrupt:
		return "corrupt"
	case StatusCanceled:
		return "canceled"
	default:
		return "failed"
	}
}

// Result describes what happened to one archive.
type Result struct {
	File    string
	Status  Status
	Entries int // Entries written
	Err     error
}

// Report holds one Result per archive, in request order.
type Report struct {
	Results []Result
}

// OK returns the archives that were extracted.
func (r Report) OK() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusOK {
			out = append(out, res)
		}
	}
	return out
}

// Problems returns every archive that was not extracted.
func (r Report) Problems() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status != StatusOK {
			out = append(out, res)
		}
	}
	return out
}

// Extractor unpacks archives found in Dir into Dir.
type Extractor struct {
	Dir    string
	Logger *log.Logger
	Out    io.Writer // Progress lines; nil discards them
}

// NewExtractor creates an Extractor for dir.
func NewExtractor(dir string, out io.Writer, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{Dir: dir, Logger: logger, Out: out}
}

// ExtractAll unpacks files in order, overwriting existing files.
func (e *Extractor) ExtractAll(ctx context.Context, files []string) Report {
	results := make([]Result, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{File: file, Status: StatusCanceled, Err: err})
			continue
		}
		res := e.extract(file)
		observability.Install().OnExtract(ctx, file, res.Entries, res.Err)
		results = append(results, res)
	}
	return Report{Results: results}
}

func (e *Extractor) extract(file string) Result {
	res := Result{File: file}
	path := filepath.Join(e.Dir, file)

	if _, err := os.Stat(path); err != nil {
		e.Logger.Debug("archive not present", "file", file)
		res.Status = StatusMissing
		res.Err = err
		return res
	}

	e.printf("Extracting contents from %s\n", file)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return e.corrupt(res, err)
	}
	defer zr.Close()

	if err := verify(zr.File); err != nil {
		return e.corrupt(res, err)
	}

	for _, f := range zr.File {
		if err := e.write(f); err != nil {
			e.printf("\tAn error occured while extracting: %v\n", err)
			res.Status = StatusFailed
			res.Err = fmt.Errorf("extracting %s: %w", f.Name, err)
			return res
		}
		res.Entries++
	}

	e.Logger.Debug("extracted", "file", file, "entries", res.Entries)
	res.Status = StatusOK
	return res
}

func (e *Extractor) corrupt(res Result, cause error) Result {
	e.printf("\tAn error occured while extracting: %v\n", cause)
	res.Status = StatusCorrupt
	res.Err = fmt.Errorf("%w: %s: %w", ErrCorrupt, res.File, cause)
	return res
}

// verify reads every entry to the end so the zip reader checks its CRC,
// and rejects entries that would land outside the target directory.
func verify(files []*zip.File) error {
	for _, f := range files {
		if err := errors.ValidatePath(f.Name); err != nil {
			return err
		}
		if f.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("symbolic link %s not allowed", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		_, err = io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func (e *Extractor) write(f *zip.File) error {
	target := filepath.Join(e.Dir, filepath.FromSlash(f.Name))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(target, perm)
}

func (e *Extractor) printf(format string, args ...any) {
	if e.Out != nil {
		fmt.Fprintf(e.Out, format, args...)
	}
}
