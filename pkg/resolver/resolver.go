// Package resolver runs the interactive decisions that turn a catalog into
// a list of package archives: install or upgrade, which version, and which
// language packs.
//
// Every step is memoized in the decision cache. A step first looks up its
// key; on a miss it asks the operator, stores the answer, and only then
// returns it. A run that is interrupted therefore resumes at the first
// unanswered question, and a run started after the cache was cleared asks
// everything again.
package resolver

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smfinstall/pkg/cache"
	"github.com/matzehuels/smfinstall/pkg/catalog"
	"github.com/matzehuels/smfinstall/pkg/errors"
	"github.com/matzehuels/smfinstall/pkg/observability"
	"github.com/matzehuels/smfinstall/pkg/prompt"
)

// Cache keys, one per resolution step.
const (
	KeyCatalog   = "catalog"
	KeyUpgrade   = "upgrade"
	KeyVersion   = "version"
	KeyLanguages = "languages"
)

// MarkerFile signals an existing installation in the target directory.
const MarkerFile = "Settings.php"

// PackageExt is the extension of every package archive.
const PackageExt = ".zip"

// ErrUserExit is returned when the operator leaves the version menu.
var ErrUserExit = errors.New(errors.ErrCodeUserAbort, "installation aborted by user")

// CatalogLoader produces the catalog when it is not cached.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Resolver runs the resolution steps against a decision cache.
type Resolver struct {
	Dir    string           // Target directory, checked for MarkerFile
	Cache  cache.Cache      // Decision cache
	Source CatalogLoader    // Metadata source
	Prompt *prompt.Prompter // Operator interaction
	Logger *log.Logger
}

// New creates a Resolver. A nil cache disables memoization and a nil logger
// uses log.Default().
func New(dir string, c cache.Cache, src CatalogLoader, p *prompt.Prompter, logger *log.Logger) *Resolver {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{Dir: dir, Cache: c, Source: src, Prompt: p, Logger: logger}
}

// Decision is the outcome of all interactive steps.
type Decision struct {
	Upgrade   bool            `json:"upgrade"`
	Version   catalog.Version `json:"version"`
	Languages []string        `json:"languages"`
}

// Packages returns the archive file names to download, base package first.
func (d Decision) Packages() []string {
	suffix := "install"
	if d.Upgrade {
		suffix = "upgrade"
	}
	pkgs := []string{d.Version.ID + suffix + PackageExt}
	for _, lang := range d.Languages {
		pkgs = append(pkgs, d.Version.ID+lang+PackageExt)
	}
	return pkgs
}

// Plan couples the catalog with the decisions made against it.
type Plan struct {
	Catalog  *catalog.Catalog
	Decision Decision
}

// Resolve runs every step in order.
func (r *Resolver) Resolve(ctx context.Context) (*Plan, error) {
	cat, err := r.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	upgrade, err := r.Upgrade(ctx)
	if err != nil {
		return nil, err
	}

	version, err := r.Version(ctx, cat)
	if err != nil {
		return nil, err
	}

	langs, err := r.Languages(ctx, cat, version)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Catalog: cat,
		Decision: Decision{
			Upgrade:   upgrade,
			Version:   version,
			Languages: langs,
		},
	}, nil
}

// Catalog returns the cached catalog or loads it from the source.
func (r *Resolver) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	var cat catalog.Catalog
	if r.cached(ctx, KeyCatalog, &cat) {
		return &cat, nil
	}

	loaded, err := r.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, KeyCatalog, loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Upgrade decides between a fresh install and an upgrade. The operator is
// only asked when MarkerFile exists.
func (r *Resolver) Upgrade(ctx context.Context) (bool, error) {
	var upgrade bool
	if r.cached(ctx, KeyUpgrade, &upgrade) {
		return upgrade, nil
	}

	if r.installationExists() {
		var err error
		upgrade, err = r.Prompt.Confirm("Detected an existing forum.  Would you like to upgrade the forum?", prompt.YesDefault)
		if err != nil {
			return false, err
		}
	}

	if err := r.store(ctx, KeyUpgrade, upgrade); err != nil {
		return false, err
	}
	return upgrade, nil
}

// Version asks which version to install.
func (r *Resolver) Version(ctx context.Context, cat *catalog.Catalog) (catalog.Version, error) {
	var v catalog.Version
	if r.cached(ctx, KeyVersion, &v) {
		return v, nil
	}

	v, err := r.selectVersion(cat)
	if err != nil {
		return catalog.Version{}, err
	}
	if err := r.store(ctx, KeyVersion, v); err != nil {
		return catalog.Version{}, err
	}
	return v, nil
}

// Languages asks which language packs to add for the chosen version. The
// result is never nil; it is empty when nothing fits or nothing was chosen.
func (r *Resolver) Languages(ctx context.Context, cat *catalog.Catalog, v catalog.Version) ([]string, error) {
	var langs []string
	if r.cached(ctx, KeyLanguages, &langs) {
		if langs == nil {
			langs = []string{}
		}
		return langs, nil
	}

	langs, err := r.selectLanguages(cat.Languages.ForVersion(v.Tag()))
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, KeyLanguages, langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// cached loads key into v. Read failures are logged and treated as misses
// so the step is asked again.
func (r *Resolver) cached(ctx context.Context, key string, v any) bool {
	hit, err := r.Cache.Get(ctx, key, v)
	if err != nil {
		r.Logger.Warn("could not read cached decision", "step", key, "err", err)
		return false
	}
	if hit {
		r.Logger.Debug("using cached decision", "step", key)
		observability.Install().OnStepResolved(ctx, key, true)
	}
	return hit
}

// store persists a computed value before it is handed back to the caller.
func (r *Resolver) store(ctx context.Context, key string, v any) error {
	if err := r.Cache.Set(ctx, key, v); err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "could not save the %s decision", key)
	}
	observability.Install().OnStepResolved(ctx, key, false)
	return nil
}

func (r *Resolver) installationExists() bool {
	info, err := os.Stat(filepath.Join(r.Dir, MarkerFile))
	return err == nil && !info.IsDir()
}
